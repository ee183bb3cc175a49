package quota

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
)

type DynamoConfig struct {
	Region    string
	TableName string
	Endpoint  string // DynamoDB Local
}

// DynamoLedger keys rows by "<userID>#<day>" in a single-table layout.
type DynamoLedger struct {
	client    dynamodbiface.DynamoDBAPI
	tableName string
}

// NewDynamoLedgerWithClient uses an existing client and assumes the table exists.
func NewDynamoLedgerWithClient(client dynamodbiface.DynamoDBAPI, tableName string) *DynamoLedger {
	return &DynamoLedger{client: client, tableName: tableName}
}

func NewDynamoLedger(cfg DynamoConfig) (*DynamoLedger, error) {
	awsConfig := &aws.Config{
		Region: aws.String(cfg.Region),
	}
	if cfg.Endpoint != "" {
		awsConfig.Endpoint = aws.String(cfg.Endpoint)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	l := &DynamoLedger{client: dynamodb.New(sess), tableName: cfg.TableName}
	if err := l.ensureTable(); err != nil {
		return nil, fmt.Errorf("failed to ensure table exists: %w", err)
	}
	return l, nil
}

func (l *DynamoLedger) ensureTable() error {
	_, err := l.client.DescribeTable(&dynamodb.DescribeTableInput{
		TableName: aws.String(l.tableName),
	})
	if err == nil {
		return nil
	}

	_, err = l.client.CreateTable(&dynamodb.CreateTableInput{
		TableName: aws.String(l.tableName),
		KeySchema: []*dynamodb.KeySchemaElement{
			{AttributeName: aws.String("pk"), KeyType: aws.String("HASH")},
		},
		AttributeDefinitions: []*dynamodb.AttributeDefinition{
			{AttributeName: aws.String("pk"), AttributeType: aws.String("S")},
		},
		BillingMode: aws.String("PAY_PER_REQUEST"),
	})
	if err != nil {
		return err
	}
	return l.client.WaitUntilTableExists(&dynamodb.DescribeTableInput{
		TableName: aws.String(l.tableName),
	})
}

func dynamoKey(userID string, day Day) map[string]*dynamodb.AttributeValue {
	return map[string]*dynamodb.AttributeValue{
		"pk": {S: aws.String(userID + "#" + day.Key)},
	}
}

func (l *DynamoLedger) Usage(ctx context.Context, userID string, day Day) (int, error) {
	out, err := l.client.GetItemWithContext(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(l.tableName),
		Key:            dynamoKey(userID, day),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return 0, err
	}
	if len(out.Item) == 0 {
		return 0, nil
	}
	var e Entry
	if err := dynamodbattribute.UnmarshalMap(out.Item, &e); err != nil {
		return 0, fmt.Errorf("decode ledger item: %w", err)
	}
	return e.PostCount, nil
}

func (l *DynamoLedger) Consume(ctx context.Context, userID string, day Day, limit int, at time.Time) (int, bool, error) {
	if limit <= 0 {
		return limit, false, nil
	}
	out, err := l.client.UpdateItemWithContext(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(l.tableName),
		Key:                 dynamoKey(userID, day),
		UpdateExpression:    aws.String("SET #uid = :uid, #day = :day, day_start = if_not_exists(day_start, :start), last_post_at = :at ADD post_count :one"),
		ConditionExpression: aws.String("attribute_not_exists(post_count) OR post_count < :limit"),
		ExpressionAttributeNames: map[string]*string{
			"#uid": aws.String("user_id"),
			"#day": aws.String("day"),
		},
		ExpressionAttributeValues: map[string]*dynamodb.AttributeValue{
			":uid":   {S: aws.String(userID)},
			":day":   {S: aws.String(day.Key)},
			":start": {S: aws.String(day.Start.Format(time.RFC3339))},
			":at":    {S: aws.String(at.Format(time.RFC3339Nano))},
			":one":   {N: aws.String("1")},
			":limit": {N: aws.String(strconv.Itoa(limit))},
		},
		ReturnValues: aws.String(dynamodb.ReturnValueUpdatedNew),
	})
	if err != nil {
		if aerr, ok := err.(awserr.Error); ok && aerr.Code() == dynamodb.ErrCodeConditionalCheckFailedException {
			return limit, false, nil
		}
		return 0, false, err
	}
	attr, ok := out.Attributes["post_count"]
	if !ok || attr.N == nil {
		return 0, false, fmt.Errorf("update returned no post_count")
	}
	n, err := strconv.Atoi(aws.StringValue(attr.N))
	if err != nil {
		return 0, false, fmt.Errorf("parse post_count: %w", err)
	}
	return n, true, nil
}

func (l *DynamoLedger) Release(ctx context.Context, userID string, day Day) error {
	_, err := l.client.UpdateItemWithContext(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(l.tableName),
		Key:                 dynamoKey(userID, day),
		UpdateExpression:    aws.String("ADD post_count :neg"),
		ConditionExpression: aws.String("post_count > :zero"),
		ExpressionAttributeValues: map[string]*dynamodb.AttributeValue{
			":neg":  {N: aws.String("-1")},
			":zero": {N: aws.String("0")},
		},
	})
	if aerr, ok := err.(awserr.Error); ok && aerr.Code() == dynamodb.ErrCodeConditionalCheckFailedException {
		return nil
	}
	return err
}
