package cursor

import (
	"encoding/base64"
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Cursor (created_at + _id)
type Cursor struct {
	CreatedAt int64  `json:"createdAt"`
	ID        string `json:"id"`
}

func Encode(t time.Time, id bson.ObjectID) string {
	b, _ := json.Marshal(Cursor{
		CreatedAt: t.UnixMilli(),
		ID:        id.Hex(),
	})
	return base64.URLEncoding.EncodeToString(b)
}

func Decode(s string) (time.Time, bson.ObjectID, error) {
	raw, err := base64.URLEncoding.DecodeString(s)
	if err != nil {
		return time.Time{}, bson.NilObjectID, err
	}

	var p Cursor
	if err := json.Unmarshal(raw, &p); err != nil {
		return time.Time{}, bson.NilObjectID, err
	}

	oid, err := bson.ObjectIDFromHex(p.ID)
	if err != nil {
		return time.Time{}, bson.NilObjectID, err
	}

	return time.UnixMilli(p.CreatedAt).UTC(), oid, nil
}
