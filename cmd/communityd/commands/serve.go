package commands

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"community-backend/bootstrap"
	"community-backend/config"
	"community-backend/database"
	"community-backend/internal/auth"
	"community-backend/internal/quota"
	"community-backend/internal/routes"

	"github.com/gofiber/fiber/v2/log"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return runServe(ctx, cfg)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(ctx context.Context, cfg config.Config) error {
	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	log.Infof("env: JWT_SECRET len=%d", len(cfg.JWTSecret))

	client, err := database.ConnectMongo(ctx, cfg.MongoURI)
	if err != nil {
		return err
	}
	defer client.Disconnect(context.Background())
	db := client.Database(cfg.MongoDB)

	// Unique indexes back the quota, like and email invariants.
	if err := bootstrap.EnsureIndexes(ctx, db); err != nil {
		return fmt.Errorf("ensure indexes failed: %w", err)
	}

	loc, err := quota.LoadLocation(cfg.QuotaTimezone)
	if err != nil {
		return err
	}
	ledger, closeLedger, err := quota.NewLedger(ctx, quota.BackendConfig{
		Type:        cfg.QuotaBackend,
		Mongo:       db,
		PostgresURI: cfg.PostgresURI,
		Dynamo: quota.DynamoConfig{
			Region:    cfg.AWSRegion,
			TableName: cfg.DynamoTable,
			Endpoint:  cfg.DynamoEndpoint,
		},
	})
	if err != nil {
		return fmt.Errorf("quota ledger: %w", err)
	}
	defer closeLedger()
	log.Infof("quota: backend=%s limit=%d tz=%s", cfg.QuotaBackend, cfg.DailyPostLimit, loc)

	tokens := auth.NewHMAC(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	svc := routes.NewServices(
		routes.MongoStores(client, db, cfg.MongoTransactions),
		quota.NewService(ledger, cfg.DailyPostLimit, loc),
		tokens,
		nil,
	)
	app := routes.NewApp(svc, routes.Options{
		Verifier:    tokens,
		CORSOrigins: cfg.CORSOrigins,
		Timeout:     cfg.RequestTimeout,
		AccessLog:   true,
	})

	errc := make(chan error, 1)
	go func() { errc <- app.Listen(":" + cfg.Port) }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return app.ShutdownWithContext(shutdownCtx)
	}
}
