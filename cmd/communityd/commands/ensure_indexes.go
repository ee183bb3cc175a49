package commands

import (
	"context"

	"community-backend/bootstrap"
	"community-backend/database"

	"github.com/gofiber/fiber/v2/log"
	"github.com/spf13/cobra"
)

var ensureIndexesCmd = &cobra.Command{
	Use:   "ensure-indexes",
	Short: "Create the MongoDB indexes and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		client, err := database.ConnectMongo(cmd.Context(), cfg.MongoURI)
		if err != nil {
			return err
		}
		defer client.Disconnect(context.Background())

		if err := bootstrap.EnsureIndexes(cmd.Context(), client.Database(cfg.MongoDB)); err != nil {
			return err
		}
		log.Infof("indexes ensured on %s", cfg.MongoDB)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ensureIndexesCmd)
}
