package cli

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/fireconf"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"github.com/yonnovia/iawashing/pkg/utils/logging"
)

func cmdMigrate() *cli.Command {
	var projectID string
	var databaseID string
	var prefix string
	var dryRun bool

	return &cli.Command{
		Name:    "migrate",
		Aliases: []string{"m"},
		Usage:   "Migrate Firestore indexes",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "firestore-project-id",
				Usage:       "Firestore Project ID (required)",
				Required:    true,
				Sources:     cli.EnvVars("IAWASHING_FIRESTORE_PROJECT_ID"),
				Destination: &projectID,
			},
			&cli.StringFlag{
				Name:        "firestore-database-id",
				Usage:       "Firestore Database ID",
				Sources:     cli.EnvVars("IAWASHING_FIRESTORE_DATABASE_ID"),
				Destination: &databaseID,
			},
			&cli.StringFlag{
				Name:        "firestore-collection-prefix",
				Usage:       "Prefix added to every Firestore collection name",
				Sources:     cli.EnvVars("IAWASHING_FIRESTORE_COLLECTION_PREFIX"),
				Destination: &prefix,
			},
			&cli.BoolFlag{
				Name:        "dry-run",
				Usage:       "Preview changes without applying",
				Destination: &dryRun,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			logger.Info("Migrate configuration",
				"projectID", projectID,
				"databaseID", databaseID,
				"prefix", prefix,
				"dryRun", dryRun)

			if databaseID == "" {
				databaseID = firestore.DefaultDatabaseID
			}

			client, err := fireconf.New(ctx, projectID, databaseID, getIndexConfig(prefix),
				fireconf.WithLogger(logger),
				fireconf.WithDryRun(dryRun),
			)
			if err != nil {
				return goerr.Wrap(err, "failed to create fireconf client")
			}
			defer func() {
				if err := client.Close(); err != nil {
					logger.Error("failed to close fireconf client", "error", err.Error())
				}
			}()

			if dryRun {
				logger.Info("Dry run mode - previewing changes")
			}
			if err := client.Migrate(ctx); err != nil {
				return goerr.Wrap(err, "failed to apply migrations")
			}
			logger.Info("Migrations applied successfully", "dryRun", dryRun)
			return nil
		},
	}
}

func collectionName(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "_" + name
}

// getIndexConfig returns the composite indexes required by the Firestore
// repository queries
func getIndexConfig(prefix string) *fireconf.Config {
	return &fireconf.Config{
		Collections: []fireconf.Collection{
			{
				Name: collectionName(prefix, "submissions"),
				Indexes: []fireconf.Index{
					// ListBySession (newest first): SessionID ASC, CreatedAt DESC
					{
						Fields: []fireconf.IndexField{
							{Path: "SessionID", Order: fireconf.OrderAscending},
							{Path: "CreatedAt", Order: fireconf.OrderDescending},
						},
					},
					// ListBySession (export, oldest first): SessionID ASC, CreatedAt ASC
					{
						Fields: []fireconf.IndexField{
							{Path: "SessionID", Order: fireconf.OrderAscending},
							{Path: "CreatedAt", Order: fireconf.OrderAscending},
						},
					},
				},
			},
			{
				Name: collectionName(prefix, "feedbacks"),
				Indexes: []fireconf.Index{
					// ListBySession: SessionID ASC, CreatedAt ASC
					{
						Fields: []fireconf.IndexField{
							{Path: "SessionID", Order: fireconf.OrderAscending},
							{Path: "CreatedAt", Order: fireconf.OrderAscending},
						},
					},
				},
			},
		},
	}
}
