package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"github.com/yonnovia/iawashing/pkg/domain/interfaces"
	"github.com/yonnovia/iawashing/pkg/repository/firestore"
	"github.com/yonnovia/iawashing/pkg/repository/memory"
	"github.com/yonnovia/iawashing/pkg/repository/sqldb"
	"github.com/yonnovia/iawashing/pkg/utils/logging"
)

const (
	BackendMemory    = "memory"
	BackendFirestore = "firestore"
	BackendSQLite    = "sqlite"
	BackendPostgres  = "postgres"
)

// Repository holds CLI flags for repository backend configuration
type Repository struct {
	backend    string
	projectID  string
	databaseID string
	prefix     string
	dsn        string
}

// Flags returns CLI flags for repository configuration
func (r *Repository) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "repository-backend",
			Usage:       "Repository backend type (memory, firestore, sqlite or postgres)",
			Category:    "Repository",
			Value:       BackendMemory,
			Sources:     cli.EnvVars("IAWASHING_REPOSITORY_BACKEND"),
			Destination: &r.backend,
		},
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Firestore Project ID (required when using firestore backend)",
			Category:    "Repository",
			Sources:     cli.EnvVars("IAWASHING_FIRESTORE_PROJECT_ID"),
			Destination: &r.projectID,
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Usage:       "Firestore Database ID",
			Category:    "Repository",
			Sources:     cli.EnvVars("IAWASHING_FIRESTORE_DATABASE_ID"),
			Destination: &r.databaseID,
		},
		&cli.StringFlag{
			Name:        "firestore-collection-prefix",
			Usage:       "Prefix added to every Firestore collection name",
			Category:    "Repository",
			Sources:     cli.EnvVars("IAWASHING_FIRESTORE_COLLECTION_PREFIX"),
			Destination: &r.prefix,
		},
		&cli.StringFlag{
			Name:        "database-dsn",
			Usage:       "SQL data source (file path for sqlite, connection URL for postgres)",
			Category:    "Repository",
			Sources:     cli.EnvVars("IAWASHING_DATABASE_DSN"),
			Destination: &r.dsn,
		},
	}
}

// Backend returns the configured backend type
func (r *Repository) Backend() string {
	return r.backend
}

func (r Repository) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("backend", r.backend),
		slog.String("project_id", r.projectID),
		slog.String("database_id", r.databaseID),
		slog.Int("dsn.len", len(r.dsn)),
	)
}

// Configure initializes and returns a repository based on the configured backend.
// The caller is responsible for calling Close() on the returned repository.
func (r *Repository) Configure(ctx context.Context) (interfaces.Repository, error) {
	switch r.backend {
	case BackendFirestore:
		if r.projectID == "" {
			return nil, goerr.Wrap(ErrMissingProjectID, "failed to configure repository")
		}
		var opts []firestore.Option
		if r.prefix != "" {
			opts = append(opts, firestore.WithCollectionPrefix(r.prefix))
		}
		repo, err := firestore.New(ctx, r.projectID, r.databaseID, opts...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize firestore repository")
		}
		logging.Default().Info("Using Firestore repository",
			"project_id", r.projectID,
			"database_id", r.databaseID,
		)
		return repo, nil

	case BackendSQLite, BackendPostgres:
		if r.dsn == "" {
			return nil, goerr.Wrap(ErrMissingDSN, "failed to configure repository", goerr.V(BackendKey, r.backend))
		}
		driver := sqldb.DriverSQLite
		if r.backend == BackendPostgres {
			driver = sqldb.DriverPostgres
		}
		repo, err := sqldb.New(ctx, driver, r.dsn)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize sql repository", goerr.V(BackendKey, r.backend))
		}
		logging.Default().Info("Using SQL repository", "backend", r.backend)
		return repo, nil

	case BackendMemory:
		logging.Default().Info("Using in-memory repository (development mode)")
		return memory.New(), nil

	default:
		return nil, goerr.Wrap(ErrInvalidBackend, "failed to configure repository", goerr.V(BackendKey, r.backend))
	}
}
