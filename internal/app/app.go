package app

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/archive-ingest/external/archivehtml"
	"github.com/riskibarqy/archive-ingest/internal/config"
	"github.com/riskibarqy/archive-ingest/internal/domain/event"
	"github.com/riskibarqy/archive-ingest/internal/domain/identity"
	"github.com/riskibarqy/archive-ingest/internal/domain/ingestrun"
	"github.com/riskibarqy/archive-ingest/internal/domain/match"
	"github.com/riskibarqy/archive-ingest/internal/infrastructure/archive"
	"github.com/riskibarqy/archive-ingest/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/archive-ingest/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/archive-ingest/internal/platform/dbconn"
	idgen "github.com/riskibarqy/archive-ingest/internal/platform/id"
	"github.com/riskibarqy/archive-ingest/internal/platform/logging"
	"github.com/riskibarqy/archive-ingest/internal/usecase"
)

// Runtime holds the wired ingestion service and the resources it owns.
type Runtime struct {
	Ingestion *usecase.IngestionService
	db        *sqlx.DB
}

type repositories struct {
	identities identity.Repository
	matches    match.Repository
	events     event.Repository
	runs       ingestrun.Repository
}

// NewRuntime wires the ingestion service. A dry run keeps everything in
// memory and never opens the database.
func NewRuntime(ctx context.Context, cfg config.Config, rules config.Rules, logger *logging.Logger) (*Runtime, error) {
	if logger == nil {
		logger = logging.Default()
	}

	resolved, err := ResolveRules(cfg, rules)
	if err != nil {
		return nil, err
	}

	runtime := &Runtime{}
	var repos repositories
	if cfg.DryRun {
		repos = memoryRepositories()
		logger.Info("dry run, using in-memory storage")
	} else {
		db, err := dbconn.Open(ctx, cfg.DBURL, cfg.DBDisablePreparedBinary)
		if err != nil {
			return nil, err
		}
		runtime.db = db
		repos = postgresRepositories(db)
		logger.Info("database connected", "db_name", dbconn.NameFromURL(cfg.DBURL))
	}
	if !cfg.PersistRun {
		repos.runs = nil
	}

	runtime.Ingestion = usecase.NewIngestionService(
		archive.NewOpener(resolved.Files),
		archivehtml.NewParser(logger),
		repos.identities,
		repos.matches,
		repos.events,
		repos.runs,
		resolved.Teams,
		resolved.Names,
		idgen.NewTimeOrderedGenerator(),
		usecase.IngestionConfig{ParseWorkers: cfg.ParseWorkers, DryRun: cfg.DryRun},
		logger,
	)
	return runtime, nil
}

func (r *Runtime) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func memoryRepositories() repositories {
	return repositories{
		identities: memory.NewIdentityRepository(),
		matches:    memory.NewMatchRepository(),
		events:     memory.NewEventRepository(),
		runs:       memory.NewIngestRunRepository(),
	}
}

func postgresRepositories(db *sqlx.DB) repositories {
	return repositories{
		identities: postgres.NewIdentityRepository(db),
		matches:    postgres.NewMatchRepository(db),
		events:     postgres.NewEventRepository(db),
		runs:       postgres.NewIngestRunRepository(db),
	}
}
