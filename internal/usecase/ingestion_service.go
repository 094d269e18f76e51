package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/panjf2000/ants/v2"
	"github.com/sourcegraph/conc/panics"
	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/archive-ingest/external/archivehtml"
	"github.com/riskibarqy/archive-ingest/internal/domain/event"
	"github.com/riskibarqy/archive-ingest/internal/domain/identity"
	"github.com/riskibarqy/archive-ingest/internal/domain/ingestrun"
	"github.com/riskibarqy/archive-ingest/internal/domain/match"
	"github.com/riskibarqy/archive-ingest/internal/infrastructure/archive"
	"github.com/riskibarqy/archive-ingest/internal/platform/id"
	"github.com/riskibarqy/archive-ingest/internal/platform/logging"
)

type IngestionConfig struct {
	// ParseWorkers > 1 parses a season's files ahead of loading. Loading stays
	// sequential in file order.
	ParseWorkers int
	DryRun       bool
}

// IngestionService walks an archive season by season and loads every
// recognized file. Per-file and per-match failures are recorded in the run
// statistics; only an unreadable archive root fails the run.
type IngestionService struct {
	opener     *archive.Opener
	parser     *archivehtml.Parser
	identities identity.Repository
	matches    match.Repository
	events     event.Repository
	runs       ingestrun.Repository
	teamRules  identity.TeamRules
	nameRules  identity.NameRules
	idGen      id.Generator
	cfg        IngestionConfig
	logger     *logging.Logger
	now        func() time.Time
}

func NewIngestionService(
	opener *archive.Opener,
	parser *archivehtml.Parser,
	identities identity.Repository,
	matches match.Repository,
	events event.Repository,
	runs ingestrun.Repository,
	teamRules identity.TeamRules,
	nameRules identity.NameRules,
	idGen id.Generator,
	cfg IngestionConfig,
	logger *logging.Logger,
) *IngestionService {
	if logger == nil {
		logger = logging.Default()
	}
	if opener == nil {
		opener = archive.NewOpener(archive.DefaultPatterns())
	}
	if parser == nil {
		parser = archivehtml.NewParser(logger)
	}
	if idGen == nil {
		idGen = id.NewTimeOrderedGenerator()
	}
	if cfg.ParseWorkers <= 0 {
		cfg.ParseWorkers = 1
	}

	return &IngestionService{
		opener:     opener,
		parser:     parser,
		identities: identities,
		matches:    matches,
		events:     events,
		runs:       runs,
		teamRules:  teamRules,
		nameRules:  nameRules,
		idGen:      idGen,
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
	}
}

type parsedFile struct {
	file   archive.File
	layout archivehtml.Layout
	blocks []archivehtml.RawBlock
	stage  string
	err    error
}

// Run ingests the archive at root. The returned statistics are complete even
// when err is non-nil.
func (s *IngestionService) Run(ctx context.Context, root string) (ingestrun.Statistics, error) {
	// Run is the root of the trace; nested spans only start under it.
	ctx, span := usecaseTracer.Start(ctx, "usecase.IngestionService.Run")
	defer span.End()

	runID, err := s.idGen.NewID()
	if err != nil {
		return ingestrun.Statistics{}, spanError(span, fmt.Errorf("generate run id: %w", err))
	}
	stats := ingestrun.NewStatistics(runID, root, s.now().UTC())
	stats.DryRun = s.cfg.DryRun
	logger := s.logger.With("run_id", runID)
	span.SetAttributes(attribute.String("ingest.run_id", runID), attribute.String("ingest.root", root))

	source, err := s.opener.Open(root)
	if err != nil {
		stats.FinishedAt = s.now().UTC()
		return stats, spanError(span, fmt.Errorf("%w: %w", ErrArchiveUnreadable, err))
	}
	seasons, err := source.Seasons()
	if err != nil {
		stats.FinishedAt = s.now().UTC()
		return stats, spanError(span, fmt.Errorf("%w: %w", ErrArchiveUnreadable, err))
	}

	canon := NewCanonicalizer(s.identities, s.teamRules, s.nameRules, logger)
	pipeline := NewMatchPipeline(
		s.matches,
		s.events,
		canon,
		NewEventCollector(canon, logger),
		NewEventValidator(canon, s.identities, s.matches),
		logger,
	)

	logger.InfoContext(ctx, "ingestion started", "root", source.Root(), "seasons", len(seasons), "dry_run", s.cfg.DryRun)

	var runErr error
walk:
	for _, season := range seasons {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		stats.SeasonsSeen++

		files, err := source.Files(season)
		if err != nil {
			stats.AddFailure(ingestrun.Failure{Path: season.Label, Stage: ingestrun.StageRead, Reason: err.Error()})
			logger.WarnContext(ctx, "season unreadable", "season", season.Label, "error", err)
			continue
		}

		processable := make([]archive.File, 0, len(files))
		for _, file := range files {
			stats.FilesSeen++
			switch {
			case file.Role == archive.RoleExcluded:
				stats.FilesExcluded++
				logger.DebugContext(ctx, "file excluded", "file", file.RelPath())
			case !file.Role.Processed():
				stats.FilesIgnored++
				logger.DebugContext(ctx, "file ignored", "file", file.RelPath())
			default:
				processable = append(processable, file)
			}
		}

		for _, parsed := range s.parseFiles(ctx, source, processable) {
			if err := ctx.Err(); err != nil {
				runErr = err
				break walk
			}
			s.loadFile(ctx, pipeline, season, parsed, &stats)
		}
	}

	stats.EntitiesCreated = canon.Created()
	stats.FinishedAt = s.now().UTC()

	if s.runs != nil {
		if err := s.runs.Save(ctx, stats); err != nil {
			logger.ErrorContext(ctx, "save run statistics failed", "error", err)
		}
	}

	logger.InfoContext(ctx, "ingestion finished",
		"seasons", stats.SeasonsSeen,
		"files_seen", stats.FilesSeen,
		"files_failed", stats.FilesFailed,
		"matches_processed", stats.MatchesProcessed,
		"matches_succeeded", stats.MatchesSucceeded,
		"matches_failed", stats.MatchesFailed,
		"events_inserted", stats.EventsInserted.Total(),
		"events_duplicate", stats.EventsDuplicate.Total(),
		"duration", stats.Duration().String(),
	)
	if runErr != nil {
		return stats, spanError(span, fmt.Errorf("ingestion interrupted: %w", runErr))
	}
	return stats, nil
}

func (s *IngestionService) loadFile(ctx context.Context, pipeline *MatchPipeline, season archive.Season, parsed parsedFile, stats *ingestrun.Statistics) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionService.loadFile")
	defer span.End()
	span.SetAttributes(attribute.String("archive.file", parsed.file.RelPath()))

	logger := s.logger.With("file", parsed.file.RelPath())
	if parsed.err != nil {
		stats.FilesFailed++
		stats.AddFailure(ingestrun.Failure{Path: parsed.file.RelPath(), Stage: parsed.stage, Reason: parsed.err.Error()})
		logger.WarnContext(ctx, "file skipped", "stage", parsed.stage, "error", parsed.err)
		return
	}
	stats.FilesProcessed++

	blocks := parsed.blocks
	if _, ok := parsed.layout.(archivehtml.MultiMatchFriendly); ok && len(blocks) > 1 {
		stats.FriendlyBlocksIgnored += len(blocks) - 1
		logger.DebugContext(ctx, "friendly blocks after the first are not loaded", "ignored", len(blocks)-1)
		blocks = blocks[:1]
	}

	for _, block := range blocks {
		stats.MatchesProcessed++

		outcome, err := s.processMatch(ctx, pipeline, MatchInput{Season: season, File: parsed.file, Block: block})
		if err != nil {
			stage := ingestrun.StageLoad
			var merr *MatchError
			if crerr.As(err, &merr) {
				stage = merr.Stage
			}
			stats.MatchesFailed++
			stats.NamesRejected += outcome.NamesRejected
			stats.AddFailure(ingestrun.Failure{Path: parsed.file.RelPath(), Block: block.Index, Stage: stage, Reason: err.Error()})
			logger.WarnContext(ctx, "match failed", "block", block.Index, "stage", stage, "error", err)
			continue
		}

		stats.MatchesSucceeded++
		if !outcome.Created {
			stats.MatchesExisting++
		}
		stats.EventsStaged.Merge(outcome.Staged)
		stats.EventsDuplicate.Merge(outcome.Duplicates)
		stats.EventsRejected.Merge(outcome.Rejected)
		stats.EventsInserted.Merge(outcome.Inserted)
		stats.StorageConflicts.Merge(outcome.Conflicts)
		stats.NamesRejected += outcome.NamesRejected
		for reason, n := range outcome.RejectionReasons {
			stats.RejectionReasons[reason] += n
		}
	}
}

func (s *IngestionService) processMatch(ctx context.Context, pipeline *MatchPipeline, input MatchInput) (MatchOutcome, error) {
	var (
		outcome MatchOutcome
		err     error
		catcher panics.Catcher
	)
	catcher.Try(func() {
		outcome, err = pipeline.Process(ctx, input)
	})
	if recovered := catcher.Recovered(); recovered != nil {
		return outcome, &MatchError{Stage: ingestrun.StageRecovery, Err: recovered.AsError()}
	}
	return outcome, err
}

// parseFiles returns one result per file in input order.
func (s *IngestionService) parseFiles(ctx context.Context, source *archive.Source, files []archive.File) []parsedFile {
	out := make([]parsedFile, len(files))
	workers := min(s.cfg.ParseWorkers, len(files))
	if workers <= 1 {
		for i, file := range files {
			out[i] = s.parseFile(source, file)
		}
		return out
	}

	pool, err := ants.NewPool(workers)
	if err != nil {
		s.logger.WarnContext(ctx, "parse pool unavailable, parsing sequentially", "error", err)
		for i, file := range files {
			out[i] = s.parseFile(source, file)
		}
		return out
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for i, file := range files {
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			out[i] = s.parseFile(source, file)
		}); err != nil {
			wg.Done()
			out[i] = s.parseFile(source, file)
		}
	}
	wg.Wait()
	return out
}

// parseFile never panics; a recovered panic is reported as a failed file.
func (s *IngestionService) parseFile(source *archive.Source, file archive.File) parsedFile {
	out := parsedFile{file: file}

	var catcher panics.Catcher
	catcher.Try(func() {
		markup, err := source.Read(file)
		if err != nil {
			out.stage, out.err = ingestrun.StageRead, err
			return
		}
		out.layout, out.blocks, out.err = s.parser.ParseFile(file.RelPath(), markup)
		if out.err != nil {
			out.stage = ingestrun.StageParse
		}
	})
	if recovered := catcher.Recovered(); recovered != nil {
		out.layout, out.blocks = nil, nil
		out.stage, out.err = ingestrun.StageRecovery, recovered.AsError()
	}
	return out
}
