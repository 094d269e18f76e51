package ingestrun

import (
	"sort"
	"time"

	"github.com/riskibarqy/archive-ingest/internal/domain/event"
)

// Failure records one file or match that could not be loaded.
type Failure struct {
	Path   string `json:"path"`
	Block  int    `json:"block,omitempty"`
	Stage  string `json:"stage"`
	Reason string `json:"reason"`
}

const (
	StageRead     = "read"
	StageParse    = "parse"
	StageResolve  = "resolve"
	StageMatch    = "match"
	StageLoad     = "load"
	StageRecovery = "recovered_panic"
)

// Statistics is the structured summary of one ingestion run.
type Statistics struct {
	RunID       string    `json:"run_id"`
	ArchiveRoot string    `json:"archive_root"`
	DryRun      bool      `json:"dry_run"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`

	SeasonsSeen           int `json:"seasons_seen"`
	FilesSeen             int `json:"files_seen"`
	FilesProcessed        int `json:"files_processed"`
	FilesExcluded         int `json:"files_excluded"`
	FilesIgnored          int `json:"files_ignored"`
	FilesFailed           int `json:"files_failed"`
	FriendlyBlocksIgnored int `json:"friendly_blocks_ignored"`

	MatchesProcessed int `json:"matches_processed"`
	MatchesSucceeded int `json:"matches_succeeded"`
	MatchesFailed    int `json:"matches_failed"`
	MatchesExisting  int `json:"matches_existing"`

	EventsStaged     event.Counts   `json:"events_staged"`
	EventsDuplicate  event.Counts   `json:"events_duplicate"`
	EventsRejected   event.Counts   `json:"events_rejected"`
	EventsInserted   event.Counts   `json:"events_inserted"`
	StorageConflicts event.Counts   `json:"storage_conflicts"`
	RejectionReasons map[string]int `json:"rejection_reasons"`
	NamesRejected    int            `json:"names_rejected"`
	EntitiesCreated  map[string]int `json:"entities_created"`
	Failures         []Failure      `json:"failures"`
}

func NewStatistics(runID, archiveRoot string, startedAt time.Time) Statistics {
	return Statistics{
		RunID:            runID,
		ArchiveRoot:      archiveRoot,
		StartedAt:        startedAt,
		RejectionReasons: make(map[string]int),
		EntitiesCreated:  make(map[string]int),
		Failures:         make([]Failure, 0),
	}
}

func (s *Statistics) AddFailure(f Failure) {
	s.Failures = append(s.Failures, f)
}

func (s *Statistics) AddRejection(reason string) {
	if s.RejectionReasons == nil {
		s.RejectionReasons = make(map[string]int)
	}
	s.RejectionReasons[reason]++
}

// SortedFailures returns failures ordered by path then block.
func (s Statistics) SortedFailures() []Failure {
	out := append([]Failure(nil), s.Failures...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Block < out[j].Block
	})
	return out
}

func (s Statistics) Duration() time.Duration {
	if s.FinishedAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}
