package pipeline

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/scalara/backend/internal/domain/ledger"
)

type Stage int

const (
	StageLedgerAggregation Stage = 1
	StageNetWorth          Stage = 2
	StageBorrowable        Stage = 3
)

var (
	ErrInvalidStage      = errors.New("invalid_stage")
	ErrCorruptCheckpoint = errors.New("corrupt_checkpoint")
)

var allStages = []Stage{StageLedgerAggregation, StageNetWorth, StageBorrowable}

// Stages lists every stage in execution order.
func Stages() []Stage {
	return append([]Stage(nil), allStages...)
}

func ParseStage(s string) (Stage, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, ErrInvalidStage
	}
	st := Stage(n)
	if !st.Valid() {
		return 0, ErrInvalidStage
	}
	return st, nil
}

func (s Stage) Valid() bool {
	return s >= StageLedgerAggregation && s <= StageBorrowable
}

func (s Stage) String() string {
	switch s {
	case StageLedgerAggregation:
		return "ledger_aggregation"
	case StageNetWorth:
		return "net_worth"
	case StageBorrowable:
		return "borrowable"
	default:
		return "stage_" + strconv.Itoa(int(s))
	}
}

type StageResult struct {
	Stage    Stage         `json:"stage"`
	Name     string        `json:"name"`
	Duration time.Duration `json:"duration"`
	// Processed counts ledger rows folded; stage 1 only.
	Processed int64 `json:"processed"`
	// Updated counts accounts (stage 1) or persons (stages 2, 3) written.
	Updated    int                `json:"updated"`
	Unmatched  int                `json:"unmatched,omitempty"`
	Checkpoint *ledger.Checkpoint `json:"checkpoint,omitempty"`
}

type Report struct {
	RunID  string        `json:"run_id"`
	Level  Stage         `json:"level"`
	Stages []StageResult `json:"stages"`
}

const (
	EventStageCompleted = "stage_completed"
	EventStageFailed    = "stage_failed"
)

// Event is published after every stage, successful or not.
type Event struct {
	Type       string    `json:"event"`
	RunID      string    `json:"run_id"`
	Level      Stage     `json:"level"`
	Stage      string    `json:"stage"`
	Processed  int64     `json:"processed"`
	Updated    int       `json:"updated"`
	DurationMS int64     `json:"duration_ms"`
	Error      string    `json:"error,omitempty"`
	At         time.Time `json:"at"`
}
