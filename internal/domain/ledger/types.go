package ledger

import "time"

type Direction string

const (
	DirectionDebit  Direction = "debit"
	DirectionCredit Direction = "credit"
)

type NewTransaction struct {
	AccountIBAN      string
	CounterpartyIBAN string
	Amount           int64
	Direction        Direction
}

// AccountDelta is the net signed change for one account over a window.
type AccountDelta struct {
	IBAN  string
	Delta int64
}

// WindowStats describes the rows selected by one aggregation run.
type WindowStats struct {
	Count         int64
	StartLoadedAt *time.Time
	EndLoadedAt   *time.Time
}

// Batch is a consistent read of one window: the deltas cover exactly the
// rows counted in Stats.
type Batch struct {
	Since  *time.Time
	Deltas []AccountDelta
	Stats  WindowStats
}

type Checkpoint struct {
	ID             string
	ExecutedAt     time.Time
	ProcessedCount int64
	StartLoadedAt  *time.Time
	EndLoadedAt    *time.Time
}

type CheckpointInput struct {
	ProcessedCount int64
	StartLoadedAt  time.Time
	EndLoadedAt    time.Time
}
