package pipeline

import (
	"context"
	"time"

	"github.com/scalara/backend/internal/domain/ledger"
)

type CheckpointRepository interface {
	// Latest returns the most recent checkpoint by execution time, or nil when
	// the log is empty.
	Latest(ctx context.Context) (*ledger.Checkpoint, error)
	Append(ctx context.Context, in ledger.CheckpointInput) (*ledger.Checkpoint, error)
}

type LedgerRepository interface {
	// ReadWindow selects every transaction loaded strictly after since (all
	// of them when since is nil) and returns the per-account deltas and the
	// window stats from one consistent snapshot.
	ReadWindow(ctx context.Context, since *time.Time) (ledger.Batch, error)
}

// Locker serializes critical sections across processes.
type Locker interface {
	WithLock(ctx context.Context, name string, fn func(ctx context.Context) error) error
}

type Instruments interface {
	ObserveStage(stage string, elapsed time.Duration, err error)
	AddFolded(rows int64, unmatched int)
}

type Notifier interface {
	Publish(ev Event)
}

type noopLocker struct{}

func (noopLocker) WithLock(ctx context.Context, _ string, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type noopInstruments struct{}

func (noopInstruments) ObserveStage(string, time.Duration, error) {}
func (noopInstruments) AddFolded(int64, int)                      {}

type noopNotifier struct{}

func (noopNotifier) Publish(Event) {}
