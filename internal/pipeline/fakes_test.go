package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/scalara/backend/internal/domain/ledger"
	"github.com/scalara/backend/internal/graph"
)

type fakeAccount struct {
	owner   int64
	balance int64
}

type fakeGraph struct {
	mu         sync.Mutex
	persons    map[int64]map[graph.Metric]int64
	accounts   map[string]*fakeAccount
	friends    map[int64][]int64
	increments []string
	failWrite  error
}

func newFakeGraph() *fakeGraph {
	return &fakeGraph{
		persons:  map[int64]map[graph.Metric]int64{},
		accounts: map[string]*fakeAccount{},
		friends:  map[int64][]int64{},
	}
}

func (g *fakeGraph) addPerson(id int64, balances ...int64) {
	g.persons[id] = map[graph.Metric]int64{}
	for i, b := range balances {
		g.accounts[fmt.Sprintf("P%d-%d", id, i)] = &fakeAccount{owner: id, balance: b}
	}
}

func (g *fakeGraph) befriend(a, b int64) {
	g.friends[a] = append(g.friends[a], b)
	g.friends[b] = append(g.friends[b], a)
}

func (g *fakeGraph) PersonIDs(_ context.Context) ([]int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	ids := make([]int64, 0, len(g.persons))
	for id := range g.persons {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (g *fakeGraph) ownLocked(personID int64) []int64 {
	out := []int64{}
	for _, acc := range g.accounts {
		if acc.owner == personID {
			out = append(out, acc.balance)
		}
	}
	return out
}

func (g *fakeGraph) OwnBalances(_ context.Context, personID int64) ([]int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.ownLocked(personID), nil
}

func (g *fakeGraph) FriendBalances(_ context.Context, personID int64) ([]int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := []int64{}
	for _, f := range g.friends[personID] {
		var sum int64
		for _, b := range g.ownLocked(f) {
			sum += b
		}
		out = append(out, sum)
	}
	return out, nil
}

func (g *fakeGraph) PersonMetrics(_ context.Context, personID int64) (graph.PersonMetrics, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	props, ok := g.persons[personID]
	if !ok {
		return graph.PersonMetrics{}, graph.ErrPersonNotFound
	}
	out := graph.PersonMetrics{PersonID: personID}
	if v, ok := props[graph.NetWorthCents]; ok {
		out.NetWorthCents = &v
	}
	if v, ok := props[graph.MaxBorrowableCents]; ok {
		out.MaxBorrowableCents = &v
	}
	return out, nil
}

func (g *fakeGraph) SetPersonMetric(_ context.Context, personID int64, metric graph.Metric, value int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failWrite != nil {
		return g.failWrite
	}
	props, ok := g.persons[personID]
	if !ok {
		return graph.ErrPersonNotFound
	}
	props[metric] = value
	return nil
}

func (g *fakeGraph) IncrementBalance(ctx context.Context, iban string, delta int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.increments = append(g.increments, iban)
	acc, ok := g.accounts[iban]
	if !ok {
		return false, nil
	}
	acc.balance += delta
	return true, nil
}

func (g *fakeGraph) AccountIBANs(_ context.Context) ([]string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]string, 0, len(g.accounts))
	for iban := range g.accounts {
		out = append(out, iban)
	}
	sort.Strings(out)
	return out, nil
}

func (g *fakeGraph) balance(iban string) int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.accounts[iban].balance
}

func (g *fakeGraph) metric(personID int64, m graph.Metric) (int64, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	v, ok := g.persons[personID][m]
	return v, ok
}

type fakeTx struct {
	iban     string
	amount   int64
	dir      ledger.Direction
	loadedAt time.Time
}

func (tx fakeTx) signed() int64 {
	if tx.dir == ledger.DirectionCredit {
		return tx.amount
	}
	return -tx.amount
}

// fakeLedger mirrors the relational window query: rows loaded strictly after
// since, summed per account.
type fakeLedger struct {
	txs   []fakeTx
	reads int
	err   error
}

func (l *fakeLedger) add(iban string, amount int64, dir ledger.Direction, at time.Time) {
	l.txs = append(l.txs, fakeTx{iban: iban, amount: amount, dir: dir, loadedAt: at})
}

func (l *fakeLedger) ReadWindow(ctx context.Context, since *time.Time) (ledger.Batch, error) {
	l.reads++
	if l.err != nil {
		return ledger.Batch{}, l.err
	}
	if err := ctx.Err(); err != nil {
		return ledger.Batch{}, err
	}

	sums := map[string]int64{}
	var stats ledger.WindowStats
	for _, tx := range l.txs {
		if since != nil && !tx.loadedAt.After(*since) {
			continue
		}
		sums[tx.iban] += tx.signed()
		stats.Count++
		at := tx.loadedAt
		if stats.StartLoadedAt == nil || at.Before(*stats.StartLoadedAt) {
			stats.StartLoadedAt = &at
		}
		if stats.EndLoadedAt == nil || at.After(*stats.EndLoadedAt) {
			stats.EndLoadedAt = &at
		}
	}

	deltas := make([]ledger.AccountDelta, 0, len(sums))
	for iban, delta := range sums {
		deltas = append(deltas, ledger.AccountDelta{IBAN: iban, Delta: delta})
	}
	sort.Slice(deltas, func(i, j int) bool { return deltas[i].IBAN < deltas[j].IBAN })
	return ledger.Batch{Since: since, Deltas: deltas, Stats: stats}, nil
}

// cancellingGraph cancels the run once the first increment has landed, the
// way a dropped client or an expired deadline would.
type cancellingGraph struct {
	*fakeGraph
	cancel context.CancelFunc
	once   sync.Once
}

func (g *cancellingGraph) IncrementBalance(ctx context.Context, iban string, delta int64) (bool, error) {
	ok, err := g.fakeGraph.IncrementBalance(ctx, iban, delta)
	g.once.Do(g.cancel)
	return ok, err
}

type fakeCheckpoints struct {
	rows []ledger.Checkpoint
	err  error
}

func (c *fakeCheckpoints) Latest(_ context.Context) (*ledger.Checkpoint, error) {
	if c.err != nil {
		return nil, c.err
	}
	if len(c.rows) == 0 {
		return nil, nil
	}
	last := c.rows[len(c.rows)-1]
	return &last, nil
}

func (c *fakeCheckpoints) Append(ctx context.Context, in ledger.CheckpointInput) (*ledger.Checkpoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start, end := in.StartLoadedAt, in.EndLoadedAt
	cp := ledger.Checkpoint{
		ID:             fmt.Sprintf("cp-%d", len(c.rows)+1),
		ExecutedAt:     time.Now().UTC(),
		ProcessedCount: in.ProcessedCount,
		StartLoadedAt:  &start,
		EndLoadedAt:    &end,
	}
	c.rows = append(c.rows, cp)
	return &cp, nil
}

type recordingLocker struct {
	names []string
}

func (l *recordingLocker) WithLock(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	l.names = append(l.names, name)
	return fn(ctx)
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []Event
}

func (n *recordingNotifier) Publish(ev Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
}

var errGraphDown = errors.New("graph down")
