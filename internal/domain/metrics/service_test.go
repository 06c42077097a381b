package metrics

import (
	"context"
	"errors"
	"testing"

	"github.com/scalara/backend/internal/graph"
)

type fakeGraphReader struct {
	metrics map[int64]graph.PersonMetrics
	own     map[int64][]int64
	friends map[int64][]int64

	balanceReads int
}

func (f *fakeGraphReader) PersonMetrics(_ context.Context, personID int64) (graph.PersonMetrics, error) {
	m, ok := f.metrics[personID]
	if !ok {
		return graph.PersonMetrics{}, graph.ErrPersonNotFound
	}
	return m, nil
}

func (f *fakeGraphReader) OwnBalances(_ context.Context, personID int64) ([]int64, error) {
	f.balanceReads++
	return f.own[personID], nil
}

func (f *fakeGraphReader) FriendBalances(_ context.Context, personID int64) ([]int64, error) {
	f.balanceReads++
	return f.friends[personID], nil
}

func ptr(v int64) *int64 { return &v }

func TestNetWorthPrefersStoredValue(t *testing.T) {
	g := &fakeGraphReader{
		metrics: map[int64]graph.PersonMetrics{1: {PersonID: 1, NetWorthCents: ptr(4200)}},
		own:     map[int64][]int64{1: {1, 2}},
	}
	res, err := NewService(g).NetWorth(context.Background(), 1)
	if err != nil {
		t.Fatalf("net worth: %v", err)
	}
	if res.NetWorthCents != 4200 || res.Source != SourceStored || res.NetWorth != "42.00" {
		t.Fatalf("unexpected result %+v", res)
	}
	if g.balanceReads != 0 {
		t.Fatalf("expected no live computation when stored value exists")
	}
}

func TestNetWorthFallsBackToLiveSum(t *testing.T) {
	g := &fakeGraphReader{
		metrics: map[int64]graph.PersonMetrics{1: {PersonID: 1}},
		own:     map[int64][]int64{1: {300, 700}},
	}
	res, err := NewService(g).NetWorth(context.Background(), 1)
	if err != nil {
		t.Fatalf("net worth: %v", err)
	}
	if res.NetWorthCents != 1000 || res.Source != SourceComputed {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestNetWorthRejectsNegativeStoredValue(t *testing.T) {
	g := &fakeGraphReader{metrics: map[int64]graph.PersonMetrics{1: {PersonID: 1, NetWorthCents: ptr(-1)}}}
	_, err := NewService(g).NetWorth(context.Background(), 1)
	var vErr *ValidationError
	if !errors.As(err, &vErr) || vErr.Field != "netWorthCents" {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestNetWorthRejectsNegativeComputedValue(t *testing.T) {
	g := &fakeGraphReader{
		metrics: map[int64]graph.PersonMetrics{1: {PersonID: 1}},
		own:     map[int64][]int64{1: {100, -400}},
	}
	_, err := NewService(g).NetWorth(context.Background(), 1)
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestNetWorthUnknownPerson(t *testing.T) {
	g := &fakeGraphReader{metrics: map[int64]graph.PersonMetrics{}}
	if _, err := NewService(g).NetWorth(context.Background(), 99); !errors.Is(err, graph.ErrPersonNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestBorrowablePrefersStoredZero(t *testing.T) {
	g := &fakeGraphReader{
		metrics: map[int64]graph.PersonMetrics{1: {PersonID: 1, MaxBorrowableCents: ptr(0)}},
		friends: map[int64][]int64{1: {900}},
	}
	res, err := NewService(g).Borrowable(context.Background(), 1)
	if err != nil {
		t.Fatalf("borrowable: %v", err)
	}
	if res.BorrowableCents != 0 || res.Source != SourceStored {
		t.Fatalf("stored zero must not trigger fallback: %+v", res)
	}
}

func TestBorrowableFallbackMatchesPipelineFormula(t *testing.T) {
	g := &fakeGraphReader{
		metrics: map[int64]graph.PersonMetrics{1: {PersonID: 1}},
		own:     map[int64][]int64{1: {50}},
		friends: map[int64][]int64{1: {0, 200}},
	}
	res, err := NewService(g).Borrowable(context.Background(), 1)
	if err != nil {
		t.Fatalf("borrowable: %v", err)
	}
	if res.BorrowableCents != 150 || res.Source != SourceComputed || res.Borrowable != "1.50" {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestBorrowableRejectsNegativeOwnBalance(t *testing.T) {
	g := &fakeGraphReader{
		metrics: map[int64]graph.PersonMetrics{1: {PersonID: 1}},
		own:     map[int64][]int64{1: {100, -400}},
		friends: map[int64][]int64{1: {900}},
	}
	_, err := NewService(g).Borrowable(context.Background(), 1)
	var vErr *ValidationError
	if !errors.As(err, &vErr) || vErr.Field != string(graph.NetWorthCents) {
		t.Fatalf("expected validation error on own balance, got %v", err)
	}
	if g.balanceReads != 1 {
		t.Fatalf("friend balances should not be read after a rejected own balance, got %d reads", g.balanceReads)
	}
}
