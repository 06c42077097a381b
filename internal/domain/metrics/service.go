package metrics

import (
	"context"
	"fmt"

	"github.com/scalara/backend/internal/graph"
)

type Source string

const (
	SourceStored   Source = "stored"
	SourceComputed Source = "computed"
)

type NetWorthResult struct {
	PersonID      int64  `json:"person_id"`
	NetWorthCents int64  `json:"net_worth_cents"`
	NetWorth      string `json:"net_worth"`
	Source        Source `json:"source"`
}

type BorrowableResult struct {
	PersonID        int64  `json:"person_id"`
	BorrowableCents int64  `json:"borrowable_cents"`
	Borrowable      string `json:"borrowable"`
	Source          Source `json:"source"`
}

// ValidationError reports a stored or computed value that breaks the
// non-negative integer contract of the metric fields.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation_error: %s: %s", e.Field, e.Message)
}

type GraphReader interface {
	PersonMetrics(ctx context.Context, personID int64) (graph.PersonMetrics, error)
	OwnBalances(ctx context.Context, personID int64) ([]int64, error)
	FriendBalances(ctx context.Context, personID int64) ([]int64, error)
}

// Service answers metric reads. Values written by the pipeline win; persons
// the pipeline has not reached yet are computed live without writing back.
type Service struct {
	graph GraphReader
}

func NewService(g GraphReader) *Service {
	return &Service{graph: g}
}

func (s *Service) NetWorth(ctx context.Context, personID int64) (*NetWorthResult, error) {
	stored, err := s.graph.PersonMetrics(ctx, personID)
	if err != nil {
		return nil, err
	}
	if stored.NetWorthCents != nil {
		if err := validateNonNegative(string(graph.NetWorthCents), *stored.NetWorthCents); err != nil {
			return nil, err
		}
		return newNetWorthResult(personID, *stored.NetWorthCents, SourceStored), nil
	}

	balances, err := s.graph.OwnBalances(ctx, personID)
	if err != nil {
		return nil, err
	}
	value := NetWorth(balances)
	if err := validateNonNegative(string(graph.NetWorthCents), value); err != nil {
		return nil, err
	}
	return newNetWorthResult(personID, value, SourceComputed), nil
}

func (s *Service) Borrowable(ctx context.Context, personID int64) (*BorrowableResult, error) {
	stored, err := s.graph.PersonMetrics(ctx, personID)
	if err != nil {
		return nil, err
	}
	if stored.MaxBorrowableCents != nil {
		if err := validateNonNegative(string(graph.MaxBorrowableCents), *stored.MaxBorrowableCents); err != nil {
			return nil, err
		}
		return newBorrowableResult(personID, *stored.MaxBorrowableCents, SourceStored), nil
	}

	own, err := s.graph.OwnBalances(ctx, personID)
	if err != nil {
		return nil, err
	}
	// the person's own balance must satisfy the same contract as a stored
	// net worth before it is used
	if err := validateNonNegative(string(graph.NetWorthCents), NetWorth(own)); err != nil {
		return nil, err
	}
	friends, err := s.graph.FriendBalances(ctx, personID)
	if err != nil {
		return nil, err
	}
	return newBorrowableResult(personID, Borrowable(own, friends), SourceComputed), nil
}

func newNetWorthResult(personID, cents int64, src Source) *NetWorthResult {
	return &NetWorthResult{PersonID: personID, NetWorthCents: cents, NetWorth: FormatCents(cents), Source: src}
}

func newBorrowableResult(personID, cents int64, src Source) *BorrowableResult {
	return &BorrowableResult{PersonID: personID, BorrowableCents: cents, Borrowable: FormatCents(cents), Source: src}
}

func validateNonNegative(field string, v int64) error {
	if v < 0 {
		return &ValidationError{Field: field, Message: fmt.Sprintf("expected non-negative integer, got %d", v)}
	}
	return nil
}
