// Package graph declares the capabilities the pipeline needs from the graph
// store, independent of any query language.
package graph

import (
	"context"
	"errors"
)

const (
	PersonLabel  = "Person"
	AccountLabel = "BankAccount"

	OwnsAccountEdge = "HAS_BANKACCOUNT"
	FriendEdge      = "HAS_FRIEND"
)

// Metric is a derived person property written by the pipeline.
type Metric string

const (
	NetWorthCents      Metric = "netWorthCents"
	MaxBorrowableCents Metric = "maxBorrowableCents"
)

func (m Metric) Valid() bool {
	return m == NetWorthCents || m == MaxBorrowableCents
}

var (
	ErrPersonNotFound   = errors.New("person_not_found")
	ErrUnexpectedShape  = errors.New("unexpected_graph_response")
	ErrUnsupportedField = errors.New("unsupported_metric")
)

// PersonMetrics is the stored projection of a person's derived fields. A nil
// field has never been computed.
type PersonMetrics struct {
	PersonID           int64
	NetWorthCents      *int64
	MaxBorrowableCents *int64
}

type Store interface {
	PersonIDs(ctx context.Context) ([]int64, error)
	// OwnBalances lists the balances of accounts reachable over OwnsAccountEdge.
	OwnBalances(ctx context.Context, personID int64) ([]int64, error)
	// FriendBalances lists, per friend, the sum of that friend's own balances.
	// A friend without accounts contributes 0.
	FriendBalances(ctx context.Context, personID int64) ([]int64, error)
	PersonMetrics(ctx context.Context, personID int64) (PersonMetrics, error)
	SetPersonMetric(ctx context.Context, personID int64, metric Metric, value int64) error
	// IncrementBalance adds delta to the account's balance inside the store.
	// It reports false when no account carries the IBAN.
	IncrementBalance(ctx context.Context, iban string, delta int64) (bool, error)
	AccountIBANs(ctx context.Context) ([]string, error)
}
