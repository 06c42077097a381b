// Package neo4j implements graph.Store with Cypher over the neo4j v5 driver.
package neo4j

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/scalara/backend/internal/graph"
)

type GraphRepository struct {
	driver   neo4j.DriverWithContext
	database string
}

func NewGraphRepository(driver neo4j.DriverWithContext, database string) *GraphRepository {
	return &GraphRepository{driver: driver, database: database}
}

func (r *GraphRepository) session(ctx context.Context, mode neo4j.AccessMode) neo4j.SessionWithContext {
	return r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: mode, DatabaseName: r.database})
}

func (r *GraphRepository) PersonIDs(ctx context.Context) ([]int64, error) {
	session := r.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	query := `
		MATCH (p:` + graph.PersonLabel + `)
		RETURN p.id AS id
		ORDER BY id
	`
	result, err := session.Run(ctx, query, nil)
	if err != nil {
		return nil, fmt.Errorf("list persons: %w", err)
	}

	ids := make([]int64, 0)
	for result.Next(ctx) {
		id, err := int64FromRecord(result.Record(), "id")
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("list persons: %w", err)
	}
	return ids, nil
}

func (r *GraphRepository) OwnBalances(ctx context.Context, personID int64) ([]int64, error) {
	session := r.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	query := `
		MATCH (p:` + graph.PersonLabel + ` {id: $personId})-[:` + graph.OwnsAccountEdge + `]->(a:` + graph.AccountLabel + `)
		RETURN coalesce(a.balanceCents, 0) AS balance
	`
	result, err := session.Run(ctx, query, map[string]any{"personId": personID})
	if err != nil {
		return nil, fmt.Errorf("own balances: %w", err)
	}
	return collectInt64(ctx, result, "balance")
}

func (r *GraphRepository) FriendBalances(ctx context.Context, personID int64) ([]int64, error) {
	session := r.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	query := `
		MATCH (p:` + graph.PersonLabel + ` {id: $personId})-[:` + graph.FriendEdge + `]->(f:` + graph.PersonLabel + `)
		OPTIONAL MATCH (f)-[:` + graph.OwnsAccountEdge + `]->(a:` + graph.AccountLabel + `)
		RETURN f.id AS friendId, coalesce(sum(coalesce(a.balanceCents, 0)), 0) AS total
	`
	result, err := session.Run(ctx, query, map[string]any{"personId": personID})
	if err != nil {
		return nil, fmt.Errorf("friend balances: %w", err)
	}
	return collectInt64(ctx, result, "total")
}

func (r *GraphRepository) PersonMetrics(ctx context.Context, personID int64) (graph.PersonMetrics, error) {
	session := r.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	query := `
		MATCH (p:` + graph.PersonLabel + ` {id: $personId})
		RETURN p.` + string(graph.NetWorthCents) + ` AS netWorthCents, p.` + string(graph.MaxBorrowableCents) + ` AS maxBorrowableCents
	`
	result, err := session.Run(ctx, query, map[string]any{"personId": personID})
	if err != nil {
		return graph.PersonMetrics{}, fmt.Errorf("person metrics: %w", err)
	}
	if !result.Next(ctx) {
		if err := result.Err(); err != nil {
			return graph.PersonMetrics{}, fmt.Errorf("person metrics: %w", err)
		}
		return graph.PersonMetrics{}, graph.ErrPersonNotFound
	}

	record := result.Record()
	out := graph.PersonMetrics{PersonID: personID}
	if out.NetWorthCents, err = nullableInt64FromRecord(record, string(graph.NetWorthCents)); err != nil {
		return graph.PersonMetrics{}, err
	}
	if out.MaxBorrowableCents, err = nullableInt64FromRecord(record, string(graph.MaxBorrowableCents)); err != nil {
		return graph.PersonMetrics{}, err
	}
	return out, nil
}

func (r *GraphRepository) SetPersonMetric(ctx context.Context, personID int64, metric graph.Metric, value int64) error {
	if !metric.Valid() {
		return fmt.Errorf("%w: %q", graph.ErrUnsupportedField, metric)
	}
	session := r.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	// property keys cannot be parameters; metric is checked against the
	// closed set above
	query := `
		MATCH (p:` + graph.PersonLabel + ` {id: $personId})
		SET p.` + string(metric) + ` = $value
		RETURN count(p) AS matched
	`
	result, err := session.Run(ctx, query, map[string]any{"personId": personID, "value": value})
	if err != nil {
		return fmt.Errorf("set %s: %w", metric, err)
	}
	matched, err := singleInt64(ctx, result, "matched")
	if err != nil {
		return fmt.Errorf("set %s: %w", metric, err)
	}
	if matched == 0 {
		return graph.ErrPersonNotFound
	}
	return nil
}

func (r *GraphRepository) IncrementBalance(ctx context.Context, iban string, delta int64) (bool, error) {
	session := r.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	query := `
		MATCH (a:` + graph.AccountLabel + ` {iban: $iban})
		SET a.balanceCents = coalesce(a.balanceCents, 0) + $delta
		RETURN count(a) AS matched
	`
	result, err := session.Run(ctx, query, map[string]any{"iban": iban, "delta": delta})
	if err != nil {
		return false, fmt.Errorf("increment balance: %w", err)
	}
	matched, err := singleInt64(ctx, result, "matched")
	if err != nil {
		return false, fmt.Errorf("increment balance: %w", err)
	}
	return matched > 0, nil
}

func (r *GraphRepository) AccountIBANs(ctx context.Context) ([]string, error) {
	session := r.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	query := `
		MATCH (a:` + graph.AccountLabel + `)
		WHERE a.iban IS NOT NULL
		RETURN a.iban AS iban
		ORDER BY iban
	`
	result, err := session.Run(ctx, query, nil)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	out := make([]string, 0)
	for result.Next(ctx) {
		iban, err := stringFromRecord(result.Record(), "iban")
		if err != nil {
			return nil, err
		}
		out = append(out, iban)
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return out, nil
}

func (r *GraphRepository) Ping(ctx context.Context) error {
	return r.driver.VerifyConnectivity(ctx)
}

func collectInt64(ctx context.Context, result neo4j.ResultWithContext, key string) ([]int64, error) {
	out := make([]int64, 0)
	for result.Next(ctx) {
		v, err := int64FromRecord(result.Record(), key)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := result.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func singleInt64(ctx context.Context, result neo4j.ResultWithContext, key string) (int64, error) {
	if !result.Next(ctx) {
		if err := result.Err(); err != nil {
			return 0, err
		}
		return 0, fmt.Errorf("%w: no %s row", graph.ErrUnexpectedShape, key)
	}
	return int64FromRecord(result.Record(), key)
}
