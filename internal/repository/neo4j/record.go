package neo4j

import (
	"fmt"
	"math"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/scalara/backend/internal/graph"
)

func int64FromRecord(record *neo4j.Record, key string) (int64, error) {
	v, err := nullableInt64FromRecord(record, key)
	if err != nil {
		return 0, err
	}
	if v == nil {
		return 0, fmt.Errorf("%w: %s is null", graph.ErrUnexpectedShape, key)
	}
	return *v, nil
}

// nullableInt64FromRecord accepts integers and whole floats, since other
// writers may have stored numbers as floats.
func nullableInt64FromRecord(record *neo4j.Record, key string) (*int64, error) {
	val, ok := record.Get(key)
	if !ok {
		return nil, fmt.Errorf("%w: missing key %s", graph.ErrUnexpectedShape, key)
	}
	switch v := val.(type) {
	case nil:
		return nil, nil
	case int64:
		return &v, nil
	case int:
		out := int64(v)
		return &out, nil
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) || math.IsNaN(v) {
			return nil, fmt.Errorf("%w: %s is not an integer (%v)", graph.ErrUnexpectedShape, key, v)
		}
		out := int64(v)
		return &out, nil
	default:
		return nil, fmt.Errorf("%w: %s has type %T", graph.ErrUnexpectedShape, key, val)
	}
}

func stringFromRecord(record *neo4j.Record, key string) (string, error) {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return "", fmt.Errorf("%w: missing key %s", graph.ErrUnexpectedShape, key)
	}
	s, ok := val.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s has type %T", graph.ErrUnexpectedShape, key, val)
	}
	return s, nil
}
