package testutil

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// NewTestDriver connects to NEO4J_TEST_URI and skips the test when the graph
// is unreachable. It returns the driver and the database to open sessions on.
func NewTestDriver(t *testing.T) (neo4j.DriverWithContext, string) {
	t.Helper()

	uri := envOr("NEO4J_TEST_URI", "neo4j://localhost:7687")
	user := envOr("NEO4J_TEST_USERNAME", "neo4j")
	password := envOr("NEO4J_TEST_PASSWORD", "secret-password")
	database := envOr("NEO4J_TEST_DATABASE", "neo4j")

	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		t.Skipf("skip integration test (neo4j driver init): %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		t.Skipf("skip integration test (neo4j connectivity): %v", err)
	}

	t.Cleanup(func() {
		_ = driver.Close(context.Background())
	})
	return driver, database
}

// RunCypher executes a write statement and fails the test on error.
func RunCypher(t *testing.T, driver neo4j.DriverWithContext, database, query string, params map[string]any) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	session := driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite, DatabaseName: database})
	defer session.Close(ctx)

	result, err := session.Run(ctx, query, params)
	if err != nil {
		t.Fatalf("run cypher: %v", err)
	}
	if _, err := result.Consume(ctx); err != nil {
		t.Fatalf("consume cypher: %v", err)
	}
}
