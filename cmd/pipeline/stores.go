package main

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/scalara/backend/internal/config"
	"github.com/scalara/backend/internal/db"
	neo4jrepo "github.com/scalara/backend/internal/repository/neo4j"
)

type stores struct {
	pool   *pgxpool.Pool
	driver neo4j.DriverWithContext
	graph  *neo4jrepo.GraphRepository
}

// openStores connects to Postgres and, when withGraph is set, to Neo4j.
func openStores(ctx context.Context, cfg config.Config, withGraph bool) (*stores, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := db.NewPostgresPool(connectCtx, cfg)
	if err != nil {
		return nil, err
	}
	s := &stores{pool: pool}
	if !withGraph {
		return s, nil
	}

	driver, err := db.NewNeo4jDriver(connectCtx, cfg)
	if err != nil {
		pool.Close()
		return nil, err
	}
	s.driver = driver
	s.graph = neo4jrepo.NewGraphRepository(driver, cfg.Neo4jDatabase)
	return s, nil
}

func (s *stores) Close() {
	if s.driver != nil {
		_ = s.driver.Close(context.Background())
	}
	s.pool.Close()
}
