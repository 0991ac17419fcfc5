// Package pgvector provides a PostgreSQL vector driver using the pgvector
// extension over a pgx connection pool.
package pgvector

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgv "github.com/pgvector/pgvector-go"
	pgxvec "github.com/pgvector/pgvector-go/pgx"

	"github.com/papercomputeco/shelf/pkg/vector"
)

// DefaultTableName is the default table for storing shelf embeddings.
const DefaultTableName = "shelf_documents"

// Driver implements vector.Driver on a pgvector table.
type Driver struct {
	pool   *pgxpool.Pool
	table  string
	logger *slog.Logger
}

// Config holds configuration for the pgvector driver.
type Config struct {
	// ConnString is a PostgreSQL connection string or URI.
	ConnString string

	// TableName defaults to DefaultTableName if empty.
	TableName string

	// Dimensions is the size of the vector column.
	Dimensions uint
}

// NewDriver ensures the vector extension and document table exist, then
// opens a pool whose connections know the vector type.
func NewDriver(ctx context.Context, c Config, logger *slog.Logger) (*Driver, error) {
	if c.ConnString == "" {
		return nil, fmt.Errorf("pgvector connection string is required")
	}
	if c.Dimensions == 0 {
		return nil, fmt.Errorf("pgvector embedding dimensions cannot be 0, must be configured")
	}

	tableName := c.TableName
	if tableName == "" {
		tableName = DefaultTableName
	}
	table := pgx.Identifier{tableName}.Sanitize()

	// The vector type must exist before pooled connections register it.
	if err := bootstrap(ctx, c.ConnString, table, c.Dimensions); err != nil {
		return nil, err
	}

	cfg, err := pgxpool.ParseConfig(c.ConnString)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: opening pool: %v", vector.ErrConnection, err)
	}

	logger = logger.With("component", "pgvector")
	logger.Info("pgvector vector driver initialized",
		"table", tableName,
		"dimensions", c.Dimensions,
	)

	return &Driver{
		pool:   pool,
		table:  table,
		logger: logger,
	}, nil
}

func bootstrap(ctx context.Context, connString, table string, dimensions uint) error {
	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		return fmt.Errorf("%w: connecting: %v", vector.ErrConnection, err)
	}
	defer conn.Close(ctx)

	if _, err := conn.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return fmt.Errorf("creating vector extension: %w", err)
	}

	_, err = conn.Exec(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			content TEXT NOT NULL DEFAULT '',
			metadata JSONB NOT NULL DEFAULT '{}'::jsonb,
			embedding vector(%d) NOT NULL
		)`, table, dimensions))
	if err != nil {
		return fmt.Errorf("creating documents table: %w", err)
	}

	return nil
}

// Add upserts documents by ID.
func (d *Driver) Add(ctx context.Context, docs []vector.Document) error {
	if len(docs) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, content, metadata, embedding)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET content = EXCLUDED.content,
			metadata = EXCLUDED.metadata,
			embedding = EXCLUDED.embedding`, d.table)

	batch := &pgx.Batch{}
	for _, doc := range docs {
		metadata := doc.Metadata
		if metadata == nil {
			metadata = map[string]string{}
		}
		batch.Queue(query, doc.ID, doc.Content, metadata, pgv.NewVector(doc.Embedding))
	}

	if err := d.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("upserting documents: %w", err)
	}

	d.logger.Debug("added documents to pgvector", "count", len(docs))
	return nil
}

// Query finds the topK most similar documents by cosine distance.
func (d *Driver) Query(ctx context.Context, embedding []float32, topK int) ([]vector.QueryResult, error) {
	if topK <= 0 {
		topK = 10
	}

	rows, err := d.pool.Query(ctx, fmt.Sprintf(`
		SELECT id, content, metadata, 1 - (embedding <=> $1) AS score
		FROM %s
		ORDER BY embedding <=> $1
		LIMIT $2`, d.table), pgv.NewVector(embedding), topK)
	if err != nil {
		return nil, fmt.Errorf("querying vectors: %w", err)
	}
	defer rows.Close()

	results := []vector.QueryResult{}
	for rows.Next() {
		var (
			r     vector.QueryResult
			score float64
		)
		if err := rows.Scan(&r.ID, &r.Content, &r.Metadata, &score); err != nil {
			return nil, fmt.Errorf("scanning query result: %w", err)
		}
		r.Score = float32(score)
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating query results: %w", err)
	}

	d.logger.Debug("queried pgvector", "results", len(results))
	return results, nil
}

// Get retrieves documents by their IDs.
func (d *Driver) Get(ctx context.Context, ids []string) ([]vector.Document, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := d.pool.Query(ctx, fmt.Sprintf(`
		SELECT id, content, metadata, embedding
		FROM %s
		WHERE id = ANY($1)`, d.table), ids)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	docs := []vector.Document{}
	for rows.Next() {
		var (
			doc vector.Document
			emb pgv.Vector
		)
		if err := rows.Scan(&doc.ID, &doc.Content, &doc.Metadata, &emb); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		doc.Embedding = emb.Slice()
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}

	return docs, nil
}

// Delete removes documents by their IDs.
func (d *Driver) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	tag, err := d.pool.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = ANY($1)`, d.table), ids)
	if err != nil {
		return fmt.Errorf("deleting documents: %w", err)
	}

	d.logger.Debug("deleted documents from pgvector", "count", tag.RowsAffected())
	return nil
}

// DeleteWhere removes every document whose metadata contains the filter.
func (d *Driver) DeleteWhere(ctx context.Context, filter vector.Filter) error {
	if len(filter) == 0 {
		return vector.ErrEmptyFilter
	}

	tag, err := d.pool.Exec(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE metadata @> $1`, d.table),
		map[string]string(filter),
	)
	if err != nil {
		return fmt.Errorf("deleting documents by filter: %w", err)
	}

	d.logger.Debug("deleted documents from pgvector by filter", "filter", filter, "count", tag.RowsAffected())
	return nil
}

// Close closes the connection pool.
func (d *Driver) Close() error {
	d.pool.Close()
	return nil
}

var _ vector.Driver = (*Driver)(nil)
