package store

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"wahlkompass/internal/models"
)

// IndexUnavailableError means the published chunk index is missing or
// empty at startup. Fatal to the whole service, not per-request.
type IndexUnavailableError struct {
	Table string
	Err   error
}

func (e *IndexUnavailableError) Error() string {
	return fmt.Sprintf("chunk index %q unavailable: %v", e.Table, e.Err)
}

func (e *IndexUnavailableError) Unwrap() error { return e.Err }

type VectorStoreConfig struct {
	ConnString string
	TableName  string
	VectorDim  int
	BatchSize  int
}

// VectorStore keeps manifesto chunks and their embeddings in a pgvector
// table under a well-known name. The published table is never mutated in
// place: Rebuild fills a staging table and swaps it in atomically.
type VectorStore struct {
	config VectorStoreConfig
	pool   *pgxpool.Pool
}

func NewWithConfig(config VectorStoreConfig) (*VectorStore, error) {
	if config.TableName == "" {
		config.TableName = "manifesto_chunks"
	}
	if config.VectorDim == 0 {
		config.VectorDim = 1536 // Default for OpenAI embeddings
	}
	if config.BatchSize == 0 {
		config.BatchSize = 100
	}

	pool, err := pgxpool.New(context.Background(), config.ConnString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	vs := &VectorStore{config: config, pool: pool}

	if _, err := pool.Exec(context.Background(), "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create vector extension: %w", err)
	}

	return vs, nil
}

// Pool exposes the underlying connection pool for collaborators sharing
// the same database, such as the analysis history.
func (vs *VectorStore) Pool() *pgxpool.Pool { return vs.pool }

// Ready verifies that the published index exists and holds chunks. Called
// once at process start; failure is fatal to the service.
func (vs *VectorStore) Ready(ctx context.Context) error {
	var count int
	query := fmt.Sprintf("SELECT count(*) FROM %s", vs.config.TableName)
	if err := vs.pool.QueryRow(ctx, query).Scan(&count); err != nil {
		return &IndexUnavailableError{Table: vs.config.TableName, Err: err}
	}
	if count == 0 {
		return &IndexUnavailableError{Table: vs.config.TableName, Err: fmt.Errorf("index is empty")}
	}
	return nil
}

// Rebuild replaces the published index with the given chunks wholesale.
// Everything happens in one transaction: the staging table is filled and
// indexed, then renamed over the old table, so a crash mid-build never
// corrupts a previously published index.
func (vs *VectorStore) Rebuild(ctx context.Context, chunks []models.Chunk, embeddings [][]float32) error {
	if len(chunks) != len(embeddings) {
		return fmt.Errorf("chunk/embedding count mismatch: %d vs %d", len(chunks), len(embeddings))
	}
	if len(chunks) == 0 {
		return fmt.Errorf("refusing to publish an empty index")
	}

	staging := vs.config.TableName + "_staging"

	tx, err := vs.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", staging)); err != nil {
		return fmt.Errorf("failed to drop staging table: %w", err)
	}

	createTable := fmt.Sprintf(`
		CREATE TABLE %s (
			id TEXT PRIMARY KEY,
			party TEXT NOT NULL,
			category TEXT NOT NULL,
			source TEXT NOT NULL,
			page INTEGER,
			content TEXT NOT NULL,
			embedding vector(%d)
		)`, staging, vs.config.VectorDim)
	if _, err := tx.Exec(ctx, createTable); err != nil {
		return fmt.Errorf("failed to create staging table: %w", err)
	}

	insert := fmt.Sprintf(`
		INSERT INTO %s (id, party, category, source, page, content, embedding)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`, staging)

	for start := 0; start < len(chunks); start += vs.config.BatchSize {
		end := start + vs.config.BatchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		batch := &pgx.Batch{}
		for i := start; i < end; i++ {
			chunk := chunks[i]
			batch.Queue(insert,
				chunk.ID,
				chunk.Party,
				chunk.Category,
				chunk.Source,
				chunk.Page,
				sanitizeUTF8(chunk.Content),
				pgvector.NewVector(embeddings[i]),
			)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to insert chunks: %w", err)
		}
	}

	createIndex := fmt.Sprintf(`
		CREATE INDEX %s_embedding_idx
		ON %s
		USING ivfflat (embedding vector_cosine_ops)
		WITH (lists = 100)`, staging, staging)
	if _, err := tx.Exec(ctx, createIndex); err != nil {
		return fmt.Errorf("failed to create vector index: %w", err)
	}

	if _, err := tx.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", vs.config.TableName)); err != nil {
		return fmt.Errorf("failed to drop published table: %w", err)
	}
	rename := fmt.Sprintf("ALTER TABLE %s RENAME TO %s", staging, vs.config.TableName)
	if _, err := tx.Exec(ctx, rename); err != nil {
		return fmt.Errorf("failed to publish index: %w", err)
	}
	// Index names are schema-global, so the staging index must be renamed
	// along with the table or the next rebuild collides with it.
	renameIdx := fmt.Sprintf("ALTER INDEX %s_embedding_idx RENAME TO %s_embedding_idx", staging, vs.config.TableName)
	if _, err := tx.Exec(ctx, renameIdx); err != nil {
		return fmt.Errorf("failed to rename vector index: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit rebuild: %w", err)
	}

	return nil
}

// Search returns the limit chunks whose embeddings are closest to the
// query embedding by cosine distance, with full metadata.
func (vs *VectorStore) Search(ctx context.Context, embedding []float32, limit int) ([]models.Chunk, error) {
	query := fmt.Sprintf(`
		SELECT id, party, category, source, page, content
		FROM %s
		ORDER BY embedding <=> $1
		LIMIT $2`, vs.config.TableName)

	rows, err := vs.pool.Query(ctx, query, pgvector.NewVector(embedding), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	defer rows.Close()

	var chunks []models.Chunk
	for rows.Next() {
		var chunk models.Chunk
		if err := rows.Scan(
			&chunk.ID,
			&chunk.Party,
			&chunk.Category,
			&chunk.Source,
			&chunk.Page,
			&chunk.Content,
		); err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		chunks = append(chunks, chunk)
	}

	return chunks, rows.Err()
}

func (vs *VectorStore) Close() {
	if vs.pool != nil {
		vs.pool.Close()
	}
}

func sanitizeUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	v := make([]rune, 0, len(s))
	for i, r := range s {
		if r == utf8.RuneError {
			_, size := utf8.DecodeRuneInString(s[i:])
			if size == 1 {
				continue
			}
		}
		v = append(v, r)
	}
	return string(v)
}
