package store

import (
	"context"
	"errors"

	"clubassist/types"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

var errEmptyQueryVector = errors.New("empty query vector")

// Searcher is the similarity-search surface the retrieval path depends on.
// The store is read-only for this service; ingestion writes the rows.
type Searcher interface {
	Search(ctx context.Context, queryVec []float32, threshold float64, limit int) ([]types.DocumentChunk, error)
}

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connStr string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{
		pool: pool,
	}, nil
}

// Search returns at most limit chunks whose cosine similarity to queryVec
// is at least threshold, ordered by descending similarity.
func (p *PostgresStore) Search(ctx context.Context, queryVec []float32, threshold float64, limit int) ([]types.DocumentChunk, error) {
	if len(queryVec) == 0 {
		return nil, types.VectorStoreError(errEmptyQueryVector)
	}

	vector := pgvector.NewVector(queryVec)

	query := `
		SELECT id, chunk_text, source_file, source_url, created_at,
		       1 - (embedding <=> $1) AS similarity
		FROM document_chunks
		WHERE embedding IS NOT NULL
		  AND 1 - (embedding <=> $1) >= $2
		ORDER BY embedding <=> $1
		LIMIT $3
	`
	rows, err := p.pool.Query(ctx, query, vector, threshold, limit)
	if err != nil {
		return nil, types.VectorStoreError(err)
	}
	defer rows.Close()

	var chunks []types.DocumentChunk
	for rows.Next() {
		var chunk types.DocumentChunk
		if err := rows.Scan(
			&chunk.ID,
			&chunk.ChunkText,
			&chunk.SourceFile,
			&chunk.SourceURL,
			&chunk.CreatedAt,
			&chunk.Similarity,
		); err != nil {
			return nil, types.VectorStoreError(err)
		}
		chunks = append(chunks, chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, types.VectorStoreError(err)
	}
	return chunks, nil
}

func (p *PostgresStore) createChunkTables(ctx context.Context) error {
	query := `
    CREATE EXTENSION IF NOT EXISTS vector;

    CREATE TABLE IF NOT EXISTS document_chunks (
        id UUID PRIMARY KEY,
        chunk_text TEXT NOT NULL,
        embedding vector(768),
        source_file TEXT NOT NULL,
        source_url TEXT,
        created_at TIMESTAMP WITH TIME ZONE DEFAULT now()
    );

	CREATE INDEX IF NOT EXISTS idx_document_chunks_embedding
	ON document_chunks USING ivfflat (embedding vector_cosine_ops)
	WITH (lists = 100);

	CREATE INDEX IF NOT EXISTS idx_document_chunks_source_file ON document_chunks(source_file);
    `
	_, err := p.pool.Exec(ctx, query)
	return err
}

func (p *PostgresStore) Init(ctx context.Context) error {
	return p.createChunkTables(ctx)
}

func (p *PostgresStore) Close() {
	if p.pool != nil {
		p.pool.Close()
	}
}
