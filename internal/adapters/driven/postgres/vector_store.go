package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"github.com/cobalt-labs/tubechat-core/internal/core/domain"
	"github.com/cobalt-labs/tubechat-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.VectorStore = (*VectorStore)(nil)

// VectorStore implements chunk storage and similarity search on Postgres
// with the pgvector extension. Nearest-neighbor queries use the cosine
// distance operator; scores are reported as 1 - distance.
//
// pgvector fixes the vector dimension at table creation time, so the
// chunks table is created on the first Add and dropped by Clear.
type VectorStore struct {
	db    *DB
	model string
}

// NewVectorStore wraps an initialized database connection.
// model names the embedding model the collection is built with.
func NewVectorStore(db *DB, model string) *VectorStore {
	return &VectorStore{db: db, model: model}
}

// Add persists chunks together with their embeddings
func (s *VectorStore) Add(ctx context.Context, chunks []*domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	dimension, err := s.dimension(ctx)
	if err != nil {
		return err
	}
	if dimension == 0 {
		dimension = len(chunks[0].Embedding)
		if dimension == 0 {
			return domain.ErrDimensionMismatch
		}
		if err := s.createCollection(ctx, dimension); err != nil {
			return err
		}
	}

	for _, chunk := range chunks {
		if len(chunk.Embedding) != dimension {
			return domain.ErrDimensionMismatch
		}
	}

	return s.db.Transaction(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO chunks (id, video_id, video_title, channel_id, channel_name,
				published_at, content, embedding, position, start_char, end_char, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			ON CONFLICT (id) DO UPDATE SET
				content = EXCLUDED.content,
				embedding = EXCLUDED.embedding
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare insert: %w", err)
		}
		defer stmt.Close()

		for _, chunk := range chunks {
			_, err := stmt.ExecContext(ctx,
				chunk.ID,
				chunk.VideoID,
				chunk.VideoTitle,
				chunk.ChannelID,
				chunk.ChannelName,
				chunk.PublishedAt,
				chunk.Content,
				pgvector.NewVector(chunk.Embedding),
				chunk.Position,
				chunk.StartChar,
				chunk.EndChar,
				chunk.CreatedAt,
			)
			if err != nil {
				return fmt.Errorf("failed to insert chunk %s: %w", chunk.ID, err)
			}
		}
		return nil
	})
}

// Query returns the k stored chunks nearest to the embedding, best first
func (s *VectorStore) Query(ctx context.Context, embedding []float32, k int, filter driven.QueryFilter) ([]*domain.ScoredChunk, error) {
	dimension, err := s.dimension(ctx)
	if err != nil {
		return nil, err
	}
	if dimension == 0 {
		return nil, nil
	}
	if len(embedding) != dimension {
		return nil, domain.ErrDimensionMismatch
	}

	query := `
		SELECT id, video_id, video_title, channel_id, channel_name,
			published_at, content, embedding, position, start_char, end_char, created_at,
			1 - (embedding <=> $1) AS score
		FROM chunks
	`
	args := []interface{}{pgvector.NewVector(embedding)}
	if filter.ChannelID != "" {
		query += ` WHERE channel_id = $2`
		args = append(args, filter.ChannelID)
	}
	query += fmt.Sprintf(` ORDER BY embedding <=> $1 LIMIT %d`, k)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	defer rows.Close()

	var results []*domain.ScoredChunk
	for rows.Next() {
		var (
			chunk       domain.Chunk
			publishedAt sql.NullTime
			vec         pgvector.Vector
			score       float64
		)
		if err := rows.Scan(
			&chunk.ID,
			&chunk.VideoID,
			&chunk.VideoTitle,
			&chunk.ChannelID,
			&chunk.ChannelName,
			&publishedAt,
			&chunk.Content,
			&vec,
			&chunk.Position,
			&chunk.StartChar,
			&chunk.EndChar,
			&chunk.CreatedAt,
			&score,
		); err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		if publishedAt.Valid {
			chunk.PublishedAt = publishedAt.Time
		}
		chunk.Embedding = vec.Slice()
		results = append(results, &domain.ScoredChunk{Chunk: &chunk, Score: score})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate chunks: %w", err)
	}
	return results, nil
}

// Count returns the number of stored chunks
func (s *VectorStore) Count(ctx context.Context) (int, error) {
	dimension, err := s.dimension(ctx)
	if err != nil {
		return 0, err
	}
	if dimension == 0 {
		return 0, nil
	}

	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count chunks: %w", err)
	}
	return count, nil
}

// Summary aggregates stored chunks per video
func (s *VectorStore) Summary(ctx context.Context) (*domain.IndexSummary, error) {
	summary := &domain.IndexSummary{}

	err := s.db.QueryRowContext(ctx,
		`SELECT dimension, model FROM collection_meta WHERE id = 1`,
	).Scan(&summary.Dimension, &summary.Model)
	if errors.Is(err, sql.ErrNoRows) {
		return summary, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read collection meta: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT video_id, video_title, channel_id, channel_name, COUNT(*) AS chunk_count
		FROM chunks
		GROUP BY video_id, video_title, channel_id, channel_name
		ORDER BY MIN(published_at) DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate videos: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var v domain.VideoSummary
		if err := rows.Scan(&v.VideoID, &v.VideoTitle, &v.ChannelID, &v.ChannelName, &v.ChunkCount); err != nil {
			return nil, fmt.Errorf("failed to scan video summary: %w", err)
		}
		summary.TotalChunks += v.ChunkCount
		summary.Videos = append(summary.Videos, v)
	}
	return summary, rows.Err()
}

// Clear drops the collection so a new dimension can be established
func (s *VectorStore) Clear(ctx context.Context) error {
	return s.db.Transaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS chunks`); err != nil {
			return fmt.Errorf("failed to drop chunks table: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM collection_meta`); err != nil {
			return fmt.Errorf("failed to clear collection meta: %w", err)
		}
		return nil
	})
}

// Close releases the underlying database
func (s *VectorStore) Close() error {
	return s.db.Close()
}

// dimension returns the established embedding dimension, 0 when unset
func (s *VectorStore) dimension(ctx context.Context) (int, error) {
	var dimension int
	err := s.db.QueryRowContext(ctx, `SELECT dimension FROM collection_meta WHERE id = 1`).Scan(&dimension)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read collection dimension: %w", err)
	}
	return dimension, nil
}

// createCollection creates the chunks table for the given dimension and
// records it in collection_meta
func (s *VectorStore) createCollection(ctx context.Context, dimension int) error {
	return s.db.Transaction(ctx, func(tx *sql.Tx) error {
		create := fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS chunks (
				id           TEXT PRIMARY KEY,
				video_id     TEXT NOT NULL,
				video_title  TEXT NOT NULL DEFAULT '',
				channel_id   TEXT NOT NULL DEFAULT '',
				channel_name TEXT NOT NULL DEFAULT '',
				published_at TIMESTAMPTZ,
				content      TEXT NOT NULL,
				embedding    vector(%d) NOT NULL,
				position     INTEGER NOT NULL DEFAULT 0,
				start_char   INTEGER NOT NULL DEFAULT 0,
				end_char     INTEGER NOT NULL DEFAULT 0,
				created_at   TIMESTAMPTZ NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_chunks_video ON chunks(video_id);
			CREATE INDEX IF NOT EXISTS idx_chunks_channel ON chunks(channel_id);
		`, dimension)
		if _, err := tx.ExecContext(ctx, create); err != nil {
			return fmt.Errorf("failed to create chunks table: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO collection_meta (id, dimension, model) VALUES (1, $1, $2)
			 ON CONFLICT (id) DO UPDATE SET dimension = EXCLUDED.dimension, model = EXCLUDED.model`,
			dimension, s.model,
		); err != nil {
			return fmt.Errorf("failed to record collection dimension: %w", err)
		}
		return nil
	})
}
