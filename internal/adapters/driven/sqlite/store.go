package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/cobalt-labs/tubechat-core/internal/core/domain"
	"github.com/cobalt-labs/tubechat-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.VectorStore = (*Store)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS chunks (
	id           TEXT PRIMARY KEY,
	video_id     TEXT NOT NULL,
	video_title  TEXT NOT NULL DEFAULT '',
	channel_id   TEXT NOT NULL DEFAULT '',
	channel_name TEXT NOT NULL DEFAULT '',
	published_at TIMESTAMP,
	content      TEXT NOT NULL,
	embedding    BLOB NOT NULL,
	position     INTEGER NOT NULL DEFAULT 0,
	start_char   INTEGER NOT NULL DEFAULT 0,
	end_char     INTEGER NOT NULL DEFAULT 0,
	created_at   TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_chunks_video ON chunks(video_id);
CREATE INDEX IF NOT EXISTS idx_chunks_channel ON chunks(channel_id);

CREATE TABLE IF NOT EXISTS collection_meta (
	id        INTEGER PRIMARY KEY CHECK (id = 1),
	dimension INTEGER NOT NULL,
	model     TEXT NOT NULL DEFAULT ''
);
`

// Store implements VectorStore on a local SQLite file. Embeddings are stored
// as little-endian float32 blobs; similarity is cosine, computed in process.
// The collection's embedding dimension is fixed by the first Add and recorded
// in collection_meta.
type Store struct {
	db    *sqlx.DB
	model string
}

// NewStore opens (or creates) a SQLite vector store at path.
// model names the embedding model the collection is built with; it is
// recorded on first write and reported by Summary.
func NewStore(path, model string) (*Store, error) {
	db, err := sqlx.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Store{db: db, model: model}, nil
}

// chunkRow is the database representation of a chunk
type chunkRow struct {
	ID          string       `db:"id"`
	VideoID     string       `db:"video_id"`
	VideoTitle  string       `db:"video_title"`
	ChannelID   string       `db:"channel_id"`
	ChannelName string       `db:"channel_name"`
	PublishedAt sql.NullTime `db:"published_at"`
	Content     string       `db:"content"`
	Embedding   []byte       `db:"embedding"`
	Position    int          `db:"position"`
	StartChar   int          `db:"start_char"`
	EndChar     int          `db:"end_char"`
	CreatedAt   time.Time    `db:"created_at"`
}

func (r chunkRow) toDomain() *domain.Chunk {
	chunk := &domain.Chunk{
		ID:          r.ID,
		VideoID:     r.VideoID,
		VideoTitle:  r.VideoTitle,
		ChannelID:   r.ChannelID,
		ChannelName: r.ChannelName,
		Content:     r.Content,
		Embedding:   decodeEmbedding(r.Embedding),
		Position:    r.Position,
		StartChar:   r.StartChar,
		EndChar:     r.EndChar,
		CreatedAt:   r.CreatedAt,
	}
	if r.PublishedAt.Valid {
		chunk.PublishedAt = r.PublishedAt.Time
	}
	return chunk
}

// Add persists chunks together with their embeddings
func (s *Store) Add(ctx context.Context, chunks []*domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	dimension, err := s.dimension(ctx)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if dimension == 0 {
		dimension = len(chunks[0].Embedding)
		if dimension == 0 {
			return domain.ErrDimensionMismatch
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO collection_meta (id, dimension, model) VALUES (1, ?, ?)`,
			dimension, s.model,
		); err != nil {
			return fmt.Errorf("failed to record collection dimension: %w", err)
		}
	}

	const insert = `
		INSERT INTO chunks (id, video_id, video_title, channel_id, channel_name,
			published_at, content, embedding, position, start_char, end_char, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			content = excluded.content,
			embedding = excluded.embedding
	`

	for _, chunk := range chunks {
		if len(chunk.Embedding) != dimension {
			return domain.ErrDimensionMismatch
		}

		if _, err := tx.ExecContext(ctx, insert,
			chunk.ID,
			chunk.VideoID,
			chunk.VideoTitle,
			chunk.ChannelID,
			chunk.ChannelName,
			chunk.PublishedAt,
			chunk.Content,
			encodeEmbedding(chunk.Embedding),
			chunk.Position,
			chunk.StartChar,
			chunk.EndChar,
			chunk.CreatedAt,
		); err != nil {
			return fmt.Errorf("failed to insert chunk %s: %w", chunk.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// Query returns the k stored chunks nearest to the embedding, best first
func (s *Store) Query(ctx context.Context, embedding []float32, k int, filter driven.QueryFilter) ([]*domain.ScoredChunk, error) {
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

	query := `SELECT * FROM chunks`
	var args []interface{}
	if filter.ChannelID != "" {
		query += ` WHERE channel_id = ?`
		args = append(args, filter.ChannelID)
	}

	var rows []chunkRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}

	results := make([]*domain.ScoredChunk, 0, len(rows))
	for _, row := range rows {
		chunk := row.toDomain()
		results = append(results, &domain.ScoredChunk{
			Chunk: chunk,
			Score: cosineSimilarity(embedding, chunk.Embedding),
		})
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// Count returns the number of stored chunks
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM chunks`); err != nil {
		return 0, fmt.Errorf("failed to count chunks: %w", err)
	}
	return count, nil
}

// Summary aggregates stored chunks per video
func (s *Store) Summary(ctx context.Context) (*domain.IndexSummary, error) {
	summary := &domain.IndexSummary{}

	var meta struct {
		Dimension int    `db:"dimension"`
		Model     string `db:"model"`
	}
	err := s.db.GetContext(ctx, &meta, `SELECT dimension, model FROM collection_meta WHERE id = 1`)
	switch {
	case err == nil:
		summary.Dimension = meta.Dimension
		summary.Model = meta.Model
	case errors.Is(err, sql.ErrNoRows):
		// Empty collection
	default:
		return nil, fmt.Errorf("failed to read collection meta: %w", err)
	}

	type videoRow struct {
		VideoID     string `db:"video_id"`
		VideoTitle  string `db:"video_title"`
		ChannelID   string `db:"channel_id"`
		ChannelName string `db:"channel_name"`
		ChunkCount  int    `db:"chunk_count"`
	}

	var videos []videoRow
	if err := s.db.SelectContext(ctx, &videos, `
		SELECT video_id, video_title, channel_id, channel_name, COUNT(*) AS chunk_count
		FROM chunks
		GROUP BY video_id, video_title, channel_id, channel_name
		ORDER BY MIN(published_at) DESC
	`); err != nil {
		return nil, fmt.Errorf("failed to aggregate videos: %w", err)
	}

	for _, v := range videos {
		summary.TotalChunks += v.ChunkCount
		summary.Videos = append(summary.Videos, domain.VideoSummary{
			VideoID:     v.VideoID,
			VideoTitle:  v.VideoTitle,
			ChannelID:   v.ChannelID,
			ChannelName: v.ChannelName,
			ChunkCount:  v.ChunkCount,
		})
	}

	return summary, nil
}

// Clear removes all stored chunks and resets the collection dimension
func (s *Store) Clear(ctx context.Context) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks`); err != nil {
		return fmt.Errorf("failed to clear chunks: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM collection_meta`); err != nil {
		return fmt.Errorf("failed to clear collection meta: %w", err)
	}

	return tx.Commit()
}

// Close releases the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}

// dimension returns the established embedding dimension, 0 when unset
func (s *Store) dimension(ctx context.Context) (int, error) {
	var dimension int
	err := s.db.GetContext(ctx, &dimension, `SELECT dimension FROM collection_meta WHERE id = 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read collection dimension: %w", err)
	}
	return dimension, nil
}

// encodeEmbedding packs a vector as little-endian float32 bytes
func encodeEmbedding(embedding []float32) []byte {
	buf := make([]byte, 4*len(embedding))
	for i, v := range embedding {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

// decodeEmbedding unpacks little-endian float32 bytes into a vector
func decodeEmbedding(buf []byte) []float32 {
	embedding := make([]float32, len(buf)/4)
	for i := range embedding {
		embedding[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return embedding
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
