package domain

import "time"

// Chunk is the unit of retrieval: a bounded window of a video transcript
// tagged with enough metadata to cite the source video.
type Chunk struct {
	ID          string    `json:"id"`
	VideoID     string    `json:"video_id"`
	VideoTitle  string    `json:"video_title"`
	ChannelID   string    `json:"channel_id"`
	ChannelName string    `json:"channel_name"`
	PublishedAt time.Time `json:"published_at"`
	Content     string    `json:"content"`
	Embedding   []float32 `json:"embedding,omitempty"`
	Position    int       `json:"position"` // Chunk position within the transcript
	StartChar   int       `json:"start_char"`
	EndChar     int       `json:"end_char"`
	CreatedAt   time.Time `json:"created_at"`
}

// ScoredChunk is a retrieval result with its similarity score.
type ScoredChunk struct {
	Chunk *Chunk  `json:"chunk"`
	Score float64 `json:"score"`
}

// VideoSummary aggregates stored chunks per video for index inspection.
type VideoSummary struct {
	VideoID     string `json:"video_id"`
	VideoTitle  string `json:"video_title"`
	ChannelID   string `json:"channel_id"`
	ChannelName string `json:"channel_name"`
	ChunkCount  int    `json:"chunk_count"`
}

// IndexSummary describes the current contents of the vector store.
type IndexSummary struct {
	TotalChunks int            `json:"total_chunks"`
	Dimension   int            `json:"dimension"` // 0 when the store is empty
	Model       string         `json:"model,omitempty"`
	Videos      []VideoSummary `json:"videos"`
}
