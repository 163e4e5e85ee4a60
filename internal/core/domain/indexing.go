package domain

// IndexingStats counts the outcome of one channel indexing run.
// Per-video failures (no captions, fetch errors) are counted as skips,
// never propagated.
type IndexingStats struct {
	ChannelID     string `json:"channel_id"`
	ChannelName   string `json:"channel_name"`
	VideosIndexed int    `json:"videos_indexed"`
	VideosSkipped int    `json:"videos_skipped"`
	TotalChunks   int    `json:"total_chunks"`
}

// IndexOptions configures a channel indexing run.
type IndexOptions struct {
	// MaxVideos caps how many videos are listed and processed.
	MaxVideos int `json:"max_videos"`

	// Clear empties the vector store before indexing.
	Clear bool `json:"clear"`
}

// DefaultIndexOptions returns sensible defaults.
func DefaultIndexOptions() IndexOptions {
	return IndexOptions{MaxVideos: 50}
}

// IndexResult is the outcome of a channel indexing run, including failures,
// as reported by the worker and the API.
type IndexResult struct {
	ChannelHandle string         `json:"channel_handle"`
	Success       bool           `json:"success"`
	Stats         *IndexingStats `json:"stats,omitempty"`
	Error         string         `json:"error,omitempty"`
	Duration      float64        `json:"duration_seconds"`
}
