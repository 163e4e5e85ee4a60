package domain

import "time"

// Channel represents a YouTube channel that can be indexed
type Channel struct {
	ID              string `json:"id"`
	Handle          string `json:"handle"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	UploadsPlaylist string `json:"uploads_playlist"`
	VideoCount      int64  `json:"video_count"`
	SubscriberCount int64  `json:"subscriber_count"`
}

// Video represents a single video from a channel's uploads.
// Created by the video-platform client; immutable once listed.
type Video struct {
	ID          string    `json:"id"`
	ChannelID   string    `json:"channel_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	PublishedAt time.Time `json:"published_at"`
	Duration    string    `json:"duration"` // ISO 8601 as returned by the API
}

// Transcript is the raw caption text of one video.
// Videos without captions have no transcript and are skipped during indexing.
type Transcript struct {
	VideoID  string `json:"video_id"`
	Language string `json:"language"`
	Text     string `json:"text"`
}

// Empty reports whether the transcript carries no usable text.
func (t *Transcript) Empty() bool {
	return t == nil || t.Text == ""
}
