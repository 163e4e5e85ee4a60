package domain

// NoRelevantContentAnswer is returned when retrieval finds nothing to ground
// an answer on. The LLM is not called in that case.
const NoRelevantContentAnswer = "I couldn't find any relevant information in the indexed videos to answer your question."

// AskOptions configures a single chat question.
type AskOptions struct {
	// TopK is how many chunks to retrieve. Defaults to 5.
	TopK int `json:"top_k"`

	// ChannelID restricts retrieval to one channel. Empty means all.
	ChannelID string `json:"channel_id,omitempty"`
}

// DefaultAskOptions returns sensible defaults.
func DefaultAskOptions() AskOptions {
	return AskOptions{TopK: 5}
}

// Source cites one retrieved chunk backing an answer.
type Source struct {
	VideoID     string  `json:"video_id"`
	VideoTitle  string  `json:"video_title"`
	ChannelName string  `json:"channel_name"`
	Position    int     `json:"position"`
	StartChar   int     `json:"start_char"`
	EndChar     int     `json:"end_char"`
	Score       float64 `json:"score"`
}

// ChatResult is the answer to one question together with its sources,
// ordered by retrieval score.
type ChatResult struct {
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Sources  []Source `json:"sources"`
	Grounded bool     `json:"grounded"` // false when no relevant content was found
}
