package youtube

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/cobalt-labs/tubechat-core/internal/core/domain"
	"github.com/cobalt-labs/tubechat-core/internal/core/ports/driven"
)

// Ensure TranscriptClient implements TranscriptFetcher
var _ driven.TranscriptFetcher = (*TranscriptClient)(nil)

const (
	watchPageUA = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

	// playerResponseMarker marks the start of the player response JSON in
	// watch page HTML.
	playerResponseMarker = "ytInitialPlayerResponse = "
)

// TranscriptClient fetches video transcripts by scraping the watch page:
// the embedded ytInitialPlayerResponse lists caption tracks, and each track's
// baseUrl serves timedtext XML. Needs no API key and works from any IP.
type TranscriptClient struct {
	baseURL   string
	languages []string
	client    *http.Client
}

// NewTranscriptClient creates a new transcript client.
// languages are preferred caption languages in order; defaults to English.
func NewTranscriptClient(languages ...string) *TranscriptClient {
	if len(languages) == 0 {
		languages = []string{"en"}
	}

	return &TranscriptClient{
		baseURL:   "https://www.youtube.com",
		languages: languages,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// playerResponse is the subset of ytInitialPlayerResponse we need
type playerResponse struct {
	Captions *struct {
		PlayerCaptionsTracklistRenderer struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
	PlayabilityStatus *struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
}

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"` // "asr" = auto-generated
}

// timedText is the caption XML served by a track's baseUrl
type timedText struct {
	Lines []timedTextLine `xml:"text"`
}

type timedTextLine struct {
	Text string `xml:",chardata"`
}

// Fetch returns the video's transcript, or ErrTranscriptUnavailable when the
// video has no usable captions.
func (t *TranscriptClient) Fetch(ctx context.Context, videoID string) (*domain.Transcript, error) {
	tracks, err := t.captionTracks(ctx, videoID)
	if err != nil {
		return nil, err
	}

	track, ok := pickBestTrack(tracks, t.languages)
	if !ok {
		return nil, fmt.Errorf("%w: no usable caption track for %s", domain.ErrTranscriptUnavailable, videoID)
	}

	text, err := t.fetchTimedText(ctx, track.BaseURL)
	if err != nil {
		return nil, err
	}
	if text == "" {
		return nil, fmt.Errorf("%w: empty captions for %s", domain.ErrTranscriptUnavailable, videoID)
	}

	return &domain.Transcript{
		VideoID:  videoID,
		Language: track.LanguageCode,
		Text:     text,
	}, nil
}

// captionTracks scrapes the watch page and extracts the caption track list
func (t *TranscriptClient) captionTracks(ctx context.Context, videoID string) ([]captionTrack, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", t.baseURL+"/watch?v="+videoID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", watchPageUA)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("watch page: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 6*1024*1024))
	if err != nil {
		return nil, fmt.Errorf("read watch page: %w", err)
	}

	idx := strings.Index(string(body), playerResponseMarker)
	if idx < 0 {
		return nil, fmt.Errorf("%w: no player response for %s", domain.ErrTranscriptUnavailable, videoID)
	}

	jsonData := extractJSON(body[idx+len(playerResponseMarker):])
	if jsonData == nil {
		return nil, fmt.Errorf("failed to extract player response JSON for %s", videoID)
	}

	var player playerResponse
	if err := json.Unmarshal(jsonData, &player); err != nil {
		return nil, fmt.Errorf("decode player response: %w", err)
	}

	if player.Captions == nil {
		if player.PlayabilityStatus != nil && player.PlayabilityStatus.Reason != "" {
			return nil, fmt.Errorf("%w: %s", domain.ErrTranscriptUnavailable, player.PlayabilityStatus.Reason)
		}
		return nil, fmt.Errorf("%w: no captions for %s", domain.ErrTranscriptUnavailable, videoID)
	}

	tracks := player.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks
	if len(tracks) == 0 {
		return nil, fmt.Errorf("%w: no caption tracks for %s", domain.ErrTranscriptUnavailable, videoID)
	}
	return tracks, nil
}

// fetchTimedText fetches and flattens a timedtext XML caption URL
func (t *TranscriptClient) fetchTimedText(ctx context.Context, trackURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", trackURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", watchPageUA)

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch timedtext: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 512*1024))
	if err != nil {
		return "", err
	}

	var tt timedText
	if err := xml.Unmarshal(body, &tt); err != nil {
		return "", fmt.Errorf("parse timedtext XML: %w", err)
	}

	var sb strings.Builder
	for _, line := range tt.Lines {
		text := cleanCaptionText(line.Text)
		if text != "" {
			if sb.Len() > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(text)
		}
	}
	return sb.String(), nil
}

// pickBestTrack selects the best caption track for the language preferences:
// manual track in a preferred language, then auto-generated in a preferred
// language, then any English track, then whatever is left.
func pickBestTrack(tracks []captionTrack, langs []string) (captionTrack, bool) {
	if len(tracks) == 0 {
		return captionTrack{}, false
	}

	for _, lang := range langs {
		for _, t := range tracks {
			if t.LanguageCode == lang && t.Kind != "asr" {
				return t, true
			}
		}
	}
	for _, lang := range langs {
		for _, t := range tracks {
			if t.LanguageCode == lang {
				return t, true
			}
		}
	}
	for _, t := range tracks {
		if strings.HasPrefix(t.LanguageCode, "en") {
			return t, true
		}
	}
	return tracks[0], true
}

// extractJSON extracts a complete JSON object starting at b[0] == '{' by
// tracking brace depth.
func extractJSON(b []byte) []byte {
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	depth := 0
	inStr := false
	escaped := false
	for i, c := range b {
		if inStr {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inStr = false
			}
		} else {
			switch c {
			case '"':
				inStr = true
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					return b[:i+1]
				}
			}
		}
	}
	return nil
}

var htmlTagRe = regexp.MustCompile(`<[^>]+>`)

// cleanCaptionText strips markup and entities left in caption lines
func cleanCaptionText(s string) string {
	s = html.UnescapeString(s)
	s = htmlTagRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
