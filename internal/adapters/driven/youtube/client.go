package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cobalt-labs/tubechat-core/internal/core/domain"
	"github.com/cobalt-labs/tubechat-core/internal/core/ports/driven"
)

// Ensure Client implements ChannelClient
var _ driven.ChannelClient = (*Client)(nil)

// Client wraps the YouTube Data API v3
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewClient creates a new YouTube Data API client
func NewClient(apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("YouTube API key is required")
	}

	return &Client{
		apiKey:  apiKey,
		baseURL: "https://www.googleapis.com/youtube/v3",
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// channelListResponse is the response from channels.list
type channelListResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			CustomURL   string `json:"customUrl"`
		} `json:"snippet"`
		ContentDetails struct {
			RelatedPlaylists struct {
				Uploads string `json:"uploads"`
			} `json:"relatedPlaylists"`
		} `json:"contentDetails"`
		Statistics struct {
			SubscriberCount string `json:"subscriberCount"`
			VideoCount      string `json:"videoCount"`
		} `json:"statistics"`
	} `json:"items"`
}

// searchListResponse is the response from search.list
type searchListResponse struct {
	Items []struct {
		ID struct {
			ChannelID string `json:"channelId"`
		} `json:"id"`
	} `json:"items"`
}

// playlistItemsResponse is the response from playlistItems.list
type playlistItemsResponse struct {
	NextPageToken string `json:"nextPageToken"`
	Items         []struct {
		ContentDetails struct {
			VideoID string `json:"videoId"`
		} `json:"contentDetails"`
	} `json:"items"`
}

// videoListResponse is the response from videos.list
type videoListResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			ChannelID   string    `json:"channelId"`
			Title       string    `json:"title"`
			Description string    `json:"description"`
			PublishedAt time.Time `json:"publishedAt"`
		} `json:"snippet"`
		ContentDetails struct {
			Duration string `json:"duration"`
		} `json:"contentDetails"`
	} `json:"items"`
}

// apiError is the error envelope returned by the Data API
type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ResolveHandle resolves a channel handle or raw channel ID to a channel ID.
// Tries channels.list?forHandle first, then falls back to search.
func (c *Client) ResolveHandle(ctx context.Context, handle string) (string, error) {
	// Raw channel IDs pass through
	if strings.HasPrefix(handle, "UC") && !strings.Contains(handle, " ") && len(handle) == 24 {
		return handle, nil
	}

	params := url.Values{}
	params.Set("part", "id")
	params.Set("forHandle", strings.TrimPrefix(handle, "@"))

	var resp channelListResponse
	if err := c.get(ctx, "/channels", params, &resp); err != nil {
		return "", err
	}
	if len(resp.Items) > 0 {
		return resp.Items[0].ID, nil
	}

	// Fall back to search for channels that predate handles
	params = url.Values{}
	params.Set("part", "id")
	params.Set("q", handle)
	params.Set("type", "channel")
	params.Set("maxResults", "1")

	var searchResp searchListResponse
	if err := c.get(ctx, "/search", params, &searchResp); err != nil {
		return "", err
	}
	if len(searchResp.Items) > 0 && searchResp.Items[0].ID.ChannelID != "" {
		return searchResp.Items[0].ID.ChannelID, nil
	}

	return "", fmt.Errorf("%w: %s", domain.ErrChannelNotFound, handle)
}

// GetChannel returns channel metadata, including the uploads playlist
func (c *Client) GetChannel(ctx context.Context, channelID string) (*domain.Channel, error) {
	params := url.Values{}
	params.Set("part", "snippet,contentDetails,statistics")
	params.Set("id", channelID)

	var resp channelListResponse
	if err := c.get(ctx, "/channels", params, &resp); err != nil {
		return nil, err
	}
	if len(resp.Items) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrChannelNotFound, channelID)
	}

	item := resp.Items[0]
	subscribers, _ := strconv.ParseInt(item.Statistics.SubscriberCount, 10, 64)
	videoCount, _ := strconv.ParseInt(item.Statistics.VideoCount, 10, 64)

	return &domain.Channel{
		ID:              item.ID,
		Handle:          item.Snippet.CustomURL,
		Title:           item.Snippet.Title,
		Description:     item.Snippet.Description,
		UploadsPlaylist: item.ContentDetails.RelatedPlaylists.Uploads,
		VideoCount:      videoCount,
		SubscriberCount: subscribers,
	}, nil
}

// ListVideos lists the channel's uploads, newest first, capped at maxResults.
// Every channel has an "uploads" playlist holding all its videos; pages of
// video IDs from that playlist are hydrated via videos.list.
func (c *Client) ListVideos(ctx context.Context, channelID string, maxResults int) ([]*domain.Video, error) {
	channel, err := c.GetChannel(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if channel.UploadsPlaylist == "" {
		return nil, fmt.Errorf("channel %s has no uploads playlist", channelID)
	}

	var videos []*domain.Video
	pageToken := ""

	for len(videos) < maxResults {
		pageSize := maxResults - len(videos)
		if pageSize > 50 {
			pageSize = 50
		}

		params := url.Values{}
		params.Set("part", "contentDetails")
		params.Set("playlistId", channel.UploadsPlaylist)
		params.Set("maxResults", strconv.Itoa(pageSize))
		if pageToken != "" {
			params.Set("pageToken", pageToken)
		}

		var page playlistItemsResponse
		if err := c.get(ctx, "/playlistItems", params, &page); err != nil {
			return nil, err
		}

		var ids []string
		for _, item := range page.Items {
			ids = append(ids, item.ContentDetails.VideoID)
		}

		if len(ids) > 0 {
			details, err := c.videoDetails(ctx, ids)
			if err != nil {
				return nil, err
			}
			videos = append(videos, details...)
		}

		pageToken = page.NextPageToken
		if pageToken == "" {
			break
		}
	}

	if len(videos) > maxResults {
		videos = videos[:maxResults]
	}
	return videos, nil
}

// videoDetails hydrates a batch of video IDs via videos.list
func (c *Client) videoDetails(ctx context.Context, ids []string) ([]*domain.Video, error) {
	params := url.Values{}
	params.Set("part", "snippet,contentDetails")
	params.Set("id", strings.Join(ids, ","))

	var resp videoListResponse
	if err := c.get(ctx, "/videos", params, &resp); err != nil {
		return nil, err
	}

	videos := make([]*domain.Video, 0, len(resp.Items))
	for _, item := range resp.Items {
		videos = append(videos, &domain.Video{
			ID:          item.ID,
			ChannelID:   item.Snippet.ChannelID,
			Title:       item.Snippet.Title,
			Description: item.Snippet.Description,
			PublishedAt: item.Snippet.PublishedAt,
			Duration:    item.ContentDetails.Duration,
		})
	}
	return videos, nil
}

// get performs an authenticated GET against the Data API
func (c *Client) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	params.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("YouTube API error %d: %s", apiErr.Error.Code, apiErr.Error.Message)
		}
		return fmt.Errorf("YouTube API returned status %d", resp.StatusCode)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
