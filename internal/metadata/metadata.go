// Package metadata looks up display information for a source video through
// the oEmbed endpoint.
package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrMetadataUnavailable reports a failed lookup. Callers treat it as non-fatal.
var ErrMetadataUnavailable = errors.New("video metadata unavailable")

const (
	defaultOEmbedURL = "https://www.youtube.com/oembed"
	defaultTimeout   = 15 * time.Second

	UnknownTitle   = "Unknown Title"
	UnknownChannel = "Unknown Channel"
)

// Video is the subset of oEmbed fields the pipeline records on a job.
type Video struct {
	Title        string `json:"title"`
	Channel      string `json:"author_name"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// Client queries an oEmbed endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// NewClient constructs a Client. An empty endpoint selects the public oEmbed URL.
func NewClient(endpoint string, timeout time.Duration) *Client {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		endpoint = defaultOEmbedURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{endpoint: endpoint, httpClient: &http.Client{Timeout: timeout}}
}

// Lookup fetches title, channel and thumbnail for sourceURL. Missing fields
// fall back to UnknownTitle, UnknownChannel and an empty thumbnail.
func (c *Client) Lookup(ctx context.Context, sourceURL string) (Video, error) {
	endpoint, err := url.Parse(c.endpoint)
	if err != nil {
		return Video{}, fmt.Errorf("%w: parse endpoint: %w", ErrMetadataUnavailable, err)
	}
	query := endpoint.Query()
	query.Set("url", sourceURL)
	query.Set("format", "json")
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return Video{}, fmt.Errorf("%w: build request: %w", ErrMetadataUnavailable, err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Video{}, fmt.Errorf("%w: %w", ErrMetadataUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return Video{}, fmt.Errorf("%w: oembed returned %d %s", ErrMetadataUnavailable, resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	var video Video
	if err := json.NewDecoder(resp.Body).Decode(&video); err != nil {
		return Video{}, fmt.Errorf("%w: decode response: %w", ErrMetadataUnavailable, err)
	}
	if strings.TrimSpace(video.Title) == "" {
		video.Title = UnknownTitle
	}
	if strings.TrimSpace(video.Channel) == "" {
		video.Channel = UnknownChannel
	}
	return video, nil
}
