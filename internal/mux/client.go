// Package mux is the adapter for the Mux Video API: live stream (RTMP ingest)
// provisioning, clip asset creation, webhook signature verification, and
// playback URL derivation.
package mux

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ShopStream-LLC/shopstream-app/internal/domain"
)

const (
	defaultBaseURL = "https://api.mux.com"

	// IngestURL is Mux's global RTMP ingest endpoint; the per-stream secret
	// is the stream key, not the URL.
	IngestURL = "rtmps://global-live.mux.com:443/app"

	playbackHost = "https://stream.mux.com"
)

// Client is a thin REST client for the Mux Video API using basic auth with an
// access token id/secret pair.
type Client struct {
	baseURL     string
	tokenID     string
	tokenSecret string
	latencyMode string
	httpClient  *http.Client
}

func NewClient(tokenID, tokenSecret, latencyMode string) *Client {
	return &Client{
		baseURL:     defaultBaseURL,
		tokenID:     tokenID,
		tokenSecret: tokenSecret,
		latencyMode: latencyMode,
		httpClient:  &http.Client{Timeout: 15 * time.Second},
	}
}

// WithBaseURL returns a copy of the client pointed at a different API
// endpoint; used by tests.
func (c *Client) WithBaseURL(baseURL string) *Client {
	copied := *c
	copied.baseURL = baseURL
	return &copied
}

// PlaybackRef is a playback id entry as the provider serializes it.
type PlaybackRef struct {
	ID     string `json:"id"`
	Policy string `json:"policy"`
}

type liveStreamResponse struct {
	Data struct {
		ID          string       `json:"id"`
		StreamKey   string       `json:"stream_key"`
		PlaybackIDs []PlaybackRef `json:"playback_ids"`
		LatencyMode string       `json:"latency_mode"`
		Status      string       `json:"status"`
	} `json:"data"`
}

type assetResponse struct {
	Data struct {
		ID          string       `json:"id"`
		PlaybackIDs []PlaybackRef `json:"playback_ids"`
		Status      string       `json:"status"`
	} `json:"data"`
}

// CreateLiveStream provisions a new RTMP ingest session with a public
// playback id and a standard recording policy.
func (c *Client) CreateLiveStream(ctx context.Context) (*domain.IngestSession, error) {
	body := map[string]any{
		"latency_mode": c.latencyMode,
		"playback_policy": []string{"public"},
		"new_asset_settings": map[string]any{
			"playback_policy": []string{"public"},
		},
	}

	var resp liveStreamResponse
	if err := c.post(ctx, "/video/v1/live-streams", body, &resp); err != nil {
		return nil, fmt.Errorf("failed to create live stream: %w", err)
	}

	session := &domain.IngestSession{
		SessionID:   resp.Data.ID,
		StreamKey:   resp.Data.StreamKey,
		IngestURL:   IngestURL,
		LatencyMode: resp.Data.LatencyMode,
	}
	if len(resp.Data.PlaybackIDs) > 0 {
		session.PlaybackID = resp.Data.PlaybackIDs[0].ID
	}
	return session, nil
}

// CreateClip creates a new asset clipped from an existing one between the
// given offsets in seconds.
func (c *Client) CreateClip(ctx context.Context, assetID string, startSeconds, endSeconds float64) (*domain.ClipAsset, error) {
	body := map[string]any{
		"input": []map[string]any{
			{
				"url":        fmt.Sprintf("mux://assets/%s", assetID),
				"start_time": startSeconds,
				"end_time":   endSeconds,
			},
		},
		"playback_policy": []string{"public"},
	}

	var resp assetResponse
	if err := c.post(ctx, "/video/v1/assets", body, &resp); err != nil {
		return nil, fmt.Errorf("failed to create clip: %w", err)
	}

	clip := &domain.ClipAsset{AssetID: resp.Data.ID}
	if len(resp.Data.PlaybackIDs) > 0 {
		clip.PlaybackID = resp.Data.PlaybackIDs[0].ID
	}
	return clip, nil
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.SetBasicAuth(c.tokenID, c.tokenSecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, payload)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// PlaybackURL derives the public adaptive-streaming URL for a playback id.
func PlaybackURL(playbackID string) string {
	if playbackID == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s.m3u8", playbackHost, playbackID)
}
