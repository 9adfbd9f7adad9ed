package mux

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SignatureHeader is the request header carrying the webhook signature.
const SignatureHeader = "Mux-Signature"

// DefaultSignatureTolerance bounds how old a signed webhook may be.
const DefaultSignatureTolerance = 5 * time.Minute

// Event types emitted by the video platform that this application reacts to.
// Everything else is a forward-compatible no-op.
const (
	EventLiveStreamActive    = "video.live_stream.active"
	EventLiveStreamIdle      = "video.live_stream.idle"
	EventAssetStreamComplete = "video.asset.live_stream_completed"
)

// ErrInvalidSignature is returned for any unverifiable webhook request:
// missing secret, malformed header, stale timestamp, or HMAC mismatch.
// The caller must fail closed and mutate nothing.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// Event is the provider's webhook envelope.
type Event struct {
	Type string    `json:"type"`
	Data EventData `json:"data"`
}

// EventData carries the union of fields used across the handled event kinds.
// For live_stream events ID is the ingest session id; for asset events ID is
// the asset id and LiveStreamID links back to the session.
type EventData struct {
	ID           string       `json:"id"`
	LiveStreamID string       `json:"live_stream_id"`
	Status       string       `json:"status"`
	PlaybackIDs  []PlaybackRef `json:"playback_ids"`
	CreatedAt    string       `json:"created_at"`
}

// SessionID returns the ingest session id the event refers to.
func (e *Event) SessionID() string {
	if e.Data.LiveStreamID != "" {
		return e.Data.LiveStreamID
	}
	return e.Data.ID
}

// Handled reports whether this event type drives a state change. Unhandled
// types are accepted but ignored.
func (e *Event) Handled() bool {
	switch e.Type {
	case EventLiveStreamActive, EventLiveStreamIdle, EventAssetStreamComplete:
		return true
	}
	return false
}

// PlaybackID returns the first public playback id carried by the event, if any.
func (e *Event) PlaybackID() string {
	if len(e.Data.PlaybackIDs) == 0 {
		return ""
	}
	return e.Data.PlaybackIDs[0].ID
}

// ParseEvent decodes the webhook envelope. Call VerifySignature first; an
// unverified body must never be parsed into state changes.
func ParseEvent(body []byte) (*Event, error) {
	var evt Event
	if err := json.Unmarshal(body, &evt); err != nil {
		return nil, fmt.Errorf("failed to decode webhook event: %w", err)
	}
	if evt.Type == "" {
		return nil, fmt.Errorf("webhook event missing type")
	}
	return &evt, nil
}

// VerifySignature checks the Mux-Signature header against the raw body using
// an explicit HMAC-SHA256 so the algorithm is auditable without a vendor SDK.
// Header format: "t=<unix timestamp>,v1=<hex hmac>", signed payload is
// "<timestamp>.<body>". Fails closed on an empty secret.
func VerifySignature(header string, body []byte, secret string, now time.Time, tolerance time.Duration) error {
	if secret == "" || header == "" {
		return ErrInvalidSignature
	}

	var timestamp string
	var signatures []string
	for _, element := range strings.Split(header, ",") {
		parts := strings.SplitN(element, "=", 2)
		if len(parts) != 2 {
			continue
		}
		switch strings.TrimSpace(parts[0]) {
		case "t":
			timestamp = parts[1]
		case "v1":
			signatures = append(signatures, parts[1])
		}
	}
	if timestamp == "" || len(signatures) == 0 {
		return ErrInvalidSignature
	}

	timestampInt, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return ErrInvalidSignature
	}
	age := now.Unix() - timestampInt
	if age < 0 {
		age = -age
	}
	if time.Duration(age)*time.Second > tolerance {
		return ErrInvalidSignature
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	for _, provided := range signatures {
		if hmac.Equal([]byte(expected), []byte(provided)) {
			return nil
		}
	}
	return ErrInvalidSignature
}
