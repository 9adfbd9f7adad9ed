package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShopStream-LLC/shopstream-app/internal/app"
	"github.com/ShopStream-LLC/shopstream-app/internal/domain"
)

func TestHandleCreateStream(t *testing.T) {
	mock := &mockAppService{
		createStreamFn: func(_ context.Context, shop string, details domain.StreamDetails) (*domain.Stream, error) {
			return &domain.Stream{
				ID:     uuid.New(),
				Shop:   shop,
				Title:  details.Title,
				Status: domain.StatusDraft,
			}, nil
		},
	}
	srv := newTestServer(mock)

	rec := doRequest(srv, http.MethodPost, "/api/streams", `{"title":"Summer drop"}`, true)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Summer drop", resp["title"])
	assert.Equal(t, "DRAFT", resp["status"])
}

func TestHandleCreateStreamValidationError(t *testing.T) {
	mock := &mockAppService{
		createStreamFn: func(context.Context, string, domain.StreamDetails) (*domain.Stream, error) {
			return nil, fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
		},
	}
	srv := newTestServer(mock)

	rec := doRequest(srv, http.MethodPost, "/api/streams", `{"title":""}`, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleGetStreamNotFound(t *testing.T) {
	srv := newTestServer(&mockAppService{})

	rec := doRequest(srv, http.MethodGet, "/api/streams/"+uuid.NewString(), "", true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleGetStreamInvalidID(t *testing.T) {
	srv := newTestServer(&mockAppService{})

	rec := doRequest(srv, http.MethodGet, "/api/streams/not-a-uuid", "", true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlePrepareSessionReturnsCredentials(t *testing.T) {
	streamID := uuid.New()
	mock := &mockAppService{
		prepareSessionFn: func(_ context.Context, _ string, id uuid.UUID) (*domain.Stream, error) {
			return &domain.Stream{
				ID:              id,
				Status:          domain.StatusDraft,
				IngestSessionID: "session-1",
				StreamKey:       "sk-secret",
				IngestURL:       "rtmps://global-live.mux.com:443/app",
				PlaybackID:      "pb-1",
			}, nil
		},
	}
	srv := newTestServer(mock)

	rec := doRequest(srv, http.MethodPost, "/api/streams/"+streamID.String()+"/prepare", "", true)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "rtmps://global-live.mux.com:443/app", resp["ingestUrl"])
	assert.Equal(t, "sk-secret", resp["streamKey"])
	assert.Equal(t, "https://stream.mux.com/pb-1.m3u8", resp["playbackUrl"])
}

func TestHandleStartStreamingConflicts(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected int
	}{
		{"encoder not connected", domain.ErrEncoderNotReady, http.StatusConflict},
		{"already live", domain.ErrInvalidTransition, http.StatusConflict},
		{"not found", domain.ErrStreamNotFound, http.StatusNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mock := &mockAppService{
				startStreamingFn: func(context.Context, string, uuid.UUID) (*domain.Stream, error) {
					return nil, tc.err
				},
			}
			srv := newTestServer(mock)

			rec := doRequest(srv, http.MethodPost, "/api/streams/"+uuid.NewString()+"/start", "", true)
			assert.Equal(t, tc.expected, rec.Code)
		})
	}
}

func TestHandleStreamStatus(t *testing.T) {
	streamID := uuid.New()
	mock := &mockAppService{
		streamStatusFn: func(_ context.Context, _ string, id uuid.UUID) (*app.StatusSnapshot, error) {
			return &app.StatusSnapshot{
				StreamID:  id,
				Status:    domain.StatusLive,
				ViewState: domain.ViewLive,
				Liveness:  domain.LivenessLive,
				Poll:      domain.PollGuidance{ShouldPoll: false},
			}, nil
		},
	}
	srv := newTestServer(mock)

	rec := doRequest(srv, http.MethodGet, "/api/streams/"+streamID.String()+"/status", "", true)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		ViewState string `json:"viewState"`
		Poll      struct {
			ShouldPoll bool `json:"shouldPoll"`
		} `json:"poll"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "live", resp.ViewState)
	assert.False(t, resp.Poll.ShouldPoll)
}

func TestHandleScheduleStreamRequiresTime(t *testing.T) {
	srv := newTestServer(&mockAppService{})

	rec := doRequest(srv, http.MethodPost, "/api/streams/"+uuid.NewString()+"/schedule", `{}`, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleAddProduct(t *testing.T) {
	mock := &mockAppService{
		addProductFn: func(_ context.Context, _ string, streamID uuid.UUID, gid string) (*domain.StreamProduct, error) {
			return &domain.StreamProduct{ID: uuid.New(), StreamID: streamID, ProductGID: gid, Position: 0}, nil
		},
	}
	srv := newTestServer(mock)

	body := `{"productGid":"gid://shopify/Product/42"}`
	rec := doRequest(srv, http.MethodPost, "/api/streams/"+uuid.NewString()+"/products", body, true)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "gid://shopify/Product/42", resp["productGid"])
	assert.Equal(t, float64(0), resp["position"])
}

func TestHandleRemoveProduct(t *testing.T) {
	mock := &mockAppService{
		removeProductFn: func(context.Context, string, uuid.UUID, uuid.UUID) error { return nil },
	}
	srv := newTestServer(mock)

	path := "/api/streams/" + uuid.NewString() + "/products/" + uuid.NewString()
	rec := doRequest(srv, http.MethodDelete, path, "", true)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestHandleReorderProductsRequiresIDs(t *testing.T) {
	srv := newTestServer(&mockAppService{})

	path := "/api/streams/" + uuid.NewString() + "/products/order"
	rec := doRequest(srv, http.MethodPut, path, `{"productIds":[]}`, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleCreateClipNoRecording(t *testing.T) {
	mock := &mockAppService{
		createClipFn: func(context.Context, string, uuid.UUID, app.ClipInput) (*domain.StreamClip, error) {
			return nil, domain.ErrNoRecording
		},
	}
	srv := newTestServer(mock)

	body := `{"startSeconds":10,"endSeconds":30}`
	rec := doRequest(srv, http.MethodPost, "/api/streams/"+uuid.NewString()+"/clips", body, true)
	assert.Equal(t, http.StatusConflict, rec.Code)
}
