package server

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/ShopStream-LLC/shopstream-app/internal/app"
	"github.com/ShopStream-LLC/shopstream-app/internal/domain"
	apperrors "github.com/ShopStream-LLC/shopstream-app/internal/errors"
	"github.com/ShopStream-LLC/shopstream-app/internal/mux"
)

type clipResponse struct {
	ID           uuid.UUID `json:"id"`
	ProductGID   string    `json:"productGid,omitempty"`
	PlaybackURL  string    `json:"playbackUrl"`
	StartSeconds float64   `json:"startSeconds"`
	EndSeconds   float64   `json:"endSeconds"`
	Title        string    `json:"title,omitempty"`
	Description  string    `json:"description,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

func toClipResponse(clip *domain.StreamClip) clipResponse {
	return clipResponse{
		ID:           clip.ID,
		ProductGID:   clip.ProductGID,
		PlaybackURL:  mux.PlaybackURL(clip.ClipPlaybackID),
		StartSeconds: clip.StartSeconds,
		EndSeconds:   clip.EndSeconds,
		Title:        clip.Title,
		Description:  clip.Description,
		CreatedAt:    clip.CreatedAt,
	}
}

func (s *Server) handleListClips(c echo.Context) error {
	shop, err := shopFrom(c)
	if err != nil {
		return err
	}
	streamID, err := streamIDParam(c)
	if err != nil {
		return err
	}

	clips, err := s.app.ListClips(c.Request().Context(), shop, streamID)
	if err != nil {
		return mapDomainError(err)
	}

	out := make([]clipResponse, 0, len(clips))
	for i := range clips {
		out = append(out, toClipResponse(&clips[i]))
	}

	if err := c.JSON(200, out); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleCreateClip(c echo.Context) error {
	shop, err := shopFrom(c)
	if err != nil {
		return err
	}
	streamID, err := streamIDParam(c)
	if err != nil {
		return err
	}

	var req struct {
		ProductGID   string  `json:"productGid"`
		StartSeconds float64 `json:"startSeconds"`
		EndSeconds   float64 `json:"endSeconds"`
		Title        string  `json:"title"`
		Description  string  `json:"description"`
	}
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	clip, err := s.app.CreateClip(c.Request().Context(), shop, streamID, app.ClipInput{
		ProductGID:   req.ProductGID,
		StartSeconds: req.StartSeconds,
		EndSeconds:   req.EndSeconds,
		Title:        req.Title,
		Description:  req.Description,
	})
	if err != nil {
		return mapDomainError(err)
	}

	if err := c.JSON(201, toClipResponse(clip)); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}
