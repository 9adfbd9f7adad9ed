package server

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/ShopStream-LLC/shopstream-app/internal/domain"
	apperrors "github.com/ShopStream-LLC/shopstream-app/internal/errors"
)

type productResponse struct {
	ID         uuid.UUID  `json:"id"`
	ProductGID string     `json:"productGid"`
	Position   int        `json:"position"`
	FeaturedAt *time.Time `json:"featuredAt,omitempty"`
}

func toProductResponse(p *domain.StreamProduct) productResponse {
	return productResponse{
		ID:         p.ID,
		ProductGID: p.ProductGID,
		Position:   p.Position,
		FeaturedAt: p.FeaturedAt,
	}
}

func productIDParam(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		return uuid.Nil, apperrors.ValidationError("invalid product id").WithField("productId", c.Param("productId"))
	}
	return id, nil
}

func (s *Server) handleListProducts(c echo.Context) error {
	shop, err := shopFrom(c)
	if err != nil {
		return err
	}
	streamID, err := streamIDParam(c)
	if err != nil {
		return err
	}

	products, err := s.app.ListProducts(c.Request().Context(), shop, streamID)
	if err != nil {
		return mapDomainError(err)
	}

	out := make([]productResponse, 0, len(products))
	for i := range products {
		out = append(out, toProductResponse(&products[i]))
	}

	if err := c.JSON(200, out); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleAddProduct(c echo.Context) error {
	shop, err := shopFrom(c)
	if err != nil {
		return err
	}
	streamID, err := streamIDParam(c)
	if err != nil {
		return err
	}

	var req struct {
		ProductGID string `json:"productGid"`
	}
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	product, err := s.app.AddProduct(c.Request().Context(), shop, streamID, req.ProductGID)
	if err != nil {
		return mapDomainError(err)
	}

	if err := c.JSON(201, toProductResponse(product)); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleRemoveProduct(c echo.Context) error {
	shop, err := shopFrom(c)
	if err != nil {
		return err
	}
	streamID, err := streamIDParam(c)
	if err != nil {
		return err
	}
	productID, err := productIDParam(c)
	if err != nil {
		return err
	}

	if err := s.app.RemoveProduct(c.Request().Context(), shop, streamID, productID); err != nil {
		return mapDomainError(err)
	}
	return c.NoContent(204)
}

func (s *Server) handleReorderProducts(c echo.Context) error {
	shop, err := shopFrom(c)
	if err != nil {
		return err
	}
	streamID, err := streamIDParam(c)
	if err != nil {
		return err
	}

	var req struct {
		ProductIDs []uuid.UUID `json:"productIds"`
	}
	if err := c.Bind(&req); err != nil || len(req.ProductIDs) == 0 {
		return apperrors.ValidationError("productIds is required")
	}

	if err := s.app.ReorderProducts(c.Request().Context(), shop, streamID, req.ProductIDs); err != nil {
		return mapDomainError(err)
	}

	if err := c.JSON(200, map[string]string{"status": "reordered"}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleFeatureProduct(c echo.Context) error {
	shop, err := shopFrom(c)
	if err != nil {
		return err
	}
	streamID, err := streamIDParam(c)
	if err != nil {
		return err
	}
	productID, err := productIDParam(c)
	if err != nil {
		return err
	}

	product, err := s.app.FeatureProduct(c.Request().Context(), shop, streamID, productID)
	if err != nil {
		return mapDomainError(err)
	}

	if err := c.JSON(200, toProductResponse(product)); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}
