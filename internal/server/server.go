package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	goredis "github.com/redis/go-redis/v9"

	"github.com/ShopStream-LLC/shopstream-app/internal/app"
	"github.com/ShopStream-LLC/shopstream-app/internal/config"
	"github.com/ShopStream-LLC/shopstream-app/internal/domain"
	apperrors "github.com/ShopStream-LLC/shopstream-app/internal/errors"
	"github.com/ShopStream-LLC/shopstream-app/internal/mux"
)

// sessionVerifier validates an embedded-app session token and returns the
// shop domain it was issued for.
type sessionVerifier interface {
	VerifySessionToken(token string) (string, error)
}

// AppService is the application surface the HTTP layer drives. Implemented
// by app.Service; narrowed to an interface so handler tests can stub it.
type AppService interface {
	CreateStream(ctx context.Context, shop string, details domain.StreamDetails) (*domain.Stream, error)
	GetStream(ctx context.Context, shop string, id uuid.UUID) (*domain.Stream, error)
	ListStreams(ctx context.Context, shop string) ([]domain.Stream, error)
	UpdateStream(ctx context.Context, shop string, id uuid.UUID, details domain.StreamDetails) (*domain.Stream, error)
	ScheduleStream(ctx context.Context, shop string, id uuid.UUID, at time.Time) error
	PrepareSession(ctx context.Context, shop string, id uuid.UUID) (*domain.Stream, error)
	StartStreaming(ctx context.Context, shop string, id uuid.UUID) (*domain.Stream, error)
	EndStreaming(ctx context.Context, shop string, id uuid.UUID) (*domain.Stream, error)
	StreamStatus(ctx context.Context, shop string, id uuid.UUID) (*app.StatusSnapshot, error)
	ListEvents(ctx context.Context, shop string, streamID uuid.UUID) ([]domain.StreamEvent, error)

	ListProducts(ctx context.Context, shop string, streamID uuid.UUID) ([]domain.StreamProduct, error)
	AddProduct(ctx context.Context, shop string, streamID uuid.UUID, productGID string) (*domain.StreamProduct, error)
	RemoveProduct(ctx context.Context, shop string, streamID, productID uuid.UUID) error
	ReorderProducts(ctx context.Context, shop string, streamID uuid.UUID, orderedIDs []uuid.UUID) error
	FeatureProduct(ctx context.Context, shop string, streamID, productID uuid.UUID) (*domain.StreamProduct, error)

	ListClips(ctx context.Context, shop string, streamID uuid.UUID) ([]domain.StreamClip, error)
	CreateClip(ctx context.Context, shop string, streamID uuid.UUID, input app.ClipInput) (*domain.StreamClip, error)

	HandleWebhookEvent(ctx context.Context, evt *mux.Event) error
}

// postgresHealthChecker is the minimal surface needed for readiness checks.
type postgresHealthChecker interface {
	Ping(ctx context.Context) error
}

// redisHealthChecker is the minimal surface needed for readiness checks.
type redisHealthChecker interface {
	Ping(ctx context.Context) *goredis.StatusCmd
}

type Server struct {
	echo      *echo.Echo
	config    *config.Config
	app       AppService
	verifier  sessionVerifier
	limiter   *shopRateLimiter
	clock     clockwork.Clock
	db        postgresHealthChecker
	redis     redisHealthChecker
	startTime time.Time
}

func NewServer(
	cfg *config.Config,
	application AppService,
	verifier sessionVerifier,
	db postgresHealthChecker,
	redis redisHealthChecker,
	clock clockwork.Clock,
) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(apperrors.Middleware())

	srv := &Server{
		echo:      e,
		config:    cfg,
		app:       application,
		verifier:  verifier,
		limiter:   newShopRateLimiter(cfg.APIRateLimit, cfg.APIRateBurst),
		clock:     clock,
		db:        db,
		redis:     redis,
		startTime: clock.Now(),
	}

	srv.registerRoutes()
	return srv
}

func (s *Server) Start() error {
	slog.Info("starting server", "port", s.config.Port)
	return s.echo.Start(fmt.Sprintf(":%s", s.config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
