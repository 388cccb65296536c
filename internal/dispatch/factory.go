package dispatch

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	amw "github.com/formrelay/relay/internal/auth/middleware"
	"github.com/formrelay/relay/internal/config"
	ctrl "github.com/formrelay/relay/internal/dispatch/controller"
	domain "github.com/formrelay/relay/internal/dispatch/domain"
	repo "github.com/formrelay/relay/internal/dispatch/repository"
	svc "github.com/formrelay/relay/internal/dispatch/service"
	edomain "github.com/formrelay/relay/internal/events/domain"
	odomain "github.com/formrelay/relay/internal/origins/domain"
	"github.com/formrelay/relay/internal/platform/ratelimit"
	"github.com/formrelay/relay/internal/secrets"
)

// Rate limit for the public submission endpoint. Falls back to a
// process-local window when no shared store is configured.
var inquiryPolicy = ratelimit.Policy{
	Name:   "inquiry:send",
	Window: time.Minute,
	Limit:  30,
	Key:    ratelimit.KeyIdentifierOrIP("inquiry"),
}

const originCheckTimeout = 3 * time.Second

// allowOriginFunc adapts the origins service to echo's CORS hook. The hook
// carries no request context, so every check runs under its own bounded one.
func allowOriginFunc(origins odomain.Service) func(string) (bool, error) {
	return func(origin string) (bool, error) {
		ctx, cancel := context.WithTimeout(context.Background(), originCheckTimeout)
		defer cancel()
		return origins.IsAllowed(ctx, origin)
	}
}

// Register wires the dispatch pipeline and its HTTP surface. The transmitter
// is injected so connection tests on the accounts side share it. The origins
// service drives CORS decisions on the public route.
func Register(
	e *echo.Echo,
	pg *pgxpool.Pool,
	cfg config.Config,
	log zerolog.Logger,
	cipher *secrets.Cipher,
	tx domain.Transmitter,
	events edomain.Publisher,
	origins odomain.Service,
	rlStore ratelimit.Store,
) domain.Service {
	r := repo.New(pg)
	s := svc.New(r, cipher, tx, events, log)

	cors := middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOriginFunc: allowOriginFunc(origins),
		AllowMethods:    []string{echo.POST, echo.OPTIONS},
		AllowHeaders:    []string{echo.HeaderContentType},
	})

	var rl echo.MiddlewareFunc
	if rlStore != nil {
		rl = ratelimit.MiddlewareWithStore(inquiryPolicy, rlStore)
	} else {
		rl = ratelimit.Middleware(inquiryPolicy)
	}

	c := ctrl.New(s).
		WithAuth(amw.NewAdminJWT(cfg)).
		WithPublicMiddleware(cors, rl)
	c.Register(e)
	return s
}
