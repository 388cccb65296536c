package origins

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	amw "github.com/formrelay/relay/internal/auth/middleware"
	"github.com/formrelay/relay/internal/config"
	ctrl "github.com/formrelay/relay/internal/origins/controller"
	domain "github.com/formrelay/relay/internal/origins/domain"
	repo "github.com/formrelay/relay/internal/origins/repository"
	svc "github.com/formrelay/relay/internal/origins/service"
)

// Register wires the allow-list module and registers HTTP routes. The
// returned service backs the dynamic CORS check on the public endpoint.
func Register(e *echo.Echo, pg *pgxpool.Pool, cfg config.Config, log zerolog.Logger) domain.Service {
	r := repo.New(pg)
	s := svc.New(r, log, cfg.OriginCacheTTL, cfg.CORSFailOpen)
	c := ctrl.New(s).WithAuth(amw.NewAdminJWT(cfg))
	c.Register(e)
	return s
}
