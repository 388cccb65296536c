package pages

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"

	amw "github.com/formrelay/relay/internal/auth/middleware"
	"github.com/formrelay/relay/internal/config"
	ctrl "github.com/formrelay/relay/internal/pages/controller"
	domain "github.com/formrelay/relay/internal/pages/domain"
	repo "github.com/formrelay/relay/internal/pages/repository"
	svc "github.com/formrelay/relay/internal/pages/service"
)

// Register wires the landing pages module and registers HTTP routes.
func Register(e *echo.Echo, pg *pgxpool.Pool, cfg config.Config) domain.Service {
	r := repo.New(pg)
	s := svc.New(r)
	c := ctrl.New(s).WithAuth(amw.NewAdminJWT(cfg))
	c.Register(e)
	return s
}
