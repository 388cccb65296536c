package accounts

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"

	ctrl "github.com/formrelay/relay/internal/accounts/controller"
	domain "github.com/formrelay/relay/internal/accounts/domain"
	repo "github.com/formrelay/relay/internal/accounts/repository"
	svc "github.com/formrelay/relay/internal/accounts/service"
	amw "github.com/formrelay/relay/internal/auth/middleware"
	"github.com/formrelay/relay/internal/config"
	"github.com/formrelay/relay/internal/secrets"
)

// Register wires the mail accounts module and registers HTTP routes.
// The verifier is the dispatch transmitter, shared so connection tests use
// the same dialing behavior as real sends.
func Register(e *echo.Echo, pg *pgxpool.Pool, cfg config.Config, cipher *secrets.Cipher, verifier domain.ConnectionVerifier) domain.Service {
	r := repo.New(pg)
	s := svc.New(r, cipher, verifier)
	c := ctrl.New(s).WithAuth(amw.NewAdminJWT(cfg))
	c.Register(e)
	return s
}
