package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formrelay/relay/internal/config"
)

func testApp(cfg config.Config) *echo.Echo {
	e := echo.New()
	e.GET("/admin", func(c echo.Context) error {
		sub, _ := AdminSubject(c)
		return c.JSON(http.StatusOK, map[string]string{"subject": sub})
	}, NewAdminJWT(cfg))
	return e
}

func signToken(t *testing.T, key string, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := tok.SignedString([]byte(key))
	require.NoError(t, err)
	return s
}

func get(e *echo.Echo, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAdminJWT_ValidToken(t *testing.T) {
	cfg := config.Config{AdminJWTSigningKey: "signing-key"}
	e := testApp(cfg)

	token := signToken(t, "signing-key", jwt.MapClaims{
		"sub": "admin@acme.example",
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	rec := get(e, "Bearer "+token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "admin@acme.example")
}

func TestAdminJWT_Rejections(t *testing.T) {
	cfg := config.Config{AdminJWTSigningKey: "signing-key"}
	e := testApp(cfg)

	expired := signToken(t, "signing-key", jwt.MapClaims{
		"sub": "admin@acme.example",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	wrongKey := signToken(t, "other-key", jwt.MapClaims{
		"sub": "admin@acme.example",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	noSubject := signToken(t, "signing-key", jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"garbage token", "Bearer not.a.jwt"},
		{"expired", "Bearer " + expired},
		{"wrong key", "Bearer " + wrongKey},
		{"missing subject", "Bearer " + noSubject},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := get(e, tc.header)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestAdminJWT_LeewayToleratesSmallSkew(t *testing.T) {
	cfg := config.Config{AdminJWTSigningKey: "signing-key"}
	e := testApp(cfg)

	// Expired ten seconds ago, inside the 30s leeway.
	token := signToken(t, "signing-key", jwt.MapClaims{
		"sub": "admin@acme.example",
		"exp": time.Now().Add(-10 * time.Second).Unix(),
	})
	rec := get(e, "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)
}
