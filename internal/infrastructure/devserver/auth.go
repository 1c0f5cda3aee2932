package devserver

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/projecthub/projecthub-cli/internal/core/domain"
)

const tokenTTL = 24 * time.Hour

// authenticator issues and verifies the devserver's bearer tokens and
// manages accounts.
type authenticator struct {
	store  *Store
	secret string
}

func (a *authenticator) register(ctx context.Context, username, email, password string) (*account, error) {
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return a.store.CreateUser(ctx, username, email, string(hash), domain.RoleUser)
}

func (a *authenticator) login(ctx context.Context, username, password string) (string, *account, error) {
	if username == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}
	acct, err := a.store.FindUserByUsername(ctx, username)
	if err != nil {
		return "", nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}
	token, err := a.issueToken(acct)
	if err != nil {
		return "", nil, err
	}
	return token, acct, nil
}

func (a *authenticator) issueToken(acct *account) (string, error) {
	claims := jwt.MapClaims{
		"sub":      acct.ID,
		"username": acct.Username,
		"role":     acct.Role,
		"exp":      time.Now().Add(tokenTTL).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(a.secret))
}

// requireAuth validates the bearer token and injects the caller's identity
// into the echo context.
func (a *authenticator) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get("Authorization")
		if header == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
		}

		claims := jwt.MapClaims{}
		tkn, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
			if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
				return nil, jwt.ErrTokenSignatureInvalid
			}
			return []byte(a.secret), nil
		})
		if err != nil || !tkn.Valid {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
		}

		username, _ := claims["username"].(string)
		role, _ := claims["role"].(string)
		id, _ := claims["sub"].(string)
		c.Set("identity", &domain.Identity{ID: id, Username: username, Role: role})

		return next(c)
	}
}

// callerIdentity extracts the identity injected by requireAuth.
func callerIdentity(c echo.Context) (*domain.Identity, error) {
	identity, _ := c.Get("identity").(*domain.Identity)
	if !identity.Valid() {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return identity, nil
}

func authStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
