package middleware

import (
	"context"
	"net/http"

	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/tokens"
	"github.com/labstack/echo/v4"
)

const (
	ctxUserID = "user_id"
	ctxRole   = "role"
	ctxUser   = "session_user"

	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

// Principal is what a session token resolves to.
type Principal struct {
	ID   uint
	Role string
	User any
}

// Resolver looks up the current principal for a session token. It reports
// false when the token no longer refers to a user.
type Resolver func(ctx context.Context, token string) (Principal, bool)

type SessionMiddleware struct {
	JWTSecret    []byte
	SecureCookie bool
	// Resolve is consulted after the token signature checks out. Without it
	// the claims are trusted as is.
	Resolve Resolver
}

func NewSessionMiddleware(secret []byte, secureCookie bool, resolve Resolver) *SessionMiddleware {
	return &SessionMiddleware{
		JWTSecret:    secret,
		SecureCookie: secureCookie,
		Resolve:      resolve,
	}
}

type ValidatorFunc func(p Principal) error

func (m *SessionMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireAuthWithValidator(next, nil)
}

func (m *SessionMiddleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireAuthWithValidator(next, func(p Principal) error {
		if p.Role != RoleAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "admin access required")
		}
		return nil
	})
}

func (m *SessionMiddleware) unauthorized(c echo.Context) error {
	c.SetCookie(tokens.DeleteCookie(tokens.SessionCookie, "/", m.SecureCookie))
	return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
}

func (m *SessionMiddleware) requireAuthWithValidator(next echo.HandlerFunc, validator ValidatorFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		cookie, err := c.Cookie(tokens.SessionCookie)
		if err != nil || cookie.Value == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
		}

		claims, err := tokens.SessionClaimsFromToken(cookie.Value, m.JWTSecret)
		if err != nil {
			return m.unauthorized(c)
		}
		userID, err := claims.UserID()
		if err != nil {
			return m.unauthorized(c)
		}

		p := Principal{ID: userID, Role: claims.Role}
		ctx := c.Request().Context()
		if m.Resolve != nil {
			resolved, ok := m.Resolve(ctx, cookie.Value)
			if !ok || resolved.ID == 0 {
				return m.unauthorized(c)
			}
			p = resolved
		}

		if validator != nil {
			if validationErr := validator(p); validationErr != nil {
				return validationErr
			}
		}

		c.Set(ctxUserID, p.ID)
		c.Set(ctxRole, p.Role)
		if p.User != nil {
			c.Set(ctxUser, p.User)
		}
		l := logging.FromContext(ctx).With("user_id", p.ID)
		c.SetRequest(c.Request().WithContext(logging.IntoContext(ctx, l)))
		return next(c)
	}
}

// UserID reads the id stored by RequireAuth.
func UserID(c echo.Context) (uint, bool) {
	id, ok := c.Get(ctxUserID).(uint)
	return id, ok && id != 0
}

func Role(c echo.Context) string {
	role, _ := c.Get(ctxRole).(string)
	return role
}

// CurrentUser returns the resolved user, or nil when the guard ran without a
// resolver.
func CurrentUser(c echo.Context) any {
	return c.Get(ctxUser)
}
