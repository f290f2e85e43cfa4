package httpserver

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
	middleware "github.com/Skotchmaster/storefront/pkg/middleware/auth"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

func (h *AuthHTTP) SignUp(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.sign_up")

	var req transport.SignUpRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "sign_up_error", "invalid body", err)
	}

	user, err := h.Svc.SignUp(ctx, req.Email, req.Password, req.Name, req.Role)
	if err != nil {
		return fail(l, "sign_up_error", err)
	}

	token, exp, err := h.Svc.IssueSession(user)
	if err != nil {
		return fail(l, "sign_up_error", err)
	}
	h.Svc.SetAuthCookie(c, token, exp)

	l.Info("sign_up_success", "user_id", user.ID)
	return c.JSON(http.StatusOK, echo.Map{"user": user})
}

func (h *AuthHTTP) SignIn(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.sign_in")

	var req transport.SignInRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "sign_in_error", "invalid body", err)
	}

	res, err := h.Svc.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		return fail(l, "sign_in_error", err)
	}
	h.Svc.SetAuthCookie(c, res.Token, res.ExpiresAt)

	l.Info("sign_in_success", "user_id", res.User.ID)
	return c.JSON(http.StatusOK, echo.Map{"user": res.User})
}

func (h *AuthHTTP) SignOut(c echo.Context) error {
	h.Svc.ClearAuthCookie(c)
	logging.FromContext(c.Request().Context()).Info("sign_out_success")
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// Session answers {"user": null} when there is no valid session.
func (h *AuthHTTP) Session(c echo.Context) error {
	var token string
	if cookie, err := c.Cookie(tokens.SessionCookie); err == nil {
		token = cookie.Value
	}
	return c.JSON(http.StatusOK, echo.Map{"user": h.Svc.GetSession(c.Request().Context(), token)})
}

// sessionResolver backs the route guards with GetSession, so a deleted user
// or a changed role takes effect on the next request.
func sessionResolver(svc *service.AuthService) middleware.Resolver {
	return func(ctx context.Context, token string) (middleware.Principal, bool) {
		user := svc.GetSession(ctx, token)
		if user == nil {
			return middleware.Principal{}, false
		}
		return middleware.Principal{ID: user.ID, Role: user.Role, User: user}, true
	}
}
