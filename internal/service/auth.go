package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	pkghash "github.com/Skotchmaster/storefront/pkg/hash"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

const (
	minPasswordLen    = 6
	maxPasswordLen    = 72
	defaultSessionTTL = 7 * 24 * time.Hour
)

type AuthService struct {
	Repo             *repo.GormRepo
	Events           events.Publisher
	JWTSecret        []byte
	SessionTTL       time.Duration
	SecureCookie     bool
	AllowAdminSignUp bool
}

type SessionResult struct {
	User      *models.User
	Token     string
	ExpiresAt time.Time
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) SignUp(ctx context.Context, email, password, name, role string) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.sign_up")

	email = normalizeEmail(email)
	name = strings.TrimSpace(name)
	if email == "" || password == "" || name == "" {
		return nil, invalid("email, password and name are required")
	}
	if len(password) < minPasswordLen {
		return nil, invalid("password must be at least %d characters", minPasswordLen)
	}
	// bcrypt refuses longer input
	if len(password) > maxPasswordLen {
		return nil, invalid("password must be at most %d bytes", maxPasswordLen)
	}
	if !strings.Contains(email, "@") {
		return nil, invalid("invalid email")
	}

	switch role = strings.ToLower(strings.TrimSpace(role)); role {
	case "":
		role = models.RoleCustomer
	case models.RoleCustomer:
	case models.RoleAdmin:
		if !s.AllowAdminSignUp {
			return nil, forbidden("admin sign up is disabled")
		}
	default:
		return nil, invalid("invalid role")
	}

	exists, err := s.Repo.EmailExists(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, invalid("email already registered")
	}

	pwHash, err := pkghash.HashPassword(password)
	if err != nil {
		l.Error("sign_up_error", "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	user := &models.User{
		Email:        email,
		Name:         name,
		PasswordHash: pwHash,
		Role:         role,
	}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		if isDuplicate(err) {
			return nil, invalid("email already registered")
		}
		return nil, err
	}

	events.Emit(ctx, s.Events, events.TopicUsers, "user_signed_up", idKey(user.ID), map[string]any{
		"user_id": user.ID,
		"role":    user.Role,
	})
	return user, nil
}

func (s *AuthService) SignIn(ctx context.Context, email, password string) (*SessionResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, invalid("email and password are required")
	}

	user, err := s.Repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !pkghash.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	token, exp, err := s.IssueSession(user)
	if err != nil {
		return nil, err
	}

	events.Emit(ctx, s.Events, events.TopicUsers, "user_signed_in", idKey(user.ID), map[string]any{
		"user_id": user.ID,
	})
	return &SessionResult{User: user, Token: token, ExpiresAt: exp}, nil
}

func (s *AuthService) IssueSession(user *models.User) (string, time.Time, error) {
	ttl := s.SessionTTL
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	exp := time.Now().Add(ttl)

	token, err := tokens.SignSession(user.ID, user.Role, exp, s.JWTSecret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, exp, nil
}

// GetSession resolves a session token to its user. Any failure yields nil.
func (s *AuthService) GetSession(ctx context.Context, token string) *models.User {
	if token == "" {
		return nil
	}

	claims, err := tokens.SessionClaimsFromToken(token, s.JWTSecret)
	if err != nil {
		return nil
	}
	id, err := claims.UserID()
	if err != nil {
		return nil
	}

	user, err := s.Repo.GetUserByID(ctx, id)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logging.FromContext(ctx).Warn("get_session_error", "user_id", id, "error", err)
		}
		return nil
	}
	return user
}

func (s *AuthService) SetAuthCookie(c echo.Context, token string, exp time.Time) {
	c.SetCookie(tokens.CreateCookie(tokens.SessionCookie, token, "/", exp, s.SecureCookie))
}

func (s *AuthService) ClearAuthCookie(c echo.Context) {
	c.SetCookie(tokens.DeleteCookie(tokens.SessionCookie, "/", s.SecureCookie))
}

func idKey(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
