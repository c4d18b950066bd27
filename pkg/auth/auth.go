// Package auth verifies bearer credentials issued by the identity provider and exposes the
// caller to handlers. Tokens are HS256 JWTs carried in a cookie or Authorization header;
// the token names the user, the user table decides role and standing.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/dwikikusuma/techstore/pkg/apperr"
	"github.com/dwikikusuma/techstore/pkg/httpx"
)

const principalKey = "auth.principal"

type Claims struct {
	Role string `json:"role"`
	Name string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

type Principal struct {
	UserID string
	Role   string
	Name   string
}

type Verifier struct {
	secret []byte
	issuer string
	leeway time.Duration
}

func NewVerifier(secret, issuer string) *Verifier {
	return &Verifier{secret: []byte(secret), issuer: issuer, leeway: 30 * time.Second}
}

var ErrInvalidToken = fmt.Errorf("%w: invalid token", apperr.ErrUnauthenticated)

func (v *Verifier) Verify(raw string) (Principal, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(v.leeway),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return Principal{}, ErrInvalidToken
	}
	return Principal{UserID: claims.Subject, Role: claims.Role, Name: claims.Name}, nil
}

// Account is the stored state behind a verified subject.
type Account struct {
	Role   string `json:"role"`
	Active bool   `json:"active"`
}

// AccountResolver loads the current account of a user. Unknown and deleted users are reported
// with an error wrapping apperr.ErrNotFound.
type AccountResolver interface {
	Account(ctx context.Context, userID string) (Account, error)
}

var ErrInactiveAccount = fmt.Errorf("%w: account is not active", apperr.ErrUnauthenticated)

// Authenticate attaches the principal when a valid credential is present. A missing
// credential passes through; an invalid one is rejected. When accounts is set the principal
// must map to an active account, and the stored role replaces the claimed one.
func Authenticate(v *Verifier, cookieName string, accounts AccountResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := tokenFromRequest(c, cookieName)
		if raw == "" {
			c.Next()
			return
		}
		p, err := v.Verify(raw)
		if err != nil {
			zap.L().Debug("rejected credential", zap.Error(err))
			httpx.Fail(c, ErrInvalidToken)
			return
		}
		if accounts != nil {
			acc, err := accounts.Account(c.Request.Context(), p.UserID)
			if errors.Is(err, apperr.ErrNotFound) || (err == nil && !acc.Active) {
				httpx.Fail(c, ErrInactiveAccount)
				return
			}
			if err != nil {
				httpx.Fail(c, err)
				return
			}
			p.Role = acc.Role
		}
		c.Set(principalKey, p)
		c.Next()
	}
}

func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := FromContext(c); !ok {
			httpx.Fail(c, fmt.Errorf("%w: login required", apperr.ErrUnauthenticated))
			return
		}
		c.Next()
	}
}

// PermissionResolver returns the permissions granted to a role.
type PermissionResolver interface {
	Permissions(ctx context.Context, role string) ([]string, error)
}

const Wildcard = "*"

func RequirePermission(r PermissionResolver, perm string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := FromContext(c)
		if !ok {
			httpx.Fail(c, fmt.Errorf("%w: login required", apperr.ErrUnauthenticated))
			return
		}
		perms, err := r.Permissions(c.Request.Context(), p.Role)
		if err != nil && !errors.Is(err, apperr.ErrNotFound) {
			httpx.Fail(c, err)
			return
		}
		if !Allows(perms, perm) {
			httpx.Fail(c, fmt.Errorf("%w: missing permission %s", apperr.ErrForbidden, perm))
			return
		}
		c.Next()
	}
}

func Allows(perms []string, want string) bool {
	for _, p := range perms {
		if p == Wildcard || p == want {
			return true
		}
	}
	return false
}

func FromContext(c *gin.Context) (Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return Principal{}, false
	}
	p, ok := v.(Principal)
	return p, ok
}

// MustUserID is for handlers mounted behind RequireUser.
func MustUserID(c *gin.Context) string {
	p, _ := FromContext(c)
	return p.UserID
}

func tokenFromRequest(c *gin.Context, cookieName string) string {
	if cookieName != "" {
		if ck, err := c.Request.Cookie(cookieName); err == nil && ck.Value != "" {
			return ck.Value
		}
	}
	h := c.GetHeader("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
