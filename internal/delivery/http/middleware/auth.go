package middleware

import (
	"strings"
	"time"

	"github.com/daroutes-wiki/internal/domain"
	"github.com/daroutes-wiki/internal/pkg/errors"
	"github.com/daroutes-wiki/internal/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const localActor = "actor"

// Claims - bearer token issued by the identity provider. The subject is
// the user id.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Actor returns the caller attached by Auth, anonymous on public routes.
func Actor(c *fiber.Ctx) domain.Actor {
	if a, ok := actorFrom(c); ok {
		return a
	}
	return domain.Anonymous()
}

func actorFrom(c *fiber.Ctx) (domain.Actor, bool) {
	a, ok := c.Locals(localActor).(domain.Actor)
	return a, ok
}

// Auth requires a valid HS256 bearer token and attaches the acting-as
// identity. Whether the role may write is decided by the store.
func Auth(secret, issuer string, logger *zap.Logger) fiber.Handler {
	key := []byte(secret)
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	parser := jwt.NewParser(opts...)

	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		raw, found := strings.CutPrefix(header, "Bearer ")
		if !found || raw == "" {
			return utils.SendError(c, errors.ErrUnauthorized.WithMessage("missing bearer token"))
		}

		claims := &Claims{}
		token, err := parser.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
			return key, nil
		})
		if err != nil || !token.Valid {
			logger.Debug("Rejected bearer token", zap.String("request_id", RequestID(c)), zap.Error(err))
			return utils.SendError(c, errors.ErrUnauthorized.WithMessage("invalid or expired token"))
		}
		if claims.Subject == "" {
			return utils.SendError(c, errors.ErrUnauthorized.WithMessage("token has no subject"))
		}

		c.Locals(localActor, domain.Actor{
			UserID: claims.Subject,
			Role:   domain.ParseRole(claims.Role),
		})
		return c.Next()
	}
}

// NewToken signs a token for userID. Used by tooling and tests; production
// tokens come from the identity provider.
func NewToken(secret, issuer, userID string, role domain.Role, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
