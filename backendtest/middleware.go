package backendtest

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token mints an HS256 access token signed with the server secret
func (s *Server) Token(subject string, roles []string, ttl time.Duration) string {
	now := time.Now()
	claims := jwt.MapClaims{
		"jti":   uuid.NewString(),
		"sub":   subject,
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
		"roles": roles,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
	if err != nil {
		panic(fmt.Sprintf("backendtest: sign token: %v", err))
	}
	return signed
}

// RequireBearer validates the bearer token against the server secret before
// running next. The token subject is stored in the "subject" local.
func (s *Server) RequireBearer(next fiber.Handler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return forbidden(c, "missing bearer token")
		}

		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.Secret, nil
		})
		if err != nil || !token.Valid {
			return forbidden(c, "invalid token")
		}

		sub, _ := token.Claims.GetSubject()
		c.Locals("subject", sub)
		return next(c)
	}
}

// Subject returns the token subject set by RequireBearer
func Subject(c *fiber.Ctx) string {
	sub, _ := c.Locals("subject").(string)
	return sub
}

func forbidden(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
		"status":      "FORBIDDEN",
		"status_code": fiber.StatusForbidden,
		"message":     message,
	})
}
