package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Role names the backend places in the access token roles claim
const (
	RoleUserAdmin       = "ROLE_USER_ADMIN"
	RoleGodAdmin        = "ROLE_GOD_ADMIN"
	RoleGroupAdmin      = "ROLE_GROUP_ADMIN"
	RoleGroupLocalAdmin = "ROLE_GROUP_LADMIN"
)

// ErrNoToken is returned when there is no token to decode
var ErrNoToken = errors.New("no token")

// Claims holds the access token claims the console reads.
//
// UNTRUSTED: claims are decoded without signature verification. They drive
// display only (expiry countdown, admin menus) and must never be used to
// authorize anything; the backend enforces every permission itself.
type Claims struct {
	Subject   string
	ExpiresAt time.Time
	Roles     []string
}

// HasAnyRole reports whether the claims carry at least one of roles
func (c *Claims) HasAnyRole(roles ...string) bool {
	for _, have := range c.Roles {
		for _, want := range roles {
			if have == want {
				return true
			}
		}
	}
	return false
}

// ParseClaims decodes tokenString without verifying its signature.
func ParseClaims(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrNoToken
	}

	parser := jwt.NewParser()
	token, _, err := parser.ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token unverified: %w", err)
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid claims format")
	}
	return parseClaims(mapClaims)
}

func parseClaims(claims jwt.MapClaims) (*Claims, error) {
	out := &Claims{}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return nil, fmt.Errorf("invalid exp claim: %w", err)
	}
	if exp == nil {
		return nil, fmt.Errorf("missing exp claim")
	}
	out.ExpiresAt = exp.Time

	if sub, err := claims.GetSubject(); err == nil {
		out.Subject = sub
	}

	// roles may be absent on limited (pre 2FA) tokens
	rolesInterface, ok := claims["roles"]
	if !ok || rolesInterface == nil {
		out.Roles = []string{}
		return out, nil
	}
	rolesSlice, ok := rolesInterface.([]interface{})
	if !ok {
		return nil, fmt.Errorf("roles claim is not an array, got type: %T", rolesInterface)
	}
	out.Roles = make([]string, 0, len(rolesSlice))
	for i, r := range rolesSlice {
		role, ok := r.(string)
		if !ok {
			return nil, fmt.Errorf("invalid role format at index %d", i)
		}
		out.Roles = append(out.Roles, role)
	}
	return out, nil
}
