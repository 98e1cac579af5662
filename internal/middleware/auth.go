// Package middleware provides authentication, logging, and rate limiting middleware.
package middleware

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// Claim values stamped into every token this API issues.
const (
	TokenIssuer   = "inkwell-api"
	TokenAudience = "inkwell-client"
)

const identityKey = "userID"

// OptionalAuth decodes the bearer token once per request, if one is present
// and valid, and stores the authenticated user id in the request context.
// It never rejects: anonymous requests pass through untouched. Handlers read
// the result via CurrentUserID, so no handler re-derives identity ad hoc.
func OptionalAuth(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if userID, ok := decodeBearer(c, jwtSecret); ok {
			c.Locals(identityKey, userID)
		}
		return c.Next()
	}
}

// AuthRequired rejects requests that did not carry a valid bearer token.
// It must be registered after OptionalAuth.
func AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := CurrentUserID(c); !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authorization required",
			})
		}
		return c.Next()
	}
}

// CurrentUserID returns the authenticated user id for this request, if any.
func CurrentUserID(c *fiber.Ctx) (uint, bool) {
	if uid, ok := c.Locals(identityKey).(uint); ok && uid != 0 {
		return uid, true
	}
	return 0, false
}

// decodeBearer parses and validates the Authorization header.
func decodeBearer(c *fiber.Ctx, jwtSecret string) (uint, bool) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return 0, false
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return 0, false
	}

	token, err := jwt.Parse(parts[1], func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(jwtSecret), nil
	},
		jwt.WithIssuer(TokenIssuer),
		jwt.WithAudience(TokenAudience),
	)
	if err != nil || !token.Valid {
		return 0, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, false
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return 0, false
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil || userID == 0 {
		return 0, false
	}
	return uint(userID), true
}
