package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-not-for-production"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func validClaims(userID uint) jwt.MapClaims {
	return jwt.MapClaims{
		"sub": fmt.Sprintf("%d", userID),
		"iss": TokenIssuer,
		"aud": TokenAudience,
		"exp": time.Now().Add(time.Hour).Unix(),
	}
}

// newAuthApp exposes one open and one protected route behind the
// OptionalAuth/AuthRequired pair, echoing the resolved identity.
func newAuthApp() *fiber.App {
	app := fiber.New()
	app.Use(OptionalAuth(testSecret))

	identity := func(c *fiber.Ctx) error {
		uid, ok := CurrentUserID(c)
		return c.JSON(fiber.Map{"user_id": uid, "authenticated": ok})
	}
	app.Get("/open", identity)
	app.Get("/protected", AuthRequired(), identity)
	return app
}

func request(t *testing.T, app *fiber.App, path, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestOptionalAuthResolvesIdentity(t *testing.T) {
	app := newAuthApp()
	token := signToken(t, testSecret, validClaims(42))

	resp := request(t, app, "/protected", "Bearer "+token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = request(t, app, "/open", "Bearer "+token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestOptionalAuthTreatsBadTokensAsAnonymous(t *testing.T) {
	app := newAuthApp()

	badTokens := map[string]string{
		"no header":        "",
		"malformed header": "Bearer",
		"not bearer":       "Basic dXNlcjpwYXNz",
		"garbage token":    "Bearer not.a.jwt",
		"wrong secret":     "Bearer " + signToken(t, "other-secret", validClaims(42)),
		"expired": "Bearer " + signToken(t, testSecret, jwt.MapClaims{
			"sub": "42", "iss": TokenIssuer, "aud": TokenAudience,
			"exp": time.Now().Add(-time.Hour).Unix(),
		}),
		"wrong issuer": "Bearer " + signToken(t, testSecret, jwt.MapClaims{
			"sub": "42", "iss": "someone-else", "aud": TokenAudience,
			"exp": time.Now().Add(time.Hour).Unix(),
		}),
		"wrong audience": "Bearer " + signToken(t, testSecret, jwt.MapClaims{
			"sub": "42", "iss": TokenIssuer, "aud": "other-client",
			"exp": time.Now().Add(time.Hour).Unix(),
		}),
		"non-numeric subject": "Bearer " + signToken(t, testSecret, jwt.MapClaims{
			"sub": "abc", "iss": TokenIssuer, "aud": TokenAudience,
			"exp": time.Now().Add(time.Hour).Unix(),
		}),
	}

	for name, header := range badTokens {
		t.Run(name, func(t *testing.T) {
			// Open routes still serve the request as anonymous,
			resp := request(t, app, "/open", header)
			assert.Equal(t, http.StatusOK, resp.StatusCode)

			// protected routes reject it.
			resp = request(t, app, "/protected", header)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		})
	}
}

func TestAuthRequiredWithoutOptionalAuthDeniesEverything(t *testing.T) {
	app := fiber.New()
	app.Get("/protected", AuthRequired(), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusOK)
	})

	token := signToken(t, testSecret, validClaims(42))
	resp := request(t, app, "/protected", "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
