package jwt

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artem13815/folio/pkg/auth"
)

const testSecret = "test-secret"

func protectedApp() *fiber.App {
	app := fiber.New()
	app.Get("/me", NewAuthMiddleware(testSecret, "folio"), func(c *fiber.Ctx) error {
		id, ok := UserID(c)
		if !ok {
			return c.SendStatus(http.StatusInternalServerError)
		}
		return c.SendString(id.String())
	})
	return app
}

func TestGenerateAndParse(t *testing.T) {
	user := auth.User{ID: uuid.New(), Email: "ada@example.com"}
	token, err := NewGenerator(testSecret, "folio", time.Hour).Generate(context.Background(), user)
	require.NoError(t, err)

	claims, err := Parse(token, []byte(testSecret), "folio")
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.Subject)
	assert.Equal(t, "ada@example.com", claims.Email)

	_, err = Parse(token, []byte("other"), "folio")
	assert.Error(t, err)
	_, err = Parse(token, []byte(testSecret), "someone-else")
	assert.Error(t, err)
}

func TestParse_Expired(t *testing.T) {
	token, err := NewGenerator(testSecret, "folio", -time.Minute).Generate(context.Background(), auth.User{ID: uuid.New()})
	require.NoError(t, err)
	_, err = Parse(token, []byte(testSecret), "folio")
	assert.ErrorIs(t, err, gojwt.ErrTokenExpired)
}

func TestMiddleware(t *testing.T) {
	user := auth.User{ID: uuid.New()}
	token, err := NewGenerator(testSecret, "folio", time.Hour).Generate(context.Background(), user)
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"bearer", "Bearer " + token, http.StatusOK},
		{"bare token", token, http.StatusOK},
		{"missing", "", http.StatusUnauthorized},
		{"garbage", "Bearer abc.def.ghi", http.StatusUnauthorized},
		{"empty bearer", "Bearer ", http.StatusUnauthorized},
	}
	app := protectedApp()
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if c.header != "" {
				req.Header.Set("Authorization", c.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, c.want, resp.StatusCode)
		})
	}
}

func TestMiddleware_RejectsNonUUIDSubject(t *testing.T) {
	claims := Claims{RegisteredClaims: gojwt.RegisteredClaims{
		Issuer:    "folio",
		Subject:   "admin",
		ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := protectedApp().Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
