package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"finease/pkg/auth"
	"finease/pkg/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubVerifier struct {
	identity *auth.Identity
	err      error
	gotToken string
	deadline bool
}

func (v *stubVerifier) Verify(ctx context.Context, token string) (*auth.Identity, error) {
	v.gotToken = token
	_, v.deadline = ctx.Deadline()
	return v.identity, v.err
}

type stubGateway struct {
	err error
}

func (g stubGateway) Connect(context.Context) error { return g.err }
func (g stubGateway) Close(context.Context) error   { return nil }

func newAuthApp(v auth.Verifier) *fiber.App {
	app := fiber.New()
	app.Get("/private", AuthMiddleware(v, time.Second, metrics.New(), zap.NewNop()), func(c *fiber.Ctx) error {
		identity := IdentityFrom(c)
		if identity == nil {
			return c.SendStatus(fiber.StatusTeapot)
		}
		return c.SendString(identity.Email)
	})
	return app
}

func decodeMessage(t *testing.T, resp *http.Response) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body["message"]
}

func TestAuthMiddleware(t *testing.T) {
	t.Run("missing header is unauthorized", func(t *testing.T) {
		v := &stubVerifier{}
		resp, err := newAuthApp(v).Test(httptest.NewRequest(http.MethodGet, "/private", nil))
		require.NoError(t, err)

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "Unauthorized", decodeMessage(t, resp))
		assert.Empty(t, v.gotToken)
	})

	t.Run("non bearer header is unauthorized", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")

		resp, err := newAuthApp(&stubVerifier{}).Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "Unauthorized", decodeMessage(t, resp))
	})

	t.Run("verification failure is an invalid token", func(t *testing.T) {
		v := &stubVerifier{err: errors.New("token expired")}
		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		req.Header.Set("Authorization", "Bearer abc.def.ghi")

		resp, err := newAuthApp(v).Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "Invalid token", decodeMessage(t, resp))
		assert.Equal(t, "abc.def.ghi", v.gotToken)
	})

	t.Run("verified identity reaches the handler", func(t *testing.T) {
		v := &stubVerifier{identity: &auth.Identity{UID: "u1", Email: "real@x.com"}}
		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		req.Header.Set("Authorization", "Bearer good-token")

		resp, err := newAuthApp(v).Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.True(t, v.deadline, "verification must run under a timeout")
	})
}

func TestBearerToken(t *testing.T) {
	cases := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer abc", "abc", true},
		{"Bearer  abc ", "abc", true},
		{"Bearer ", "", false},
		{"Bearer", "", false},
		{"abc", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		token, ok := bearerToken(tc.header)
		assert.Equal(t, tc.ok, ok, tc.header)
		assert.Equal(t, tc.token, token, tc.header)
	}
}

func TestRequireStore(t *testing.T) {
	newApp := func(gw stubGateway) *fiber.App {
		app := fiber.New()
		app.Get("/data", RequireStore(gw, zap.NewNop()), func(c *fiber.Ctx) error {
			return c.SendString("ok")
		})
		return app
	}

	t.Run("connected store passes through", func(t *testing.T) {
		resp, err := newApp(stubGateway{}).Test(httptest.NewRequest(http.MethodGet, "/data", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("connection failure short-circuits with 500", func(t *testing.T) {
		gw := stubGateway{err: errors.New("server selection timeout")}
		resp, err := newApp(gw).Test(httptest.NewRequest(http.MethodGet, "/data", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, "Database connection failed", decodeMessage(t, resp))
	})
}
