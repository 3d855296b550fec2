package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/selene/internal/db"
	"go.uber.org/zap"
)

const testSecretKey = "handler-test-secret"

func newTestServer(t *testing.T) (*fiber.App, *Handler) {
	t.Helper()

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "selened.db"))
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() {
		sqlDB, err := database.DB()
		if err == nil {
			sqlDB.Close()
		}
	})

	handler := NewHandler(database, testSecretKey, zap.NewNop().Sugar())
	app := fiber.New()
	RegisterRoutes(app, handler)
	return app, handler
}

func performJSON(t *testing.T, app *fiber.App, method string, path string, token string, payload any) *http.Response {
	t.Helper()

	body := []byte{}
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("encode request body: %v", err)
		}
		body = encoded
	}

	request := httptest.NewRequest(method, path, bytes.NewReader(body))
	request.Header.Set("Content-Type", "application/json")
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}

	response, err := app.Test(request, -1)
	if err != nil {
		t.Fatalf("perform %s %s: %v", method, path, err)
	}
	return response
}

func decodeBody[T any](t *testing.T, response *http.Response) T {
	t.Helper()
	defer response.Body.Close()

	out := *new(T)
	if err := json.NewDecoder(response.Body).Decode(&out); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
	return out
}

func registerAccount(t *testing.T, app *fiber.App, email string) sessionResponse {
	t.Helper()

	response := performJSON(t, app, http.MethodPost, "/api/auth/register", "", credentialsInput{
		Email:    email,
		Password: "correct horse battery",
	})
	if response.StatusCode != fiber.StatusCreated {
		t.Fatalf("register %s: status %d", email, response.StatusCode)
	}
	return decodeBody[sessionResponse](t, response)
}
