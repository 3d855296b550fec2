package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/terraincognita07/selene/internal/auth"
	"github.com/terraincognita07/selene/internal/models"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// RunLoginCommand exchanges credentials for a session token at the remote
// server and persists the resulting session.
func RunLoginCommand(remoteURL string, email string, password string, sessions *auth.Store) (models.Session, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return models.Session{}, errors.New("email is required")
	}
	if password == "" {
		return models.Session{}, errors.New("password is required")
	}

	body, err := json.Marshal(loginRequest{Email: email, Password: password})
	if err != nil {
		return models.Session{}, fmt.Errorf("encode login request: %w", err)
	}

	client := &http.Client{Timeout: 30 * time.Second}
	response, err := client.Post(
		strings.TrimRight(remoteURL, "/")+"/api/auth/login",
		"application/json",
		bytes.NewReader(body),
	)
	if err != nil {
		return models.Session{}, fmt.Errorf("call login endpoint: %w", err)
	}
	defer func() {
		_ = response.Body.Close()
	}()

	if response.StatusCode != http.StatusOK {
		message, _ := io.ReadAll(io.LimitReader(response.Body, 512))
		return models.Session{}, fmt.Errorf("login failed with status %d: %s", response.StatusCode, strings.TrimSpace(string(message)))
	}

	payload := loginResponse{}
	if err := json.NewDecoder(response.Body).Decode(&payload); err != nil {
		return models.Session{}, fmt.Errorf("decode login response: %w", err)
	}

	session, err := sessions.SignIn(payload.Token)
	if err != nil {
		return models.Session{}, fmt.Errorf("store session: %w", err)
	}
	return session, nil
}
