package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPService talks to a remote identity backend over JSON/HTTP. Endpoint
// shapes: POST {base}/login, {base}/signup, {base}/reset.
type HTTPService struct {
	baseURL string
	client  *http.Client
}

// NewHTTPService creates a client for the identity backend at baseURL
func NewHTTPService(baseURL string) *HTTPService {
	return &HTTPService{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signUpRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type resetRequest struct {
	Email string `json:"email"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *HTTPService) Login(ctx context.Context, email, password string) (*Identity, error) {
	var id Identity
	if err := s.post(ctx, "/login", loginRequest{Email: email, Password: password}, &id); err != nil {
		return nil, err
	}
	return &id, nil
}

func (s *HTTPService) SignUp(ctx context.Context, username, email, password string) (*Identity, error) {
	var id Identity
	req := signUpRequest{Username: username, Email: email, Password: password}
	if err := s.post(ctx, "/signup", req, &id); err != nil {
		return nil, err
	}
	return &id, nil
}

func (s *HTTPService) RequestReset(ctx context.Context, email string) error {
	return s.post(ctx, "/reset", resetRequest{Email: email}, nil)
}

func (s *HTTPService) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		// Network errors and timeouts mean the backend is unreachable.
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	// Bound the response read; the backend's answers are tiny.
	limited := io.LimitReader(resp.Body, 1<<20)

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(limited).Decode(out); err != nil {
			return fmt.Errorf("%w: decode error: %v", ErrUnavailable, err)
		}
		return nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrInvalidCredentials
	case http.StatusConflict:
		return ErrEmailInUse
	case http.StatusNotFound:
		return ErrUnknownEmail
	case http.StatusUnprocessableEntity, http.StatusBadRequest:
		var er errorResponse
		if err := json.NewDecoder(limited).Decode(&er); err == nil && er.Error != "" {
			return fmt.Errorf("%w: %s", ErrWeakPassword, er.Error)
		}
		return ErrWeakPassword
	default:
		return fmt.Errorf("%w: unexpected status %d", ErrUnavailable, resp.StatusCode)
	}
}
