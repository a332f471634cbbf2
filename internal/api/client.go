// Package api is the HTTP client for the location backend: login plus single
// and batch sample upload. It is stateless; tokens come from the caller.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"trackiq_agent/internal/config"
	"trackiq_agent/internal/device"
	"trackiq_agent/internal/models"
)

// AuthReason classifies login failures.
type AuthReason int

const (
	// AuthInvalidCredentials is shown on the login form as-is.
	AuthInvalidCredentials AuthReason = iota
	// AuthResponseError covers an unreachable or malformed backend.
	AuthResponseError
)

// AuthError is a login failure with a user-facing message.
type AuthError struct {
	Reason  AuthReason
	Message string
}

func (e *AuthError) Error() string { return e.Message }

// Outcome is the tri-state result of an upload attempt.
type Outcome int

const (
	// OutcomeSuccess: any 2xx. The backend acknowledged the samples.
	OutcomeSuccess Outcome = iota
	// OutcomeUnauthorized: transport status 401, 403 or 498. Forced logout.
	OutcomeUnauthorized
	// OutcomeFailure: anything else, transport errors and timeouts included.
	// Samples stay pending and retry on the next trigger.
	OutcomeFailure
)

// UploadResult carries the outcome plus an optional rotated token the caller
// should adopt when non-empty.
type UploadResult struct {
	Outcome      Outcome
	RotatedToken string
}

// Credentials is a successful login's payload.
type Credentials struct {
	Token string
	Email string
}

type Client struct {
	http      *http.Client
	loginURL  string
	uploadURL string
	batchURL  string
}

func NewClient(cfg config.Config) *Client {
	return &Client{
		http:      &http.Client{Timeout: 30 * time.Second},
		loginURL:  cfg.LoginURL,
		uploadURL: cfg.UploadURL,
		batchURL:  cfg.BatchUploadURL,
	}
}

// Login authenticates against the backend. The backend signals invalid
// credentials two ways: an application-level status 401 inside a transport-200
// body, or a "successful" body with an empty token. Both must be checked.
func (c *Client) Login(ctx context.Context, email, password string) (Credentials, error) {
	payload, err := json.Marshal(loginRequest{EmailID: email, Password: password})
	if err != nil {
		return Credentials{}, &AuthError{Reason: AuthResponseError, Message: "Login failed"}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.loginURL, bytes.NewReader(payload))
	if err != nil {
		return Credentials{}, &AuthError{Reason: AuthResponseError, Message: "Login failed"}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		logrus.WithError(err).Warn("Login request failed to reach the backend.")
		return Credentials{}, &AuthError{Reason: AuthResponseError, Message: "Login failed"}
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	var body loginResponse
	// A malformed body is handled below via the zero value.
	_ = json.Unmarshal(raw, &body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Credentials{}, &AuthError{
			Reason:  AuthResponseError,
			Message: firstNonEmpty(resolvedMessage(&body), body.Message, "Login failed"),
		}
	}

	if body.Status == 401 {
		return Credentials{}, &AuthError{
			Reason:  AuthInvalidCredentials,
			Message: firstNonEmpty(resolvedMessage(&body), body.Message, "Invalid credentials"),
		}
	}

	data := body.resolved()
	if data == nil || strings.TrimSpace(data.Token) == "" {
		return Credentials{}, &AuthError{
			Reason:  AuthInvalidCredentials,
			Message: firstNonEmpty(resolvedMessage(&body), body.Message, "Invalid credentials"),
		}
	}

	return Credentials{Token: data.Token, Email: data.Email}, nil
}

// UploadOne posts a single pending sample.
func (c *Client) UploadOne(ctx context.Context, sample models.LocationSample, token string, dev device.Info) UploadResult {
	return c.upload(ctx, c.uploadURL, token, toUploadRequest(sample, dev))
}

// UploadBatch posts the full pending set wrapped as {items: [...]}.
func (c *Client) UploadBatch(ctx context.Context, samples []models.LocationSample, token string, dev device.Info) UploadResult {
	items := make([]uploadRequest, 0, len(samples))
	for _, sample := range samples {
		items = append(items, toUploadRequest(sample, dev))
	}
	return c.upload(ctx, c.batchURL, token, uploadBatchRequest{Items: items})
}

func (c *Client) upload(ctx context.Context, url, token string, body any) UploadResult {
	payload, err := json.Marshal(body)
	if err != nil {
		return UploadResult{Outcome: OutcomeFailure}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return UploadResult{Outcome: OutcomeFailure}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		logrus.WithError(err).Debug("Upload request failed, samples stay pending.")
		return UploadResult{Outcome: OutcomeFailure}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden, 498:
		// 498 is the backend's token-expired code. All three force logout
		// regardless of body content.
		return UploadResult{Outcome: OutcomeUnauthorized}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		var decoded uploadResponse
		_ = json.NewDecoder(resp.Body).Decode(&decoded)
		result := UploadResult{Outcome: OutcomeSuccess}
		if decoded.Data != nil {
			result.RotatedToken = decoded.Data.Token
		}
		return result
	}

	return UploadResult{Outcome: OutcomeFailure}
}

func resolvedMessage(body *loginResponse) string {
	if data := body.resolved(); data != nil {
		return data.Message
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
