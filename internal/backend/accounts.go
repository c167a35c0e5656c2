package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"visits/internal/metrics"
	"visits/internal/model"
)

// ErrAlreadyVerified is returned by Verify when the account was confirmed
// earlier; callers treat it as success without a fresh key.
var ErrAlreadyVerified = errors.New("account already verified")

// AccountClient talks to the account service: sign-up, email verification,
// and sign-in. Separate from Client because the two backends share nothing
// but the HTTP transport.
type AccountClient struct {
	BaseURL string
	HTTP    *http.Client
}

// NewAccountClient creates an AccountClient against the given base URL.
func NewAccountClient(baseURL string) *AccountClient {
	return &AccountClient{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

// SignUpParams is the registration form payload.
type SignUpParams struct {
	BusinessName    string
	Email           string
	Password        string
	BusinessManages string
	ManagesFor      string
}

// SignUp registers a new account. A non-nil error carries the message the
// form should surface.
func (c *AccountClient) SignUp(ctx context.Context, p SignUpParams) error {
	body, _ := json.Marshal(map[string]string{
		"company":     p.BusinessName,
		"email":       p.Email,
		"password":    p.Password,
		"manages":     p.BusinessManages,
		"manages_for": p.ManagesFor,
	})
	_, err := c.post(ctx, "/account/signup", "signUp", body)
	return err
}

type verifyResponse struct {
	Status         string `json:"status"`
	PublishableKey string `json:"publishable_key"`
}

// Verify submits the 6-digit confirmation code. On success it returns the
// publishable key issued to the account; ErrAlreadyVerified means a prior
// confirmation went through.
func (c *AccountClient) Verify(ctx context.Context, email string, code model.VerificationCode) (model.PublishableKey, error) {
	body, _ := json.Marshal(map[string]string{"email": email, "code": string(code)})
	raw, err := c.post(ctx, "/account/verify", "verify", body)
	if err != nil {
		return "", err
	}
	var resp verifyResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("verify: decode response: %w", err)
	}
	if resp.Status == "already_verified" {
		return "", ErrAlreadyVerified
	}
	pk, err := model.NewPublishableKey(resp.PublishableKey)
	if err != nil {
		return "", fmt.Errorf("verify: no publishable key in response")
	}
	return pk, nil
}

// ResendCode asks for a fresh verification email.
func (c *AccountClient) ResendCode(ctx context.Context, email string) error {
	body, _ := json.Marshal(map[string]string{"email": email})
	_, err := c.post(ctx, "/account/resend", "resendVerification", body)
	return err
}

type signInResponse struct {
	PublishableKey string `json:"publishable_key"`
}

// SignIn exchanges credentials for the account's publishable key.
func (c *AccountClient) SignIn(ctx context.Context, email, password string) (model.PublishableKey, error) {
	body, _ := json.Marshal(map[string]string{"email": email, "password": password})
	raw, err := c.post(ctx, "/account/signin", "signIn", body)
	if err != nil {
		return "", err
	}
	var resp signInResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("signIn: decode response: %w", err)
	}
	pk, err := model.NewPublishableKey(resp.PublishableKey)
	if err != nil {
		return "", fmt.Errorf("signIn: no publishable key in response")
	}
	return pk, nil
}

type accountError struct {
	Message string `json:"message"`
}

func (c *AccountClient) post(ctx context.Context, path, op string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.HTTP.Do(req)
	metrics.BackendLatency.WithLabelValues(op).Observe(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.BackendRequests.WithLabelValues(op, "error").Inc()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = resp.Body.Close() }()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		metrics.BackendRequests.WithLabelValues(op, "error").Inc()
		return nil, fmt.Errorf("%s: read body: %w", op, err)
	}
	if resp.StatusCode >= 400 {
		metrics.BackendRequests.WithLabelValues(op, "failed").Inc()
		var ae accountError
		if json.Unmarshal(raw, &ae) == nil && ae.Message != "" {
			return nil, &AuthError{Message: ae.Message}
		}
		return nil, &AuthError{Message: fmt.Sprintf("account service returned %d", resp.StatusCode)}
	}
	metrics.BackendRequests.WithLabelValues(op, "ok").Inc()
	return raw, nil
}
