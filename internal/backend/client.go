// Package backend is the thin HTTP client for the authentication and
// delivery backends. It owns the wire contracts only; all sequencing and
// retries live in the state machine that drives it.
package backend

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"visits/internal/decode"
	"visits/internal/geo"
	"visits/internal/metrics"
	"visits/internal/model"
)

// ErrTokenExpired is returned when the backend rejects a bearer token. The
// state machine maps it to a re-authentication, not a user-facing failure.
var ErrTokenExpired = errors.New("token expired")

// AuthError is a failed authentication exchange.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string { return "auth: " + e.Message }

// Client talks to the auth and delivery backends.
type Client struct {
	AuthURL   string
	ClientURL string
	HTTP      *http.Client
	Geocoder  geo.Geocoder
}

// New creates a Client. A nil geocoder disables address resolution.
func New(authURL, clientURL string, geocoder geo.Geocoder) *Client {
	if geocoder == nil {
		geocoder = geo.NoopGeocoder{}
	}
	return &Client{
		AuthURL:   authURL,
		ClientURL: clientURL,
		HTTP:      &http.Client{Timeout: 10 * time.Second},
		Geocoder:  geocoder,
	}
}

type authenticateResponse struct {
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	AccessToken string `json:"access_token"`
}

// Authenticate exchanges the publishable key and device id for a bearer
// token.
func (c *Client) Authenticate(ctx context.Context, pk model.PublishableKey, deviceID model.DeviceID) (model.Token, error) {
	body, _ := json.Marshal(map[string]string{"device_id": string(deviceID)})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.AuthURL+"/authenticate", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(pk)))
	req.Header.Set("Content-Type", "application/json")

	var resp authenticateResponse
	if err := c.do(req, "authenticate", &resp); err != nil {
		return "", &AuthError{Message: err.Error()}
	}
	token, err := model.NewToken(resp.AccessToken)
	if err != nil {
		return "", &AuthError{Message: "empty access token in response"}
	}
	return token, nil
}

// GetOrders fetches the device's geofences and decodes them into orders,
// resolving addresses where the geocoder can. Geocoding failures leave the
// order without an address.
func (c *Client) GetOrders(ctx context.Context, token model.Token, deviceID model.DeviceID) (model.OrderSet, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/client/devices/%s/geofences", c.ClientURL, deviceID), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+string(token))

	raw, err := c.doRaw(req, "getOrders")
	if err != nil {
		return nil, err
	}
	set, err := decode.Orders(raw)
	if err != nil {
		return nil, err
	}
	for id, o := range set {
		addr, err := c.Geocoder.ReverseGeocode(ctx, o.Location)
		if err != nil {
			continue
		}
		o.Address = addr
		set[id] = o
	}
	return set, nil
}

// GetPlaces fetches the device's saved places.
func (c *Client) GetPlaces(ctx context.Context, token model.Token, deviceID model.DeviceID) ([]model.Place, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/client/devices/%s/places", c.ClientURL, deviceID), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+string(token))
	var places []model.Place
	if err := c.do(req, "getPlaces", &places); err != nil {
		return nil, err
	}
	return places, nil
}

// GetHistory fetches the movement summary for a day (YYYY-MM-DD).
func (c *Client) GetHistory(ctx context.Context, token model.Token, deviceID model.DeviceID, date string) (model.History, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/client/devices/%s/history/%s", c.ClientURL, deviceID, date), nil)
	if err != nil {
		return model.History{}, err
	}
	req.Header.Set("Authorization", "Bearer "+string(token))
	var h model.History
	if err := c.do(req, "getHistory", &h); err != nil {
		return model.History{}, err
	}
	return h, nil
}

// CompleteOrder marks a trip order complete.
func (c *Client) CompleteOrder(ctx context.Context, token model.Token, o model.Order) error {
	return c.changeOrderStatus(ctx, token, o, "complete")
}

// CancelOrder cancels a trip order.
func (c *Client) CancelOrder(ctx context.Context, token model.Token, o model.Order) error {
	return c.changeOrderStatus(ctx, token, o, "cancel")
}

func (c *Client) changeOrderStatus(ctx context.Context, token model.Token, o model.Order, status string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/trips/%s/orders/%s/%s", c.ClientURL, o.TripID, o.ID, status), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+string(token))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Accept", "application/json; charset=utf-8")
	_, err = c.doRaw(req, status+"Order")
	return err
}

// UpdateOrderNote persists the driver's note on a trip order.
func (c *Client) UpdateOrderNote(ctx context.Context, token model.Token, o model.Order, note string) error {
	body, _ := json.Marshal(map[string]any{
		"metadata": map[string]any{
			"visits_app": map[string]string{"note": note},
		},
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, fmt.Sprintf("%s/trips/%s/orders/%s", c.ClientURL, o.TripID, o.ID), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+string(token))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	_, err = c.doRaw(req, "updateOrderNote")
	return err
}

func (c *Client) do(req *http.Request, op string, out any) error {
	raw, err := c.doRaw(req, op)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

func (c *Client) doRaw(req *http.Request, op string) ([]byte, error) {
	start := time.Now()
	resp, err := c.HTTP.Do(req)
	metrics.BackendLatency.WithLabelValues(op).Observe(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.BackendRequests.WithLabelValues(op, "error").Inc()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = resp.Body.Close() }()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		metrics.BackendRequests.WithLabelValues(op, "error").Inc()
		return nil, fmt.Errorf("%s: read body: %w", op, err)
	}
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		metrics.BackendRequests.WithLabelValues(op, "unauthorized").Inc()
		return nil, fmt.Errorf("%s: %w", op, ErrTokenExpired)
	case resp.StatusCode >= 400:
		metrics.BackendRequests.WithLabelValues(op, "failed").Inc()
		return nil, fmt.Errorf("%s: backend returned %d: %s", op, resp.StatusCode, truncate(raw, 200))
	}
	metrics.BackendRequests.WithLabelValues(op, "ok").Inc()
	return raw, nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
