package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"apptcal/internal/logging"
	"apptcal/internal/model"
)

// Client talks to the appointment store REST service
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithTimeout bounds every request made by the client
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a client for the service rooted at baseURL (e.g. http://localhost:5000/api)
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: requestTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the service root the client was built with
func (c *Client) BaseURL() string {
	return c.baseURL
}

// do issues one request and returns the raw body of a 2xx response.
// There is no retry: every failure is returned to the caller as is.
func (c *Client) do(ctx context.Context, op, method, path string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to encode request: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create request: %w", op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logging.Log.Warn("store request failed",
			zap.String("op", op),
			zap.String("request_id", requestID),
			zap.Error(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read response: %w", op, err)
	}

	logging.Log.Debug("store request",
		zap.String("op", op),
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.String("request_id", requestID),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errBody errorBody
		_ = json.Unmarshal(data, &errBody)
		return nil, &Error{Op: op, Status: resp.StatusCode, Message: errBody.Error}
	}
	return data, nil
}

// ListAppointments returns every appointment joined with its client name
func (c *Client) ListAppointments(ctx context.Context) ([]model.Appointment, error) {
	data, err := c.do(ctx, "list appointments", http.MethodGet, "/schedules", nil)
	if err != nil {
		return nil, err
	}

	var rows []appointmentWire
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("list appointments: failed to decode response: %w", err)
	}

	appointments := make([]model.Appointment, len(rows))
	for i, row := range rows {
		appointments[i] = row.toModel()
	}
	return appointments, nil
}

// ListClients returns the client roster
func (c *Client) ListClients(ctx context.Context) ([]model.Client, error) {
	data, err := c.do(ctx, "list clients", http.MethodGet, "/clients", nil)
	if err != nil {
		return nil, err
	}

	var clients []model.Client
	if err := json.Unmarshal(data, &clients); err != nil {
		return nil, fmt.Errorf("list clients: failed to decode response: %w", err)
	}
	return clients, nil
}

// CreateClient adds a client to the roster
func (c *Client) CreateClient(ctx context.Context, in model.ClientInput) (*model.Client, error) {
	data, err := c.do(ctx, "create client", http.MethodPost, "/clients", in)
	if err != nil {
		return nil, err
	}

	var client model.Client
	if err := json.Unmarshal(data, &client); err != nil {
		return nil, fmt.Errorf("create client: failed to decode response: %w", err)
	}
	return &client, nil
}

// CreateAppointment schedules a new appointment
func (c *Client) CreateAppointment(ctx context.Context, in model.AppointmentInput) (*model.Appointment, error) {
	data, err := c.do(ctx, "create appointment", http.MethodPost, "/schedules", newInputWire(in))
	if err != nil {
		return nil, err
	}

	a, err := decodeAppointment(data)
	if err != nil {
		return nil, fmt.Errorf("create appointment: failed to decode response: %w", err)
	}
	return &a, nil
}

// UpdateAppointment rewrites the start, end, client and description of an appointment
func (c *Client) UpdateAppointment(ctx context.Context, id int64, in model.AppointmentInput) (*model.Appointment, error) {
	data, err := c.do(ctx, "update appointment", http.MethodPut, "/schedules/"+strconv.FormatInt(id, 10), newInputWire(in))
	if err != nil {
		return nil, err
	}

	a, err := decodeAppointment(data)
	if err != nil {
		return nil, fmt.Errorf("update appointment: failed to decode response: %w", err)
	}
	return &a, nil
}

// DeleteAppointment removes an appointment and returns the deleted row
func (c *Client) DeleteAppointment(ctx context.Context, id int64) (*model.Appointment, error) {
	data, err := c.do(ctx, "delete appointment", http.MethodDelete, "/schedules/"+strconv.FormatInt(id, 10), nil)
	if err != nil {
		return nil, err
	}

	a, err := decodeAppointment(data)
	if err != nil {
		return nil, fmt.Errorf("delete appointment: failed to decode response: %w", err)
	}
	return &a, nil
}

// GetAppointment finds one appointment in the full listing.
// The store has no single-row endpoint.
func (c *Client) GetAppointment(ctx context.Context, id int64) (*model.Appointment, error) {
	appointments, err := c.ListAppointments(ctx)
	if err != nil {
		return nil, err
	}
	for _, a := range appointments {
		if a.ID == id {
			return &a, nil
		}
	}
	return nil, &Error{Op: "get appointment", Status: http.StatusNotFound, Message: "Appointment not found"}
}
