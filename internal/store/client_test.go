package store

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apptcal/internal/model"
)

type recorded struct {
	method string
	path   string
	body   map[string]any
}

func newTestServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*Client, func() []recorded) {
	t.Helper()
	var (
		mu    sync.Mutex
		calls []recorded
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recorded{method: r.Method, path: r.URL.Path}
		if data, _ := io.ReadAll(r.Body); len(data) > 0 {
			assert.NoError(t, json.Unmarshal(data, &rec.body))
		}
		mu.Lock()
		calls = append(calls, rec)
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return New(srv.URL + "/api"), func() []recorded {
		mu.Lock()
		defer mu.Unlock()
		return append([]recorded(nil), calls...)
	}
}

func TestCreateClientThenReference(t *testing.T) {
	c, calls := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method + " " + r.URL.Path {
		case "POST /api/clients":
			_, _ = io.WriteString(w, `{"id":1,"name":"Ada","email":"ada@x.com","phone":"555"}`)
		case "GET /api/schedules":
			_, _ = io.WriteString(w, `[{"id":9,"client_id":1,"client_name":"Ada","appointment_time":"2024-01-10T09:00:00","end_time":null,"description":null}]`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	client, err := c.CreateClient(context.Background(), model.ClientInput{Name: "Ada", Email: "ada@x.com", Phone: "555"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), client.ID)
	assert.Equal(t, map[string]any{"name": "Ada", "email": "ada@x.com", "phone": "555"}, calls()[0].body)

	appointments, err := c.ListAppointments(context.Background())
	require.NoError(t, err)
	require.Len(t, appointments, 1)
	assert.Equal(t, client.ID, appointments[0].ClientID)
	assert.Equal(t, "Ada", appointments[0].ClientName)
	assert.Nil(t, appointments[0].EndTime)
	assert.True(t, time.Date(2024, 1, 10, 9, 0, 0, 0, time.Local).Equal(appointments[0].AppointmentTime))
}

func TestCreateAppointmentBody(t *testing.T) {
	c, calls := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"id":5,"client_id":1,"appointment_time":"2024-01-10T09:00:00","end_time":"2024-01-10T09:30:00"}`)
	})

	start := time.Date(2024, 1, 10, 9, 0, 0, 0, time.Local)
	end := start.Add(30 * time.Minute)
	created, err := c.CreateAppointment(context.Background(), model.AppointmentInput{
		ClientID:        model.Ptr(int64(1)),
		AppointmentTime: start,
		EndTime:         &end,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), created.ID)
	require.NotNil(t, created.EndTime)
	assert.True(t, end.Equal(*created.EndTime))

	require.Len(t, calls(), 1)
	call := calls()[0]
	assert.Equal(t, "POST", call.method)
	assert.Equal(t, "/api/schedules", call.path)
	assert.Equal(t, map[string]any{
		"client_id":        float64(1),
		"appointment_time": "2024-01-10T09:00:00",
		"end_time":         "2024-01-10T09:30:00",
	}, call.body)
}

func TestUpdateAppointmentEnvelope(t *testing.T) {
	c, calls := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"message":"Appointment updated successfully","appointment":{"id":7,"client_id":1,"appointment_time":"2024-01-12T09:00:00","end_time":"2024-01-12T09:30:00"}}`)
	})

	start := time.Date(2024, 1, 12, 9, 0, 0, 0, time.Local)
	end := start.Add(30 * time.Minute)
	updated, err := c.UpdateAppointment(context.Background(), 7, model.AppointmentInput{
		ClientID:        model.Ptr(int64(1)),
		AppointmentTime: start,
		EndTime:         &end,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), updated.ID)
	assert.True(t, start.Equal(updated.AppointmentTime))

	call := calls()[0]
	assert.Equal(t, "PUT", call.method)
	assert.Equal(t, "/api/schedules/7", call.path)
	assert.Equal(t, "2024-01-12T09:00:00", call.body["appointment_time"])
	assert.Equal(t, "2024-01-12T09:30:00", call.body["end_time"])
	assert.NotContains(t, call.body, "description")
}

func TestErrorsAreTypedAndNotRetried(t *testing.T) {
	var hits int32
	c, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		switch r.Method {
		case http.MethodDelete:
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"error":"Appointment not found"}`)
		case http.MethodPut:
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"error":"Appointment time is required"}`)
		default:
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = io.WriteString(w, `{"error":"insert or update on table \"schedules\" violates foreign key constraint"}`)
		}
	})

	_, err := c.DeleteAppointment(context.Background(), 42)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "Appointment not found", Message(err))

	_, err = c.UpdateAppointment(context.Background(), 42, model.AppointmentInput{})
	assert.True(t, errors.Is(err, ErrBadRequest))

	_, err = c.CreateAppointment(context.Background(), model.AppointmentInput{ClientID: model.Ptr(int64(99))})
	assert.True(t, errors.Is(err, ErrServer))
	assert.False(t, errors.Is(err, ErrNotFound))

	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))
}

func TestTransportErrorIsWrapped(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	c := New(srv.URL, WithTimeout(time.Second))
	_, err := c.ListClients(context.Background())
	require.Error(t, err)

	var storeErr *Error
	assert.False(t, errors.As(err, &storeErr))
	assert.Contains(t, err.Error(), "list clients")
}

func TestGetAppointmentNotFound(t *testing.T) {
	c, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[]`)
	})

	_, err := c.GetAppointment(context.Background(), 3)
	assert.True(t, errors.Is(err, ErrNotFound))
}
