package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return New(NewMemoryRepository())
}

func do(t *testing.T, s *Server, method, path, body string) (int, map[string]any, []map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
	}

	resp, err := s.App().Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	if strings.HasPrefix(strings.TrimSpace(string(data)), "[") {
		var list []map[string]any
		require.NoError(t, json.Unmarshal(data, &list))
		return resp.StatusCode, nil, list
	}
	var obj map[string]any
	require.NoError(t, json.Unmarshal(data, &obj))
	return resp.StatusCode, obj, nil
}

func seed(t *testing.T, s *Server) {
	t.Helper()
	status, _, _ := do(t, s, http.MethodPost, "/api/clients", `{"name":"Ada","email":"ada@example.com","phone":"555"}`)
	require.Equal(t, http.StatusOK, status)
	status, _, _ = do(t, s, http.MethodPost, "/api/schedules",
		`{"client_id":1,"appointment_time":"2024-01-10T09:00:00","end_time":"2024-01-10T09:30:00","description":"Checkup"}`)
	require.Equal(t, http.StatusOK, status)
}

func TestClients(t *testing.T) {
	s := newTestServer(t)

	status, body, _ := do(t, s, http.MethodPost, "/api/clients", `{"name":"  Ada ","email":"ada@example.com"}`)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, body["id"])
	assert.Equal(t, "Ada", body["name"])

	status, _, list := do(t, s, http.MethodGet, "/api/clients", "")
	require.Equal(t, http.StatusOK, status)
	require.Len(t, list, 1)
	assert.Equal(t, "ada@example.com", list[0]["email"])

	status, body, _ = do(t, s, http.MethodPost, "/api/clients", `{"email":"nobody@example.com"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Client name is required", body["error"])
}

func TestListSchedulesJoinsClientName(t *testing.T) {
	s := newTestServer(t)
	seed(t, s)

	status, _, list := do(t, s, http.MethodGet, "/api/schedules", "")
	require.Equal(t, http.StatusOK, status)
	require.Len(t, list, 1)
	assert.Equal(t, "Ada", list[0]["client_name"])
	assert.Equal(t, "2024-01-10T09:00:00", list[0]["appointment_time"])
	assert.Equal(t, "2024-01-10T09:30:00", list[0]["end_time"])
	assert.Equal(t, "Checkup", list[0]["description"])
}

func TestCreateScheduleUnknownClient(t *testing.T) {
	s := newTestServer(t)

	status, body, _ := do(t, s, http.MethodPost, "/api/schedules", `{"client_id":42,"appointment_time":"2024-01-10T09:00:00"}`)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Contains(t, body["error"], "client does not exist")
}

func TestUpdateSchedule(t *testing.T) {
	s := newTestServer(t)
	seed(t, s)

	status, body, _ := do(t, s, http.MethodPut, "/api/schedules/1", `{"appointment_time":"2024-01-13T10:00:00"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Appointment updated successfully", body["message"])

	appt := body["appointment"].(map[string]any)
	assert.Equal(t, "2024-01-13T10:00:00", appt["appointment_time"])
	assert.Nil(t, appt["end_time"], "absent end_time clears the end")
	assert.EqualValues(t, 1, appt["client_id"], "absent client_id keeps the client")
	assert.Equal(t, "Checkup", appt["description"], "absent description keeps the text")
}

func TestUpdateScheduleErrors(t *testing.T) {
	s := newTestServer(t)
	seed(t, s)

	tests := []struct {
		name   string
		path   string
		body   string
		status int
		msg    string
	}{
		{"invalid id", "/api/schedules/abc", `{"appointment_time":"2024-01-13T10:00:00"}`, http.StatusBadRequest, "Invalid appointment ID"},
		{"zero id", "/api/schedules/0", `{"appointment_time":"2024-01-13T10:00:00"}`, http.StatusBadRequest, "Invalid appointment ID"},
		{"missing time", "/api/schedules/1", `{"end_time":"2024-01-13T10:00:00"}`, http.StatusBadRequest, "Appointment time is required"},
		{"missing row", "/api/schedules/99", `{"appointment_time":"2024-01-13T10:00:00"}`, http.StatusNotFound, "Appointment not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body, _ := do(t, s, http.MethodPut, tt.path, tt.body)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.msg, body["error"])
		})
	}
}

func TestDeleteSchedule(t *testing.T) {
	s := newTestServer(t)
	seed(t, s)

	status, body, _ := do(t, s, http.MethodDelete, "/api/schedules/1", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Appointment deleted successfully", body["message"])
	assert.EqualValues(t, 1, body["appointment"].(map[string]any)["id"])

	status, body, _ = do(t, s, http.MethodDelete, "/api/schedules/1", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Appointment not found", body["error"])

	status, _, _ = do(t, s, http.MethodDelete, "/api/schedules/-1", "")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestRequestIDEchoed(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/clients", nil)
	req.Header.Set(fiber.HeaderXRequestID, "abc-123")
	resp, err := s.App().Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "abc-123", resp.Header.Get(fiber.HeaderXRequestID))
}

func TestMetrics(t *testing.T) {
	s := newTestServer(t)
	seed(t, s)
	status, _, _ := do(t, s, http.MethodDelete, "/api/schedules/9", "")
	require.Equal(t, http.StatusNotFound, status)
	status, _, _ = do(t, s, http.MethodGet, "/api/schedules", "")
	require.Equal(t, http.StatusOK, status)
	status, _, _ = do(t, s, http.MethodPut, "/api/schedules/1", `{"appointment_time":"2024-01-11T09:00:00"}`)
	require.Equal(t, http.StatusOK, status)

	resp, err := s.App().Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	body := string(data)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `apptcal_http_requests_total{method="POST",route="/api/schedules",status="200"} 1`)
	assert.Contains(t, body, `apptcal_store_schedule_writes_total{op="create",outcome="ok"} 1`)
	assert.Contains(t, body, `apptcal_store_schedule_writes_total{op="delete",outcome="error"} 1`)
	assert.Contains(t, body, `apptcal_store_schedule_writes_total{op="update",outcome="ok"} 1`)
	assert.Contains(t, body, `apptcal_http_requests_total{method="GET",route="/api/schedules",status="200"} 1`)

	// labels must not change after the request that produced them is gone
	for _, line := range strings.Split(body, "\n") {
		if !strings.HasPrefix(line, "apptcal_http_requests_total{") {
			continue
		}
		method, _, _ := strings.Cut(strings.TrimPrefix(line, `apptcal_http_requests_total{method="`), `"`)
		assert.Contains(t, []string{"GET", "POST", "PUT", "DELETE"}, method, line)
	}
}
