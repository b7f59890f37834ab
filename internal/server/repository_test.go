package server

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apptcal/config"
)

func TestDSN(t *testing.T) {
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_USER", "appt")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_NAME", "calendar")

	want := "host=db port=6543 user=appt password=secret dbname=calendar sslmode=disable"
	if got := DSN(config.ServerConfig{}); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}

	explicit := "postgres://u:p@localhost/x"
	if got := DSN(config.ServerConfig{DSN: explicit}); got != explicit {
		t.Errorf("DSN() = %q, want the configured dsn", got)
	}
}

func openTestSQLite(t *testing.T) *GormRepository {
	t.Helper()
	repo, err := OpenSQLite(filepath.Join(t.TempDir(), "db", "apptcal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestGormRepository(t *testing.T) {
	repo := openTestSQLite(t)
	ctx := context.Background()

	ada := &Client{Name: "Ada", Email: "ada@example.com"}
	require.NoError(t, repo.CreateClient(ctx, ada))
	bo := &Client{Name: "Bo"}
	require.NoError(t, repo.CreateClient(ctx, bo))

	start := time.Date(2024, 1, 10, 9, 0, 0, 0, time.Local)
	end := start.Add(30 * time.Minute)
	desc := "Checkup"
	later := &Schedule{ClientID: bo.ID, AppointmentTime: start.Add(time.Hour)}
	first := &Schedule{ClientID: ada.ID, AppointmentTime: start, EndTime: &end, Description: &desc}
	require.NoError(t, repo.CreateSchedule(ctx, later))
	require.NoError(t, repo.CreateSchedule(ctx, first))

	rows, err := repo.ListSchedules(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, first.ID, rows[0].ID, "ordered by appointment time")
	assert.Equal(t, "Ada", rows[0].ClientName)
	assert.True(t, wallClock(rows[0].AppointmentTime).Equal(start))

	err = repo.CreateSchedule(ctx, &Schedule{ClientID: 99, AppointmentTime: start})
	assert.ErrorIs(t, err, ErrUnknownClient)

	// absent end clears it, absent client and description are kept
	updated, err := repo.UpdateSchedule(ctx, first.ID, SchedulePatch{AppointmentTime: start.Add(2 * time.Hour)})
	require.NoError(t, err)
	assert.Nil(t, updated.EndTime)
	assert.Equal(t, ada.ID, updated.ClientID)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "Checkup", *updated.Description)

	_, err = repo.UpdateSchedule(ctx, 99, SchedulePatch{AppointmentTime: start})
	assert.ErrorIs(t, err, ErrNotFound)

	deleted, err := repo.DeleteSchedule(ctx, later.ID)
	require.NoError(t, err)
	assert.Equal(t, bo.ID, deleted.ClientID)
	_, err = repo.DeleteSchedule(ctx, later.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	clients, err := repo.ListClients(ctx)
	require.NoError(t, err)
	assert.Len(t, clients, 2)
}

func TestServerOverSQLite(t *testing.T) {
	s := New(openTestSQLite(t))
	seed(t, s)

	status, _, list := do(t, s, http.MethodGet, "/api/schedules", "")
	require.Equal(t, http.StatusOK, status)
	require.Len(t, list, 1)
	assert.Equal(t, "Ada", list[0]["client_name"])
	assert.Equal(t, "2024-01-10T09:00:00", list[0]["appointment_time"])
	assert.Equal(t, "2024-01-10T09:30:00", list[0]["end_time"])
}
