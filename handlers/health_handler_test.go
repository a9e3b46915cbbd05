package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kushwahaamar-dev/sentinel/models"
	"github.com/kushwahaamar-dev/sentinel/repositories/postgres"
)

func TestHealthCheck(t *testing.T) {
	deps, _, _ := testDeps(t, models.ModeMock)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	HealthCheck(deps).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Data struct {
			Status string `json:"status"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "healthy", response.Data.Status)
}

func TestReadinessCheck(t *testing.T) {
	t.Run("ready when the database responds", func(t *testing.T) {
		sqldb, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer sqldb.Close()

		mock.ExpectPing()
		mock.ExpectQuery("SELECT 1").
			WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

		deps, _, _ := testDeps(t, models.ModeMock)
		deps.DB = &postgres.DB{DB: sqldb}

		req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
		w := httptest.NewRecorder()
		ReadinessCheck(deps).ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var response struct {
			Data struct {
				Status string            `json:"status"`
				Checks map[string]string `json:"checks"`
			} `json:"data"`
		}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, "healthy", response.Data.Status)
		assert.Equal(t, "healthy", response.Data.Checks["database"])
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unavailable when the database is down", func(t *testing.T) {
		sqldb, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer sqldb.Close()

		mock.ExpectPing().WillReturnError(errors.New("connection refused"))

		deps, _, _ := testDeps(t, models.ModeMock)
		deps.DB = &postgres.DB{DB: sqldb}

		req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
		w := httptest.NewRecorder()
		ReadinessCheck(deps).ServeHTTP(w, req)

		require.Equal(t, http.StatusServiceUnavailable, w.Code)

		var response struct {
			Data struct {
				Status string            `json:"status"`
				Checks map[string]string `json:"checks"`
			} `json:"data"`
		}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, "unhealthy", response.Data.Status)
		assert.Equal(t, "unhealthy", response.Data.Checks["database"])
	})
}
