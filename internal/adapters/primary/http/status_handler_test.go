package http_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	httpAdapter "github.com/lorrc/ticket-relay/internal/adapters/primary/http"
	apperrors "github.com/lorrc/ticket-relay/internal/core/errors"
	"github.com/lorrc/ticket-relay/internal/core/mocks"
	"github.com/lorrc/ticket-relay/internal/core/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newStatusServer(statuses ports.StatusService) *chi.Mux {
	logger := testLogger()
	handler := httpAdapter.NewStatusHandler(statuses, httpAdapter.NewErrorHandler(logger), logger)

	r := chi.NewRouter()
	r.Post("/api/broadcast-status-update", handler.HandleBroadcast)
	return r
}

func TestStatusHandler_HandleBroadcast(t *testing.T) {
	t.Run("returns notified count", func(t *testing.T) {
		mockStatuses := mocks.NewMockStatusService()
		mockStatuses.On("BroadcastToOwner", mock.Anything, ports.StatusChangeParams{
			TicketID:  5,
			OldStatus: "open",
			NewStatus: "closed",
			UpdatedBy: "root",
		}).Return(2, nil)

		body := `{"ticketId":5,"oldStatus":"open","newStatus":"closed","updatedBy":"root"}`
		req := httptest.NewRequest(http.MethodPost, "/api/broadcast-status-update", strings.NewReader(body))
		rec := httptest.NewRecorder()

		newStatusServer(mockStatuses).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var resp httpAdapter.NotifiedBody
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, 2, resp.Notified)
		mockStatuses.AssertExpectations(t)
	})

	t.Run("owner offline still succeeds with zero", func(t *testing.T) {
		mockStatuses := mocks.NewMockStatusService()
		mockStatuses.On("BroadcastToOwner", mock.Anything, mock.AnythingOfType("ports.StatusChangeParams")).Return(0, nil)

		body := `{"ticketId":5,"newStatus":"closed"}`
		req := httptest.NewRequest(http.MethodPost, "/api/broadcast-status-update", strings.NewReader(body))
		rec := httptest.NewRecorder()

		newStatusServer(mockStatuses).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var resp httpAdapter.NotifiedBody
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, 0, resp.Notified)
	})

	t.Run("missing ticket id is rejected", func(t *testing.T) {
		mockStatuses := mocks.NewMockStatusService()

		body := `{"newStatus":"closed"}`
		req := httptest.NewRequest(http.MethodPost, "/api/broadcast-status-update", strings.NewReader(body))
		rec := httptest.NewRecorder()

		newStatusServer(mockStatuses).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assertFailureBody(t, rec.Body.Bytes())
		mockStatuses.AssertNotCalled(t, "BroadcastToOwner")
	})

	t.Run("missing new status is rejected", func(t *testing.T) {
		mockStatuses := mocks.NewMockStatusService()

		body := `{"ticketId":5}`
		req := httptest.NewRequest(http.MethodPost, "/api/broadcast-status-update", strings.NewReader(body))
		rec := httptest.NewRecorder()

		newStatusServer(mockStatuses).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		mockStatuses.AssertNotCalled(t, "BroadcastToOwner")
	})

	t.Run("unknown ticket yields 404", func(t *testing.T) {
		mockStatuses := mocks.NewMockStatusService()
		mockStatuses.On("BroadcastToOwner", mock.Anything, mock.AnythingOfType("ports.StatusChangeParams")).
			Return(0, apperrors.ErrTicketNotFound)

		body := `{"ticketId":99,"newStatus":"closed"}`
		req := httptest.NewRequest(http.MethodPost, "/api/broadcast-status-update", strings.NewReader(body))
		rec := httptest.NewRecorder()

		newStatusServer(mockStatuses).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assertFailureBody(t, rec.Body.Bytes())
	})

	t.Run("malformed body is rejected", func(t *testing.T) {
		mockStatuses := mocks.NewMockStatusService()

		req := httptest.NewRequest(http.MethodPost, "/api/broadcast-status-update", strings.NewReader("{not json"))
		rec := httptest.NewRecorder()

		newStatusServer(mockStatuses).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

}

func assertFailureBody(t *testing.T, body []byte) {
	t.Helper()
	var resp httpAdapter.ErrorBody
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Error)
}
