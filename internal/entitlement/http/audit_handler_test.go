package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	entitlementDomain "github.com/savegatehq/savegate/internal/entitlement/domain"
	"github.com/savegatehq/savegate/internal/entitlement/http/dto"
	"github.com/savegatehq/savegate/internal/entitlement/usecase/mocks"
)

// setupAuditTestHandler creates a test audit handler with mocked dependencies.
func setupAuditTestHandler(t *testing.T) (*AuditHandler, *mocks.MockEntitlementUseCase) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	mockUseCase := &mocks.MockEntitlementUseCase{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	handler := NewAuditHandler(mockUseCase, logger)

	return handler, mockUseCase
}

func testAuditEntry(outcome entitlementDomain.Outcome) *entitlementDomain.AuditEntry {
	return &entitlementDomain.AuditEntry{
		ID:           uuid.Must(uuid.NewV7()),
		Timestamp:    time.Now().UTC().Truncate(time.Millisecond),
		Action:       "save.inspect",
		CapabilityID: "a1b2c3d4e5f60718a1b2c3d4e5f60718",
		GameScope:    "skyrim",
		Outcome:      outcome,
		Detail:       "",
	}
}

func TestAuditHandler_ListHandler(t *testing.T) {
	t.Run("Success_ListWithTotal", func(t *testing.T) {
		handler, mockUseCase := setupAuditTestHandler(t)

		entries := []*entitlementDomain.AuditEntry{
			testAuditEntry(entitlementDomain.OutcomeSuccess),
			testAuditEntry(entitlementDomain.OutcomeTamperDetected),
		}

		mockUseCase.On("ListAuditEntries", mock.Anything, 0, 50).
			Return(entries, nil).
			Once()
		mockUseCase.On("CountAuditEntries", mock.Anything).
			Return(int64(12), nil).
			Once()

		c, w := createTestContext(http.MethodGet, "/v1/audit/entries", nil)

		handler.ListHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var response dto.ListAuditEntriesResponse
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Len(t, response.Data, 2)
		assert.Equal(t, int64(12), response.Total)
		assert.Equal(t, entries[0].ID.String(), response.Data[0].ID)
		assert.Equal(t, "success", response.Data[0].Outcome)
		assert.Equal(t, "tamper_detected", response.Data[1].Outcome)

		mockUseCase.AssertExpectations(t)
	})

	t.Run("Success_CustomPagination", func(t *testing.T) {
		handler, mockUseCase := setupAuditTestHandler(t)

		mockUseCase.On("ListAuditEntries", mock.Anything, 100, 25).
			Return([]*entitlementDomain.AuditEntry{}, nil).
			Once()
		mockUseCase.On("CountAuditEntries", mock.Anything).
			Return(int64(100), nil).
			Once()

		c, w := createTestContext(http.MethodGet, "/v1/audit/entries?offset=100&limit=25", nil)

		handler.ListHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var response dto.ListAuditEntriesResponse
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Empty(t, response.Data)
		assert.NotNil(t, response.Data)

		mockUseCase.AssertExpectations(t)
	})

	t.Run("Error_InvalidLimit", func(t *testing.T) {
		handler, mockUseCase := setupAuditTestHandler(t)

		c, w := createTestContext(http.MethodGet, "/v1/audit/entries?limit=0", nil)

		handler.ListHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var response map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "validation_error", response["error"])

		mockUseCase.AssertNotCalled(t, "ListAuditEntries", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Error_StoreFailure", func(t *testing.T) {
		handler, mockUseCase := setupAuditTestHandler(t)

		mockUseCase.On("ListAuditEntries", mock.Anything, 0, 50).
			Return(nil, entitlementDomain.ErrStoreFailure).
			Once()

		c, w := createTestContext(http.MethodGet, "/v1/audit/entries", nil)

		handler.ListHandler(c)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)

		mockUseCase.AssertNotCalled(t, "CountAuditEntries", mock.Anything)
	})
}
