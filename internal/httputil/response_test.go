package httputil_test

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	entitlementDomain "github.com/savegatehq/savegate/internal/entitlement/domain"
	apperrors "github.com/savegatehq/savegate/internal/errors"
	"github.com/savegatehq/savegate/internal/httputil"
)

func testContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	return c, w
}

func TestHandleErrorGin(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedError  string
		messageIsErr   bool
	}{
		{
			name:           "not found",
			err:            entitlementDomain.ErrCapabilityNotFound,
			expectedStatus: http.StatusNotFound,
			expectedError:  "not_found",
			messageIsErr:   true,
		},
		{
			name:           "conflict",
			err:            apperrors.Wrap(apperrors.ErrConflict, "activation code already redeemed"),
			expectedStatus: http.StatusConflict,
			expectedError:  "conflict",
			messageIsErr:   true,
		},
		{
			name:           "invalid input",
			err:            entitlementDomain.ErrUnknownAction,
			expectedStatus: http.StatusUnprocessableEntity,
			expectedError:  "invalid_input",
			messageIsErr:   true,
		},
		{
			name:           "unauthorized",
			err:            entitlementDomain.ErrInvalidSignature,
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "unauthorized",
			messageIsErr:   true,
		},
		{
			name:           "expired is unauthorized",
			err:            entitlementDomain.ErrExpired,
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "unauthorized",
			messageIsErr:   true,
		},
		{
			name:           "forbidden",
			err:            entitlementDomain.ErrRevoked,
			expectedStatus: http.StatusForbidden,
			expectedError:  "forbidden",
			messageIsErr:   true,
		},
		{
			name:           "consent required is forbidden",
			err:            entitlementDomain.ErrConsentRequired,
			expectedStatus: http.StatusForbidden,
			expectedError:  "forbidden",
			messageIsErr:   true,
		},
		{
			name:           "store failure is unavailable",
			err:            entitlementDomain.ErrStoreFailure,
			expectedStatus: http.StatusServiceUnavailable,
			expectedError:  "unavailable",
		},
		{
			name:           "unknown error is internal",
			err:            errors.New("driver: bad connection"),
			expectedStatus: http.StatusInternalServerError,
			expectedError:  "internal_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := testContext()

			httputil.HandleErrorGin(c, tt.err, logger)

			assert.Equal(t, tt.expectedStatus, w.Code)

			var response httputil.ErrorResponse
			err := json.Unmarshal(w.Body.Bytes(), &response)
			assert.NoError(t, err)
			assert.Equal(t, tt.expectedError, response.Error)

			if tt.messageIsErr {
				// Denial messages are surfaced verbatim for the front end
				assert.Equal(t, tt.err.Error(), response.Message)
			} else {
				assert.NotContains(t, response.Message, tt.err.Error())
			}
		})
	}

	t.Run("nil error writes nothing", func(t *testing.T) {
		c, w := testContext()

		httputil.HandleErrorGin(c, nil, logger)

		assert.Empty(t, w.Body.String())
	})

	t.Run("nil logger does not panic", func(t *testing.T) {
		c, w := testContext()

		httputil.HandleErrorGin(c, entitlementDomain.ErrExpired, nil)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestHandleValidationErrorGin(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("writes 400 with message", func(t *testing.T) {
		c, w := testContext()

		httputil.HandleValidationErrorGin(c, errors.New("game_scope: must not be blank"), logger)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var response httputil.ErrorResponse
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "validation_error", response.Error)
		assert.Equal(t, "game_scope: must not be blank", response.Message)
	})
}
