package middleware

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expressionlab/moodmirror/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func errorApp(err error) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler(testLogger()),
	})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return err
	})
	return app
}

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedDetail string
	}{
		{
			name:           "app error carries its status and message",
			err:            domain.ErrNoFaceDetected,
			expectedStatus: 400,
			expectedDetail: "No face detected in the captured image",
		},
		{
			name:           "wrapped app error is unwrapped",
			err:            domain.ErrStorage.WithError(errors.New("disk full")),
			expectedStatus: 500,
			expectedDetail: "A storage operation failed",
		},
		{
			name:           "consent gate",
			err:            domain.ErrConsentRequired,
			expectedStatus: 400,
			expectedDetail: "Privacy policy must be agreed before a search can run",
		},
		{
			name:           "no matches",
			err:            domain.ErrNoMatchesFound,
			expectedStatus: 404,
			expectedDetail: "No similar faces found above the similarity threshold",
		},
		{
			name:           "fiber error",
			err:            fiber.ErrMethodNotAllowed,
			expectedStatus: 405,
			expectedDetail: "Method Not Allowed",
		},
		{
			name:           "unknown error becomes generic 500",
			err:            errors.New("something odd"),
			expectedStatus: 500,
			expectedDetail: "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := errorApp(tt.err)

			req := httptest.NewRequest("GET", "/boom", nil)
			resp, err := app.Test(req)
			require.NoError(t, err)

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			body, _ := io.ReadAll(resp.Body)
			var payload map[string]string
			require.NoError(t, json.Unmarshal(body, &payload))
			assert.Equal(t, tt.expectedDetail, payload["detail"])
		})
	}
}
