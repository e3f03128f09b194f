package main

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestPublicCORSAnswersPreflightForUnregisteredMethods(testingT *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(publicCORS())
	router.POST(apiRoutePrefix+apiRouteWidgets, func(context *gin.Context) {
		context.Status(http.StatusOK)
	})

	request := httptest.NewRequest(http.MethodOptions, apiRoutePrefix+apiRouteWidgets, nil)
	request.Header.Set("Origin", "https://shop.example")
	request.Header.Set("Access-Control-Request-Method", http.MethodPost)
	request.Header.Set("Access-Control-Request-Headers", corsHeaderContentType)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	require.Equal(testingT, http.StatusNoContent, recorder.Code)
	require.Equal(testingT, corsOriginWildcard, recorder.Header().Get("Access-Control-Allow-Origin"))
	require.Contains(testingT, recorder.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
}

func TestParseServeMode(testingT *testing.T) {
	testCases := []struct {
		input        string
		expectedMode ServeMode
		expectError  bool
	}{
		{input: "", expectedMode: ServeModeMonolith},
		{input: " Web ", expectedMode: ServeModeWeb},
		{input: "API", expectedMode: ServeModeAPI},
		{input: "monolith", expectedMode: ServeModeMonolith},
		{input: "admin", expectError: true},
	}

	for _, testCase := range testCases {
		mode, parseErr := ParseServeMode(testCase.input)
		if testCase.expectError {
			require.ErrorIs(testingT, parseErr, ErrInvalidServeMode)
			continue
		}
		require.NoError(testingT, parseErr)
		require.Equal(testingT, testCase.expectedMode, mode)
	}

	require.True(testingT, ServeModeMonolith.servesWeb() && ServeModeMonolith.servesAPI())
	require.False(testingT, ServeModeWeb.servesAPI())
	require.False(testingT, ServeModeAPI.servesWeb())
}

func TestLoadEnvironmentFile(testingT *testing.T) {
	require.NoError(testingT, loadEnvironmentFile(filepath.Join(testingT.TempDir(), "missing.env")))

	environmentFilePath := filepath.Join(testingT.TempDir(), ".env")
	require.NoError(testingT, os.WriteFile(environmentFilePath, []byte("BOOKING_WIDGET_TEST_KEY=from-file\n"), 0o600))
	testingT.Cleanup(func() {
		_ = os.Unsetenv("BOOKING_WIDGET_TEST_KEY")
	})

	require.NoError(testingT, loadEnvironmentFile(environmentFilePath))
	require.Equal(testingT, "from-file", os.Getenv("BOOKING_WIDGET_TEST_KEY"))
}
