package main_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	servercmd "github.com/MarkoPoloResearchLab/booking_widget/cmd/server"
	"github.com/MarkoPoloResearchLab/booking_widget/internal/testutil"
)

const (
	testEnvironmentKeyShopsDirectory = "SHOPS_DIR"
	testEnvironmentKeyServeMode      = "SERVE_MODE"
	testEnvironmentKeyTemplatePath   = "TEMPLATE_PATH"
	testEnvironmentKeyPublicBaseURL  = "PUBLIC_BASE_URL"
	testMissingConfigurationMessage  = "missing required configuration"
	testFlagIndicatorShopsDirectory  = "--shops-dir"
	testUsagePrefix                  = "Usage:"
)

type capturedServer struct {
	handler http.Handler
	address string
}

func executeServerCommand(testingT *testing.T, arguments ...string) (*capturedServer, string, error) {
	testingT.Helper()

	captured := &capturedServer{}
	application := servercmd.NewServerApplication().WithServerRunner(func(httpServer *http.Server) error {
		captured.handler = httpServer.Handler
		captured.address = httpServer.Addr
		return nil
	})
	command, commandErr := application.Command()
	require.NoError(testingT, commandErr)

	commandOutput := &bytes.Buffer{}
	command.SetOut(commandOutput)
	command.SetErr(commandOutput)
	command.SetArgs(arguments)

	executionErr := command.Execute()
	return captured, commandOutput.String(), executionErr
}

func requestStatus(testingT *testing.T, handler http.Handler, method string, path string) int {
	testingT.Helper()
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(method, path, nil))
	return recorder.Code
}

func TestServerCommandMissingConfigurationShowsHelp(testingT *testing.T) {
	testingT.Setenv(testEnvironmentKeyShopsDirectory, "")

	captured, combinedOutput, executionErr := executeServerCommand(testingT)
	require.Error(testingT, executionErr)
	require.Nil(testingT, captured.handler)
	require.Contains(testingT, combinedOutput, testMissingConfigurationMessage)
	require.Contains(testingT, combinedOutput, testUsagePrefix)
	require.Contains(testingT, combinedOutput, testFlagIndicatorShopsDirectory)
}

func TestServerCommandRejectsInvalidServeMode(testingT *testing.T) {
	testingT.Setenv(testEnvironmentKeyShopsDirectory, testutil.NewShopsDirectory(testingT, testutil.StudioConfiguration()))
	testingT.Setenv(testEnvironmentKeyServeMode, "everything")

	_, _, executionErr := executeServerCommand(testingT)
	require.ErrorIs(testingT, executionErr, servercmd.ErrInvalidServeMode)
}

func TestServerCommandMountsRoutesPerServeMode(testingT *testing.T) {
	testCases := []struct {
		serveMode        string
		expectWebRoutes  bool
		expectAPIRoutes  bool
		expectedHealthOK bool
	}{
		{serveMode: "monolith", expectWebRoutes: true, expectAPIRoutes: true, expectedHealthOK: true},
		{serveMode: "web", expectWebRoutes: true, expectAPIRoutes: false, expectedHealthOK: true},
		{serveMode: "api", expectWebRoutes: false, expectAPIRoutes: true, expectedHealthOK: true},
	}

	shopsDirectory := testutil.NewShopsDirectory(testingT, testutil.StudioConfiguration())
	for _, testCase := range testCases {
		testingT.Run(testCase.serveMode, func(testingT *testing.T) {
			testingT.Setenv(testEnvironmentKeyShopsDirectory, shopsDirectory)
			testingT.Setenv(testEnvironmentKeyServeMode, testCase.serveMode)

			captured, _, executionErr := executeServerCommand(testingT, "--app-addr", "127.0.0.1:0")
			require.NoError(testingT, executionErr)
			require.NotNil(testingT, captured.handler)
			require.Equal(testingT, "127.0.0.1:0", captured.address)

			require.Equal(testingT, http.StatusOK, requestStatus(testingT, captured.handler, http.MethodGet, "/healthz"))

			webStatus := requestStatus(testingT, captured.handler, http.MethodGet, "/shops/studio/widget.js")
			bookingStatus := requestStatus(testingT, captured.handler, http.MethodGet, "/shops/studio/book")
			if testCase.expectWebRoutes {
				require.Equal(testingT, http.StatusOK, webStatus)
				require.Equal(testingT, http.StatusOK, bookingStatus)
			} else {
				require.Equal(testingT, http.StatusNotFound, webStatus)
				require.Equal(testingT, http.StatusNotFound, bookingStatus)
			}

			shopsStatus := requestStatus(testingT, captured.handler, http.MethodGet, "/api/shops")
			metricsStatus := requestStatus(testingT, captured.handler, http.MethodGet, "/metrics")
			if testCase.expectAPIRoutes {
				require.Equal(testingT, http.StatusOK, shopsStatus)
				require.Equal(testingT, http.StatusOK, metricsStatus)
			} else {
				require.Equal(testingT, http.StatusNotFound, shopsStatus)
				require.Equal(testingT, http.StatusNotFound, metricsStatus)
			}
		})
	}
}

func TestServerCommandLoadsCustomTemplate(testingT *testing.T) {
	templatePath := filepath.Join(testingT.TempDir(), "plain.js")
	require.NoError(testingT, os.WriteFile(templatePath, []byte(`window.bw = {s: {{STAFF_LIST_JSON}}, c: "{{CHAT_BASE_URL}}", n: "{{SHOP_NAME}}", a: "{{PRIMARY_COLOR}}"};`), 0o600))
	testingT.Setenv(testEnvironmentKeyShopsDirectory, testutil.NewShopsDirectory(testingT, testutil.StudioConfiguration()))
	testingT.Setenv(testEnvironmentKeyTemplatePath, templatePath)
	testingT.Setenv(testEnvironmentKeyPublicBaseURL, "https://widgets.example")

	captured, _, executionErr := executeServerCommand(testingT)
	require.NoError(testingT, executionErr)

	recorder := httptest.NewRecorder()
	captured.handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/shops/studio/widget.js", nil))
	require.Equal(testingT, http.StatusOK, recorder.Code)
	require.Equal(testingT, `window.bw = {s: [{"name":"Ann","handle":"@ann","photo":"x.jpg","specialty":"color"}], c: "https://chat.example/bot", n: "Studio", a: "#111"};`, recorder.Body.String())
}

func TestServerCommandRejectsDefectiveTemplate(testingT *testing.T) {
	templatePath := filepath.Join(testingT.TempDir(), "broken.js")
	require.NoError(testingT, os.WriteFile(templatePath, []byte(`var n = "{{SHOP_NAME}}";`), 0o600))
	testingT.Setenv(testEnvironmentKeyShopsDirectory, testutil.NewShopsDirectory(testingT, testutil.StudioConfiguration()))
	testingT.Setenv(testEnvironmentKeyTemplatePath, templatePath)

	captured, _, executionErr := executeServerCommand(testingT)
	require.Error(testingT, executionErr)
	require.Contains(testingT, executionErr.Error(), "missing {{STAFF_LIST_JSON}}")
	require.Nil(testingT, captured.handler)
}

func TestServerCommandRejectsInvalidCatalog(testingT *testing.T) {
	invalidConfiguration := testutil.StudioConfiguration()
	invalidConfiguration.ChatAddress = "not a chat"
	testingT.Setenv(testEnvironmentKeyShopsDirectory, testutil.NewShopsDirectory(testingT, invalidConfiguration))

	_, _, executionErr := executeServerCommand(testingT)
	require.Error(testingT, executionErr)
	require.Contains(testingT, executionErr.Error(), "chatAddress")
}
