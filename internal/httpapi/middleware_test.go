package httpapi_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/MarkoPoloResearchLab/booking_widget/internal/httpapi"
)

func TestRequestIDPropagatesCallerValue(testingT *testing.T) {
	harness := buildAPIHarness(testingT)

	recorder := performJSONRequest(testingT, harness.router, http.MethodGet, "/healthz", nil, map[string]string{
		httpapi.RequestIDHeader: "caller-request-1",
	})
	require.Equal(testingT, "caller-request-1", recorder.Header().Get(httpapi.RequestIDHeader))
}

func TestRequestIDAssignsIdentifier(testingT *testing.T) {
	testCases := []struct {
		name          string
		incomingValue string
	}{
		{name: "missing header", incomingValue: ""},
		{name: "blank header", incomingValue: "   "},
		{name: "oversized header", incomingValue: strings.Repeat("a", 65)},
	}

	harness := buildAPIHarness(testingT)
	for _, testCase := range testCases {
		testingT.Run(testCase.name, func(testingT *testing.T) {
			headers := map[string]string{}
			if testCase.incomingValue != "" {
				headers[httpapi.RequestIDHeader] = testCase.incomingValue
			}
			recorder := performJSONRequest(testingT, harness.router, http.MethodGet, "/healthz", nil, headers)
			_, parseErr := uuid.Parse(recorder.Header().Get(httpapi.RequestIDHeader))
			require.NoError(testingT, parseErr)
		})
	}
}
