package api_test

import (
	"io"
	"net/http"
	"testing"

	"github.com/dom/chat-server/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouter_Liveness(t *testing.T) {
	ts := testutil.NewTestServer(t)

	tests := []struct {
		path string
		want string
	}{
		{path: "/", want: "Chat server running"},
		{path: "/health", want: "OK"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp := testutil.Get(t, ts.BaseURL()+tt.path, "")
			defer resp.Body.Close()

			testutil.AssertStatusCode(t, resp, http.StatusOK)
			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(body))
		})
	}
}

func TestRouter_Metrics(t *testing.T) {
	ts := testutil.NewTestServer(t)

	resp := testutil.Get(t, ts.APIURL("/users/someone"), "")
	resp.Body.Close()

	resp = testutil.Get(t, ts.BaseURL()+"/metrics", "")
	defer resp.Body.Close()

	testutil.AssertStatusCode(t, resp, http.StatusOK)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `chat_http_requests_total{method="GET",route="/api/users/{userId}",status="200"}`)
}

func TestRouter_CORS(t *testing.T) {
	ts := testutil.NewTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, ts.APIURL("/login"), nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
