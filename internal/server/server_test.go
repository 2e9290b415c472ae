package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/songzhibin97/splscan/internal/models"
	"github.com/songzhibin97/splscan/internal/observability"
)

const usdc = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"

type stubAnalyzer struct {
	mu        sync.Mutex
	addresses []string
	result    *models.AnalysisResult
}

func (a *stubAnalyzer) Analyze(ctx context.Context, address string) *models.AnalysisResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.addresses = append(a.addresses, address)
	return a.result
}

func setupTestServer(t *testing.T, analyzer *stubAnalyzer) *httptest.Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := observability.NewMetrics("test")
	srv := NewServer(analyzer, metrics.Handler(), []string{"*"}, logger)

	server := httptest.NewServer(srv.Routes())
	t.Cleanup(server.Close)
	return server
}

func post(t *testing.T, server *httptest.Server, body string) (int, string) {
	resp, err := server.Client().Post(server.URL+"/scanner", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(raw)
}

func TestServer_Scan(t *testing.T) {
	analyzer := &stubAnalyzer{result: &models.AnalysisResult{
		TokenDetails: &models.TokenDetails{
			AnalyticsRecord: models.AnalyticsRecord{TokenName: "USD Coin", TokenSymbol: "USDC"},
			IsHoneyPot:      false,
		},
		TokenDistribution: []models.HolderRecord{{Address: "A", PercentageDisplay: "50.00"}},
		Stage:             "Assembled",
	}}
	server := setupTestServer(t, analyzer)

	status, body := post(t, server, `{"contract":" `+usdc+` "}`)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, []string{usdc}, analyzer.addresses)
	assert.Contains(t, body, `"tokenName":"USD Coin"`)
	assert.Contains(t, body, `"isHoneyPot":false`)
	assert.Contains(t, body, `"percentage":"50.00"`)
	assert.NotContains(t, body, `"error"`)
	assert.NotContains(t, body, "Assembled")
}

func TestServer_ScanFailureIsStillOK(t *testing.T) {
	analyzer := &stubAnalyzer{result: &models.AnalysisResult{Error: "metadata unreachable", Stage: "Failed"}}
	server := setupTestServer(t, analyzer)

	status, body := post(t, server, `{"contract":"`+usdc+`"}`)

	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"error":"metadata unreachable"}`, body)
}

func TestServer_RejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "not json", body: `contract=abc`, want: "invalid request body"},
		{name: "missing contract", body: `{}`, want: "invalid solana address"},
		{name: "evm address", body: `{"contract":"0x6B175474E89094C44Da98b954EedeAC495271d0F"}`, want: "invalid solana address"},
		{name: "short", body: `{"contract":"abc"}`, want: "invalid solana address"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analyzer := &stubAnalyzer{}
			server := setupTestServer(t, analyzer)

			status, body := post(t, server, tt.body)

			assert.Equal(t, http.StatusOK, status)
			assert.Contains(t, body, `"error":"`+tt.want)
			assert.Empty(t, analyzer.addresses)
		})
	}
}

func TestServer_HealthAndMetrics(t *testing.T) {
	server := setupTestServer(t, &stubAnalyzer{})

	resp, err := server.Client().Get(server.URL + "/healthz")
	require.NoError(t, err)
	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(raw))

	resp, err = server.Client().Get(server.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = server.Client().Get(server.URL + "/scanner")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestServer_CORS(t *testing.T) {
	server := setupTestServer(t, &stubAnalyzer{})

	req, err := http.NewRequest(http.MethodOptions, server.URL+"/scanner", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	resp, err := server.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
