package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/hsdfat8/telbill/internal/adapters/memory"
	"github.com/hsdfat8/telbill/internal/adapters/testutil"
	"github.com/hsdfat8/telbill/internal/domain/service"
	"github.com/hsdfat8/telbill/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, config ServerConfig) *Server {
	t.Helper()

	svc := service.NewBillingService(
		memory.NewInMemoryAccountRepository(),
		memory.NewInMemoryLedgerRepository(),
		memory.NewInMemoryDeviceRepository(),
		memory.NewInMemoryCatalog(memory.PhoneSampleData),
	)
	svc.SetLogger(logger.New("server-test", "error"))

	server := NewServer(config, svc, RouterOptions{})
	require.NoError(t, server.Start())
	t.Cleanup(func() { _ = server.Stop() })
	return server
}

func TestServerHTTP1Basic(t *testing.T) {
	server := newTestServer(t, ServerConfig{ListenAddr: "127.0.0.1:0"})
	assert.True(t, server.IsRunning())

	resp, err := http.Get(fmt.Sprintf("http://%s/health", server.GetAddr()))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, resp.ProtoMajor)
}

func TestServerH2C(t *testing.T) {
	pcapWriter, err := testutil.NewPCAPWriter(filepath.Join(t.TempDir(), "billing_h2c.pcap"))
	require.NoError(t, err)
	defer pcapWriter.Close()

	server := newTestServer(t, ServerConfig{ListenAddr: "127.0.0.1:0", EnableH2C: true})
	client := testutil.NewH2CClient(pcapWriter)
	base := fmt.Sprintf("http://%s", server.GetAddr())

	t.Run("HealthCheck", func(t *testing.T) {
		resp, err := client.Get(base + "/health")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, 2, resp.ProtoMajor)
	})

	t.Run("OpenAccountAndPay", func(t *testing.T) {
		body, _ := json.Marshal(OpenAccountRequest{CustomerID: "TEL12345", InitialBalance: "100"})
		resp, err := client.Post(base+"/api/v1/accounts", "application/json", bytes.NewReader(body))
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		body, _ = json.Marshal(PaymentRequest{Amount: "50"})
		resp, err = client.Post(base+"/api/v1/accounts/TEL12345/payments", "application/json", bytes.NewReader(body))
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var result PaymentResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		assert.Equal(t, "50.00", result.Balance)
		assert.Equal(t, 2, resp.ProtoMajor)
	})

	assert.Greater(t, pcapWriter.Packets(), 0)
}

func TestServerGracefulShutdown(t *testing.T) {
	svc := service.NewBillingService(
		memory.NewInMemoryAccountRepository(),
		memory.NewInMemoryLedgerRepository(),
		memory.NewInMemoryDeviceRepository(),
		memory.NewInMemoryCatalog(nil),
	)
	server := NewServer(ServerConfig{
		ListenAddr:      "127.0.0.1:0",
		EnableH2C:       true,
		ShutdownTimeout: 5 * time.Second,
	}, svc, RouterOptions{})

	require.NoError(t, server.Start())
	assert.True(t, server.IsRunning())

	assert.NoError(t, server.Stop())
	assert.False(t, server.IsRunning())
	assert.NoError(t, server.Stop())
}
