package anvil

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/chefkit/internal/domain"
)

func newTestManager() *Manager {
	return NewManager(slog.New(slog.DiscardHandler))
}

func TestBuildAnvilArgs_Basic(t *testing.T) {
	instance := &domain.AnvilInstance{
		Port: "8545",
	}
	args := buildAnvilArgs(instance)
	assert.Equal(t, []string{"--port", "8545", "--host", "0.0.0.0"}, args)
}

func TestBuildAnvilArgs_WithChainID(t *testing.T) {
	instance := &domain.AnvilInstance{
		Port:    "9000",
		ChainID: "31337",
	}
	args := buildAnvilArgs(instance)
	assert.Equal(t, []string{"--port", "9000", "--host", "0.0.0.0", "--chain-id", "31337"}, args)
}

func TestBuildAnvilArgs_MainnetFork(t *testing.T) {
	instance := &domain.AnvilInstance{
		Port:            "8545",
		ForkURL:         "https://eth-mainnet.example/v2/key",
		ForkBlockNumber: 13_000_000,
	}
	args := buildAnvilArgs(instance)
	assert.Equal(t, []string{
		"--port", "8545",
		"--host", "0.0.0.0",
		"--fork-url", "https://eth-mainnet.example/v2/key",
		"--fork-block-number", "13000000",
	}, args)
	assert.True(t, instance.IsFork())
}

func TestBuildAnvilArgs_BlockNumberNeedsFork(t *testing.T) {
	instance := &domain.AnvilInstance{
		Port:            "8545",
		ForkBlockNumber: 13_000_000,
	}
	args := buildAnvilArgs(instance)
	for _, arg := range args {
		assert.NotEqual(t, "--fork-block-number", arg)
	}
	assert.False(t, instance.IsFork())
}

func TestSetFilePaths_DefaultInstance(t *testing.T) {
	m := newTestManager()
	instance := &domain.AnvilInstance{}
	m.setFilePaths(instance)

	assert.Equal(t, "anvil", instance.Name)
	assert.Equal(t, DefaultAnvilPort, instance.Port)
	assert.Equal(t, filepath.Join(os.TempDir(), "chefkit-anvil.pid"), instance.PidFile)
	assert.Equal(t, filepath.Join(os.TempDir(), "chefkit-anvil.log"), instance.LogFile)
}

func TestSetFilePaths_PresetPathsPreserved(t *testing.T) {
	m := newTestManager()
	instance := &domain.AnvilInstance{
		Name:    "mainnet-fork",
		Port:    "54321",
		PidFile: "/custom/path/my.pid",
		LogFile: "/custom/path/my.log",
	}
	m.setFilePaths(instance)

	assert.Equal(t, "/custom/path/my.pid", instance.PidFile)
	assert.Equal(t, "/custom/path/my.log", instance.LogFile)
}

// newMockRPCServer creates a test HTTP server that responds to JSON-RPC requests
func newMockRPCServer(t *testing.T, handler func(req rpcRequest) rpcResponse) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode RPC request: %v", err)
			return
		}
		resp := handler(req)
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			t.Errorf("failed to encode RPC response: %v", err)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

// instanceForServer creates an AnvilInstance pointing at the test server
func instanceForServer(t *testing.T, server *httptest.Server) *domain.AnvilInstance {
	t.Helper()
	parts := strings.Split(server.URL, ":")
	port := parts[len(parts)-1]
	dir := t.TempDir()
	return &domain.AnvilInstance{
		Name:    "test",
		Port:    port,
		PidFile: filepath.Join(dir, "test.pid"),
		LogFile: filepath.Join(dir, "test.log"),
	}
}

func TestGetStatus_Healthy(t *testing.T) {
	server := newMockRPCServer(t, func(req rpcRequest) rpcResponse {
		switch req.Method {
		case "eth_chainId":
			return rpcResponse{Jsonrpc: "2.0", Result: "0x7a69", ID: req.ID}
		case "eth_blockNumber":
			return rpcResponse{Jsonrpc: "2.0", Result: "0xc65d40", ID: req.ID}
		}
		return rpcResponse{Jsonrpc: "2.0", Error: &rpcError{Code: -32601, Message: "method not found"}, ID: req.ID}
	})

	m := newTestManager()
	instance := instanceForServer(t, server)

	status, err := m.GetStatus(context.Background(), instance)
	require.NoError(t, err)
	assert.False(t, status.Running)
	assert.True(t, status.RPCHealthy)
	assert.Equal(t, uint64(31337), status.ChainID)
	assert.Equal(t, uint64(13_000_000), status.BlockNumber)
	assert.Empty(t, status.Error)
}

func TestGetStatus_RPCError(t *testing.T) {
	server := newMockRPCServer(t, func(req rpcRequest) rpcResponse {
		return rpcResponse{
			Jsonrpc: "2.0",
			Error:   &rpcError{Code: -32000, Message: "node syncing"},
			ID:      req.ID,
		}
	})

	m := newTestManager()
	instance := instanceForServer(t, server)

	status, err := m.GetStatus(context.Background(), instance)
	require.NoError(t, err)
	assert.False(t, status.RPCHealthy)
	assert.Contains(t, status.Error, "node syncing")
}

func TestStop_NotRunning(t *testing.T) {
	m := newTestManager()
	dir := t.TempDir()
	instance := &domain.AnvilInstance{
		Name:    "stale",
		PidFile: filepath.Join(dir, "stale.pid"),
		LogFile: filepath.Join(dir, "stale.log"),
	}
	require.NoError(t, os.WriteFile(instance.PidFile, []byte("not-a-pid"), 0644))

	require.NoError(t, m.Stop(context.Background(), instance))
	_, err := os.Stat(instance.PidFile)
	assert.True(t, os.IsNotExist(err))
}

func TestStart_AlreadyRunning(t *testing.T) {
	m := newTestManager()
	dir := t.TempDir()
	instance := &domain.AnvilInstance{
		Name:    "self",
		PidFile: filepath.Join(dir, "self.pid"),
		LogFile: filepath.Join(dir, "self.log"),
	}
	// the test process itself is alive
	require.NoError(t, os.WriteFile(instance.PidFile, []byte(strconv.Itoa(os.Getpid())), 0644))

	err := m.Start(context.Background(), instance)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already running")
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

func TestStreamLogs_FollowsUntilCancelled(t *testing.T) {
	m := newTestManager()
	dir := t.TempDir()
	instance := &domain.AnvilInstance{
		Name:    "logs",
		PidFile: filepath.Join(dir, "logs.pid"),
		LogFile: filepath.Join(dir, "logs.log"),
	}
	require.NoError(t, os.WriteFile(instance.LogFile, []byte("Listening on 0.0.0.0:8545\n"), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	out := &syncBuffer{}
	done := make(chan error, 1)
	go func() { done <- m.StreamLogs(ctx, instance, out) }()

	f, err := os.OpenFile(instance.LogFile, os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.WriteString("eth_chainId\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	assert.Eventually(t, func() bool {
		return strings.Contains(out.String(), "eth_chainId")
	}, 2*time.Second, 50*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	assert.True(t, strings.HasPrefix(out.String(), "Listening on 0.0.0.0:8545"))
}

func TestStreamLogs_MissingFile(t *testing.T) {
	m := newTestManager()
	instance := &domain.AnvilInstance{
		Name:    "missing",
		PidFile: filepath.Join(t.TempDir(), "missing.pid"),
		LogFile: filepath.Join(t.TempDir(), "missing.log"),
	}
	err := m.StreamLogs(context.Background(), instance, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log file does not exist")
}
