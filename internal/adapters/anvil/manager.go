package anvil

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/trebuchet-org/chefkit/internal/domain"
	"github.com/trebuchet-org/chefkit/internal/usecase"
)

const (
	DefaultAnvilName = "anvil"
	DefaultAnvilPort = "8545"

	startupTimeout = 15 * time.Second
	stopTimeout    = 5 * time.Second
)

// rpcRequest represents a JSON-RPC request
type rpcRequest struct {
	Jsonrpc string        `json:"jsonrpc"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
	ID      int           `json:"id"`
}

// rpcResponse represents a JSON-RPC response
type rpcResponse struct {
	Jsonrpc string      `json:"jsonrpc"`
	Result  interface{} `json:"result,omitempty"`
	Error   *rpcError   `json:"error,omitempty"`
	ID      int         `json:"id"`
}

// rpcError represents a JSON-RPC error
type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Manager runs anvil processes tracked by pid and log files under /tmp
type Manager struct {
	binary     string
	httpClient *http.Client
	log        *slog.Logger
}

// NewManager creates a new anvil manager
func NewManager(log *slog.Logger) *Manager {
	return &Manager{
		binary:     "anvil",
		httpClient: &http.Client{Timeout: 5 * time.Second},
		log:        log.With("component", "anvil"),
	}
}

// setFilePaths fills in defaults for the instance name, port and files
func (m *Manager) setFilePaths(instance *domain.AnvilInstance) {
	if strings.TrimSpace(instance.Name) == "" {
		instance.Name = DefaultAnvilName
	}
	if strings.TrimSpace(instance.Port) == "" {
		instance.Port = DefaultAnvilPort
	}
	if instance.PidFile == "" {
		instance.PidFile = filepath.Join(os.TempDir(), fmt.Sprintf("chefkit-%s.pid", instance.Name))
	}
	if instance.LogFile == "" {
		instance.LogFile = filepath.Join(os.TempDir(), fmt.Sprintf("chefkit-%s.log", instance.Name))
	}
}

// buildAnvilArgs returns the command line for an instance
func buildAnvilArgs(instance *domain.AnvilInstance) []string {
	args := []string{"--port", instance.Port, "--host", "0.0.0.0"}
	if instance.ChainID != "" {
		args = append(args, "--chain-id", instance.ChainID)
	}
	if instance.ForkURL != "" {
		args = append(args, "--fork-url", instance.ForkURL)
		if instance.ForkBlockNumber > 0 {
			args = append(args, "--fork-block-number", strconv.FormatUint(instance.ForkBlockNumber, 10))
		}
	}
	return args
}

func rpcURL(instance *domain.AnvilInstance) string {
	return fmt.Sprintf("http://127.0.0.1:%s", instance.Port)
}

// Start launches anvil in the background and waits for its RPC to answer
func (m *Manager) Start(ctx context.Context, instance *domain.AnvilInstance) error {
	m.setFilePaths(instance)

	if m.isRunning(instance) {
		return fmt.Errorf("anvil '%s' is already running (PID file exists at %s)", instance.Name, instance.PidFile)
	}

	binary, err := exec.LookPath(m.binary)
	if err != nil {
		return fmt.Errorf("anvil not found in PATH, install foundry: %w", err)
	}

	logFile, err := os.Create(instance.LogFile)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}
	defer logFile.Close()

	args := buildAnvilArgs(instance)
	m.log.Debug("starting anvil", "args", args)

	cmd := exec.Command(binary, args...)
	cmd.Stdout = logFile
	cmd.Stderr = logFile
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start anvil: %w", err)
	}

	if err := os.WriteFile(instance.PidFile, []byte(strconv.Itoa(cmd.Process.Pid)), 0644); err != nil {
		_ = cmd.Process.Kill()
		return fmt.Errorf("failed to write PID file: %w", err)
	}
	_ = cmd.Process.Release()

	// forks download state before serving, so give them time
	deadline := time.Now().Add(startupTimeout)
	for {
		if _, err := m.chainID(ctx, instance); err == nil {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("anvil '%s' did not answer on %s within %s, see %s", instance.Name, rpcURL(instance), startupTimeout, instance.LogFile)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(200 * time.Millisecond):
		}
	}
}

// Stop terminates a running instance. Stopping a stopped instance is not an error.
func (m *Manager) Stop(ctx context.Context, instance *domain.AnvilInstance) error {
	m.setFilePaths(instance)

	if !m.isRunning(instance) {
		_ = os.Remove(instance.PidFile)
		return nil
	}

	pid, err := readPidFile(instance.PidFile)
	if err != nil {
		return fmt.Errorf("failed to read PID file: %w", err)
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("failed to find process: %w", err)
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		if err := process.Kill(); err != nil {
			return fmt.Errorf("failed to kill process: %w", err)
		}
	}

	deadline := time.Now().Add(stopTimeout)
	for processAlive(pid) && time.Now().Before(deadline) {
		time.Sleep(100 * time.Millisecond)
	}
	if processAlive(pid) {
		_ = process.Kill()
	}

	if err := os.Remove(instance.PidFile); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove PID file: %w", err)
	}
	return nil
}

// GetStatus reports the process and RPC state of an instance
func (m *Manager) GetStatus(ctx context.Context, instance *domain.AnvilInstance) (*domain.AnvilStatus, error) {
	m.setFilePaths(instance)

	status := &domain.AnvilStatus{
		Running: m.isRunning(instance),
		RPCURL:  rpcURL(instance),
		LogFile: instance.LogFile,
	}
	if status.Running {
		status.PID, _ = readPidFile(instance.PidFile)
	}

	chainID, err := m.chainID(ctx, instance)
	if err != nil {
		status.Error = err.Error()
		return status, nil
	}
	status.RPCHealthy = true
	status.ChainID = chainID

	if block, err := m.quantity(ctx, instance, "eth_blockNumber"); err == nil {
		status.BlockNumber = block
	}
	return status, nil
}

// StreamLogs copies the log file to writer and follows it until ctx is done
func (m *Manager) StreamLogs(ctx context.Context, instance *domain.AnvilInstance, writer io.Writer) error {
	m.setFilePaths(instance)

	file, err := os.Open(instance.LogFile)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("log file does not exist: %s", instance.LogFile)
		}
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer file.Close()

	reader := bufio.NewReader(file)
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		if _, err := io.Copy(writer, reader); err != nil {
			return fmt.Errorf("failed to stream logs: %w", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (m *Manager) isRunning(instance *domain.AnvilInstance) bool {
	pid, err := readPidFile(instance.PidFile)
	if err != nil {
		return false
	}
	return processAlive(pid)
}

func processAlive(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}

func readPidFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("invalid PID in file: %s", string(data))
	}
	return pid, nil
}

func (m *Manager) chainID(ctx context.Context, instance *domain.AnvilInstance) (uint64, error) {
	return m.quantity(ctx, instance, "eth_chainId")
}

// quantity calls a parameterless method returning a hex quantity
func (m *Manager) quantity(ctx context.Context, instance *domain.AnvilInstance, method string) (uint64, error) {
	resp, err := m.makeRPCCall(ctx, instance, rpcRequest{Jsonrpc: "2.0", Method: method, Params: []interface{}{}, ID: 1})
	if err != nil {
		return 0, err
	}
	hex, ok := resp.Result.(string)
	if !ok {
		return 0, fmt.Errorf("%s: unexpected result type %T", method, resp.Result)
	}
	v, err := strconv.ParseUint(strings.TrimPrefix(hex, "0x"), 16, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid quantity %q", method, hex)
	}
	return v, nil
}

// makeRPCCall makes an RPC call and parses the response
func (m *Manager) makeRPCCall(ctx context.Context, instance *domain.AnvilInstance, req rpcRequest) (*rpcResponse, error) {
	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, rpcURL(instance), bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := m.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to make HTTP request: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d", httpResp.StatusCode)
	}

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp rpcResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("RPC error: %s", resp.Error.Message)
	}
	return &resp, nil
}

var _ usecase.AnvilManager = (*Manager)(nil)
