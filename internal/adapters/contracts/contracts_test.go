package contracts

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/chefkit/internal/adapters/rpcclient"
	"github.com/trebuchet-org/chefkit/internal/adapters/signers"
	"github.com/trebuchet-org/chefkit/internal/domain"
	"github.com/trebuchet-org/chefkit/internal/domain/config"
)

type rpcRequest struct {
	Jsonrpc string            `json:"jsonrpc"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params"`
	ID      json.RawMessage   `json:"id"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    string `json:"data,omitempty"`
}

type rpcResponse struct {
	Jsonrpc string          `json:"jsonrpc"`
	Result  interface{}     `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
	ID      json.RawMessage `json:"id"`
}

type callArgs struct {
	To    *common.Address `json:"to"`
	Input hexutil.Bytes   `json:"input"`
	Data  hexutil.Bytes   `json:"data"`
}

func (c callArgs) calldata() []byte {
	if len(c.Input) > 0 {
		return c.Input
	}
	return c.Data
}

// newMockRPCServer answers JSON-RPC requests with handler, one method at a time
func newMockRPCServer(t *testing.T, handler func(req rpcRequest) (interface{}, *rpcError)) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode RPC request: %v", err)
			return
		}
		result, rpcErr := handler(req)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(rpcResponse{Jsonrpc: "2.0", Result: result, Error: rpcErr, ID: req.ID})
	}))
	t.Cleanup(server.Close)
	return server
}

func testConfig(url string) *config.RuntimeConfig {
	return &config.RuntimeConfig{
		Network: &config.Network{Name: "test", RPCURL: url},
		Harness: &config.HarnessConfig{
			Chain: config.ChainConfig{GasPrice: 100000000},
			Signers: config.SignersConfig{
				Admin:    "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80",
				Deployer: "0x5de4111afa1a4b94908f83103eb1f1706367c2e68ca870fc3fb9a804cdab365a",
			},
		},
	}
}

func newTestBinder(t *testing.T, server *httptest.Server) *Binder {
	t.Helper()
	cfg := testConfig(server.URL)
	keyring, err := signers.NewKeyring(cfg)
	require.NoError(t, err)
	client := rpcclient.NewClient(cfg)
	t.Cleanup(client.Close)
	return NewBinder(client, keyring, cfg, slog.New(slog.DiscardHandler))
}

func word(v *big.Int) []byte {
	return common.LeftPadBytes(v.Bytes(), 32)
}

func revertData(t *testing.T, reason string) string {
	t.Helper()
	stringType, err := abi.NewType("string", "", nil)
	require.NoError(t, err)
	packed, err := abi.Arguments{{Type: stringType}}.Pack(reason)
	require.NoError(t, err)
	return hexutil.Encode(append([]byte{0x08, 0xc3, 0x79, 0xa0}, packed...))
}

func TestABIs_Parse(t *testing.T) {
	for _, p := range []*parsedABI{erc20ABI, masterChefV2ABI, rewarderABI, adapterABI, testDeFiAdapterABI} {
		parsed, err := p.get()
		require.NoError(t, err, p.name)
		assert.NotEmpty(t, parsed.Methods, p.name)
	}

	parsed := testDeFiAdapterABI.mustGet()
	method, ok := parsed.Methods["setInvestStrategySteps"]
	require.True(t, ok)
	require.Len(t, method.Inputs, 1)
	assert.Equal(t, "(address,address,bool)", method.Inputs[0].Type.String())

	input, err := parsed.Pack("setInvestStrategySteps", strategyStep{
		Pool:        common.HexToAddress("0x1"),
		OutputToken: common.HexToAddress("0x2"),
		IsBorrow:    false,
	})
	require.NoError(t, err)
	assert.Len(t, input, 4+3*32)
}

func TestIsSwapFailure(t *testing.T) {
	tests := []struct {
		reason string
		want   bool
	}{
		{"UniswapV2Library: INSUFFICIENT_LIQUIDITY", true},
		{"UniswapV2Router: INSUFFICIENT_OUTPUT_AMOUNT", true},
		{"UniswapV2Library: INSUFFICIENT_INPUT_AMOUNT", true},
		{"Insufficient liquidity for this trade", true},
		{"insufficient reserves", true},
		{"Ownable: caller is not the owner", false},
		{"SafeMath: subtraction overflow", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.reason, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSwapFailure(tt.reason))
		})
	}
}

func TestRevertReason_FromMessage(t *testing.T) {
	assert.Equal(t, "UniswapV2: K",
		RevertReason(errors.New("execution reverted: UniswapV2: K")))
	assert.Equal(t, "UniswapV2Library: INSUFFICIENT_LIQUIDITY",
		RevertReason(errors.New("VM Exception while processing transaction: reverted with reason string 'UniswapV2Library: INSUFFICIENT_LIQUIDITY'")))
	assert.Equal(t, "boom", RevertReason(errors.New("boom")))
	assert.Equal(t, "", RevertReason(nil))
}

func TestClassifyRevert(t *testing.T) {
	err := classifyRevert("TestDeFiAdapter.testGetHarvestAllCodes", errors.New("execution reverted: UniswapV2Library: INSUFFICIENT_OUTPUT_AMOUNT"))
	assert.ErrorIs(t, err, domain.ErrSwapFailed)

	err = classifyRevert("TestDeFiAdapter.testGetHarvestAllCodes", errors.New("execution reverted: Ownable: caller is not the owner"))
	assert.ErrorIs(t, err, domain.ErrTransactionReverted)
	assert.NotErrorIs(t, err, domain.ErrSwapFailed)

	cause := errors.New("connection refused")
	err = classifyRevert("TestDeFiAdapter.testGetHarvestAllCodes", cause)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, domain.ErrTransactionReverted)
}

func TestAdapter_Views(t *testing.T) {
	reward := common.HexToAddress("0x6B3595068778DD592e39A122f4f5a5cF09C90fE2")
	adapterAddr := common.HexToAddress("0x00000000000000000000000000000000000ada01")

	parsed := adapterABI.mustGet()
	server := newMockRPCServer(t, func(req rpcRequest) (interface{}, *rpcError) {
		require.Equal(t, "eth_call", req.Method)
		var args callArgs
		require.NoError(t, json.Unmarshal(req.Params[0], &args))
		require.NotNil(t, args.To)
		assert.Equal(t, adapterAddr, *args.To)

		data := args.calldata()
		switch {
		case strings.HasPrefix(hexutil.Encode(data), hexutil.Encode(parsed.Methods["getRewardToken"].ID)):
			return hexutil.Encode(common.LeftPadBytes(reward.Bytes(), 32)), nil
		case strings.HasPrefix(hexutil.Encode(data), hexutil.Encode(parsed.Methods["getLiquidityPoolTokenBalance"].ID)):
			return hexutil.Encode(word(big.NewInt(1234))), nil
		}
		return nil, &rpcError{Code: -32000, Message: "unexpected call"}
	})

	adapter := newTestBinder(t, server).Adapter(adapterAddr)
	ctx := context.Background()

	got, err := adapter.RewardToken(ctx, common.HexToAddress("0x1"))
	require.NoError(t, err)
	assert.Equal(t, reward, got)

	balance, err := adapter.LiquidityPoolTokenBalance(ctx, common.HexToAddress("0x2"), common.HexToAddress("0x3"), common.HexToAddress("0x4"))
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1234), balance)
}

func TestMasterChef_UserAmount(t *testing.T) {
	server := newMockRPCServer(t, func(req rpcRequest) (interface{}, *rpcError) {
		require.Equal(t, "eth_call", req.Method)
		out := append(word(big.NewInt(5e18)), word(big.NewInt(7))...)
		return hexutil.Encode(out), nil
	})

	chef := newTestBinder(t, server).MasterChef(common.HexToAddress("0x99fa011E33A8c6196869DeC7Bc407E896BA67fE3"))
	amount, err := chef.UserAmount(context.Background(), big.NewInt(1), common.HexToAddress("0xabc"))
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(5e18), amount)
}

func TestTestAdapter_HarvestSwapFailure(t *testing.T) {
	reason := "UniswapV2Library: INSUFFICIENT_LIQUIDITY"
	data := revertData(t, reason)

	var sent bool
	server := newMockRPCServer(t, func(req rpcRequest) (interface{}, *rpcError) {
		switch req.Method {
		case "eth_chainId":
			return "0x7a69", nil
		case "eth_estimateGas":
			return nil, &rpcError{Code: 3, Message: "execution reverted", Data: data}
		case "eth_sendRawTransaction":
			sent = true
		}
		return nil, &rpcError{Code: -32601, Message: "method not found: " + req.Method}
	})

	driver := newTestBinder(t, server).TestAdapter(common.HexToAddress("0x7e57"), domain.SignerDeployer)
	err := driver.HarvestAll(context.Background(), common.HexToAddress("0x1"), common.HexToAddress("0x2"), common.HexToAddress("0x3"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSwapFailed)
	assert.Contains(t, err.Error(), reason)
	assert.False(t, sent)
}

func TestTestAdapter_RevertedReceipt(t *testing.T) {
	methods := make(map[string]int)
	server := newMockRPCServer(t, func(req rpcRequest) (interface{}, *rpcError) {
		methods[req.Method]++
		switch req.Method {
		case "eth_chainId":
			return "0x7a69", nil
		case "eth_estimateGas":
			return "0x30d40", nil
		case "eth_getTransactionCount":
			return "0x0", nil
		case "eth_sendRawTransaction":
			return common.HexToHash("0x01").Hex(), nil
		case "eth_getTransactionReceipt":
			return map[string]interface{}{
				"type":              "0x0",
				"transactionHash":   common.HexToHash("0x01").Hex(),
				"blockNumber":       "0x2",
				"cumulativeGasUsed": "0x5208",
				"gasUsed":           "0x5208",
				"effectiveGasPrice": "0x5f5e100",
				"logsBloom":         "0x" + strings.Repeat("00", 256),
				"logs":              []interface{}{},
				"status":            "0x0",
			}, nil
		}
		return nil, &rpcError{Code: -32601, Message: "method not found: " + req.Method}
	})

	driver := newTestBinder(t, server).TestAdapter(common.HexToAddress("0x7e57"), domain.SignerDeployer)
	err := driver.SetUnderlyingToken(context.Background(), common.HexToAddress("0x2"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTransactionReverted)
	assert.Equal(t, 1, methods["eth_sendRawTransaction"])
	assert.Equal(t, 1, methods["eth_chainId"])
}

func TestTestAdapter_UnknownSigner(t *testing.T) {
	server := newMockRPCServer(t, func(req rpcRequest) (interface{}, *rpcError) {
		return "0x7a69", nil
	})

	driver := newTestBinder(t, server).TestAdapter(common.HexToAddress("0x7e57"), domain.SignerAlice)
	err := driver.WithdrawAll(context.Background(), common.HexToAddress("0x1"), common.HexToAddress("0x2"), common.HexToAddress("0x3"))
	assert.ErrorIs(t, err, domain.ErrUnknownSigner)
}
