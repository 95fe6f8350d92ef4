package domain

// AnvilInstance represents a local anvil node, optionally forking a live network
type AnvilInstance struct {
	Name            string `json:"name"`
	Port            string `json:"port"`
	ChainID         string `json:"chainId,omitempty"`
	ForkURL         string `json:"forkUrl,omitempty"`
	ForkBlockNumber uint64 `json:"forkBlockNumber,omitempty"`
	PidFile         string `json:"pidFile"`
	LogFile         string `json:"logFile"`
}

// IsFork reports whether the instance forks a remote chain
func (a *AnvilInstance) IsFork() bool {
	return a.ForkURL != ""
}

// AnvilStatus represents the status of an anvil instance
type AnvilStatus struct {
	Running     bool   `json:"running"`
	PID         int    `json:"pid,omitempty"`
	RPCURL      string `json:"rpcUrl,omitempty"`
	LogFile     string `json:"logFile"`
	RPCHealthy  bool   `json:"rpcHealthy"`
	ChainID     uint64 `json:"chainId,omitempty"`
	BlockNumber uint64 `json:"blockNumber,omitempty"`
	Error       string `json:"error,omitempty"`
}
