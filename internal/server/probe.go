package server

import (
	"context"
	"fmt"

	ethgojsonrpc "github.com/umbracle/ethgo/jsonrpc"
)

// ChainProbe 查询钱包端点当前的链ID
type ChainProbe interface {
	ChainID(ctx context.Context) (string, error)
}

// EthProbe 使用 ethgo JSON-RPC 客户端探测端点
type EthProbe struct {
	endpoint string
}

// NewEthProbe 创建端点探测器
func NewEthProbe(endpoint string) *EthProbe {
	return &EthProbe{endpoint: endpoint}
}

// ChainID 返回十六进制链ID
func (p *EthProbe) ChainID(ctx context.Context) (string, error) {
	client, err := ethgojsonrpc.NewClient(p.endpoint)
	if err != nil {
		return "", fmt.Errorf("failed to create RPC client: %v", err)
	}
	defer func() {
		_ = client.Close()
	}()

	type result struct {
		chainID string
		err     error
	}
	done := make(chan result, 1)
	go func() {
		id, err := client.Eth().ChainID()
		if err != nil {
			done <- result{err: err}
			return
		}
		done <- result{chainID: fmt.Sprintf("0x%x", id)}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.chainID, r.err
	}
}
