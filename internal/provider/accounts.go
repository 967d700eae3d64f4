package provider

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/umbracle/ethgo"
	"github.com/valyala/fastjson"

	"github.com/mowind/walletrpc-go/internal/utils"
)

const (
	// MethodRequestAccounts 请求账户授权
	MethodRequestAccounts = "eth_requestAccounts"
	// MethodAccounts 查询已授权账户
	MethodAccounts = "eth_accounts"
	// MethodChainID 查询链ID
	MethodChainID = "eth_chainId"
)

var defaultPool fastjson.ParserPool

// RequestAccounts 调用 eth_requestAccounts 并返回校验和格式的账户列表
func RequestAccounts(ctx context.Context, p Provider) ([]ethgo.Address, error) {
	return fetchAccounts(ctx, p, MethodRequestAccounts)
}

// Accounts 调用 eth_accounts 并返回校验和格式的账户列表
func Accounts(ctx context.Context, p Provider) ([]ethgo.Address, error) {
	return fetchAccounts(ctx, p, MethodAccounts)
}

func fetchAccounts(ctx context.Context, p Provider, method string) ([]ethgo.Address, error) {
	result, err := p.Request(ctx, method, []interface{}{})
	if err != nil {
		return nil, err
	}
	return ParseAccounts(result)
}

// ParseAccounts 解析账户数组结果
func ParseAccounts(result json.RawMessage) ([]ethgo.Address, error) {
	parser := defaultPool.Get()
	defer defaultPool.Put(parser)

	v, err := parser.ParseBytes(result)
	if err != nil {
		return nil, InvalidResponseError(fmt.Errorf("failed to parse accounts: %w", err))
	}
	if v.Type() == fastjson.TypeNull {
		return nil, nil
	}

	items, err := v.Array()
	if err != nil {
		return nil, InvalidResponseError(fmt.Errorf("accounts result is not an array: %w", err))
	}

	accounts := make([]ethgo.Address, 0, len(items))
	for i, item := range items {
		raw, err := item.StringBytes()
		if err != nil {
			return nil, InvalidResponseError(fmt.Errorf("account at index %d is not a string", i))
		}
		if !IsAddress(string(raw)) {
			return nil, InvalidResponseError(fmt.Errorf("account at index %d is not an address: %s", i, raw))
		}
		accounts = append(accounts, ethgo.HexToAddress(string(raw)))
	}
	return accounts, nil
}

// ChainID 调用 eth_chainId 并返回十六进制链ID
func ChainID(ctx context.Context, p Provider) (string, error) {
	result, err := p.Request(ctx, MethodChainID, nil)
	if err != nil {
		return "", err
	}
	var chainID string
	if err := json.Unmarshal(result, &chainID); err != nil {
		return "", InvalidResponseError(err)
	}
	return chainID, nil
}

// IsAddress 检查字符串是否为 0x 前缀的 20 字节地址
func IsAddress(s string) bool {
	return utils.IsValidEthAddress(s)
}
