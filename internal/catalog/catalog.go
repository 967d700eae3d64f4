// Package catalog 钱包 JSON-RPC 方法目录。
// 每个条目包含方法说明、示例参数和可直接发送给钱包的测试用例，
// 参数中的占位地址在发送前替换为当前连接的账户。
package catalog

import (
	"encoding/json"
	"sort"
	"strings"
)

// PlaceholderAddress 示例参数中代表当前账户的占位地址
const PlaceholderAddress = "0x9b2055d370f73ec7d8a03e965129118dc8f5bf83"

// Category 方法分类
type Category string

const (
	CategoryWallet      Category = "wallet"
	CategoryNetwork     Category = "network"
	CategoryTransaction Category = "transaction"
	CategorySigning     Category = "signing"
	CategoryContract    Category = "contract"
	CategoryAsset       Category = "asset"
	CategoryDeprecated  Category = "deprecated"
)

// CategoryInfo 分类的展示信息
type CategoryInfo struct {
	ID   Category `json:"id"`
	Name string   `json:"name"`
	Icon string   `json:"icon"`
}

// WalletType 方法适用的账户类型
type WalletType string

const (
	WalletTypeEOA           WalletType = "EOA"
	WalletTypeSmartContract WalletType = "Smart Contract"
)

// TestMode 测试用例的执行方式，格式为 分类:动作
type TestMode string

const (
	ModeSignLegacy  TestMode = "transaction:sign-legacy"
	ModeSignEIP1559 TestMode = "transaction:sign-eip1559"
	ModeSend        TestMode = "transaction:send"
	ModePersonal    TestMode = "signing:personal"
	ModeEthSign     TestMode = "signing:eth_sign"
)

// Kind 返回模式的分类部分
func (m TestMode) Kind() string {
	kind, _, _ := strings.Cut(string(m), ":")
	return kind
}

// Action 返回模式的动作部分
func (m TestMode) Action() string {
	_, action, _ := strings.Cut(string(m), ":")
	return action
}

// Test 方法的一个预置测试用例
type Test struct {
	ID          string          `json:"id"`
	Label       string          `json:"label"`
	Description string          `json:"description,omitempty"`
	Params      json.RawMessage `json:"params"`
	Mode        TestMode        `json:"mode,omitempty"`
}

// Method 目录中的一个 JSON-RPC 方法
type Method struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Method        string          `json:"method"`
	Description   string          `json:"description"`
	Category      Category        `json:"category"`
	WalletTypes   []WalletType    `json:"walletTypes"`
	DocURL        string          `json:"docUrl,omitempty"`
	ExampleParams json.RawMessage `json:"exampleParams,omitempty"`
	Tests         []Test          `json:"tests,omitempty"`
}

// Test 按ID查找测试用例
func (m Method) Test(id string) (Test, bool) {
	for _, t := range m.Tests {
		if t.ID == id {
			return t, true
		}
	}
	return Test{}, false
}

// Deprecated 返回方法是否已废弃
func (m Method) Deprecated() bool {
	return m.Category == CategoryDeprecated
}

var index = func() map[string]int {
	idx := make(map[string]int, len(methods))
	for i, m := range methods {
		idx[m.ID] = i
	}
	return idx
}()

// All 返回全部方法，按目录顺序
func All() []Method {
	out := make([]Method, len(methods))
	copy(out, methods)
	return out
}

// Lookup 按ID查找方法
func Lookup(id string) (Method, bool) {
	i, ok := index[id]
	if !ok {
		return Method{}, false
	}
	return methods[i], true
}

// ByCategory 返回指定分类下的方法
func ByCategory(c Category) []Method {
	var out []Method
	for _, m := range methods {
		if m.Category == c {
			out = append(out, m)
		}
	}
	return out
}

// Categories 返回分类列表，按展示顺序
func Categories() []CategoryInfo {
	out := make([]CategoryInfo, len(categories))
	copy(out, categories)
	return out
}

// Search 按名称、方法名或描述做不区分大小写的子串匹配，结果按方法名排序
func Search(query string) []Method {
	return Filter(methods, query)
}

// Filter 在给定方法中做与 Search 相同的匹配
func Filter(in []Method, query string) []Method {
	q := strings.ToLower(strings.TrimSpace(query))
	var out []Method
	for _, m := range in {
		if q == "" ||
			strings.Contains(strings.ToLower(m.Method), q) ||
			strings.Contains(strings.ToLower(m.Name), q) ||
			strings.Contains(strings.ToLower(m.Description), q) {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Method < out[j].Method })
	return out
}
