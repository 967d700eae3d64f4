package connection

import (
	apperrors "github.com/mowind/walletrpc-go/internal/errors"
	"github.com/mowind/walletrpc-go/internal/jsonrpc"
)

// Method 连接方式标识
type Method string

const (
	// MethodRainbowKit 声明式连接组件，自行管理连接状态
	MethodRainbowKit Method = "rainbowkit"
	// MethodPrivy 嵌入式认证，代理到用户的外部钱包
	MethodPrivy Method = "privy"
	// MethodInjected 直接使用注入式 provider
	MethodInjected Method = "injected"

	// DefaultMethod 存储缺失或无效时使用的连接方式
	DefaultMethod = MethodRainbowKit
)

// IsDeclarative 返回该方式是否由连接组件自行管理连接
func (m Method) IsDeclarative() bool {
	return m == MethodRainbowKit
}

// String 实现 fmt.Stringer
func (m Method) String() string {
	return string(m)
}

// Descriptor 连接方式的静态描述
type Descriptor struct {
	ID          Method `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Available   bool   `json:"available"`
}

// Environment 描述启动时探测到的运行环境
type Environment struct {
	// KitAvailable 连接组件端点已配置
	KitAvailable bool
	// EmbeddedAvailable 嵌入式认证服务已配置
	EmbeddedAvailable bool
	// InjectedAvailable 注入式 provider 已配置
	InjectedAvailable bool
}

// Registry 支持的连接方式列表。可用性在创建时计算一次，之后不再变化
type Registry struct {
	descriptors []Descriptor
	byID        map[Method]int
}

// NewRegistry 按环境创建连接方式列表
func NewRegistry(env Environment) *Registry {
	descriptors := []Descriptor{
		{
			ID:          MethodRainbowKit,
			Name:        "RainbowKit",
			Description: "Connect with the wallet connector kit",
			Icon:        "🌈",
			Available:   env.KitAvailable,
		},
		{
			ID:          MethodPrivy,
			Name:        "Privy",
			Description: "Sign in with the embedded auth provider and use an external wallet",
			Icon:        "🔐",
			Available:   env.EmbeddedAvailable,
		},
		{
			ID:          MethodInjected,
			Name:        "Injected Wallet",
			Description: "Use the injected browser wallet directly",
			Icon:        "🦊",
			Available:   env.InjectedAvailable,
		},
	}

	byID := make(map[Method]int, len(descriptors))
	for i, d := range descriptors {
		byID[d.ID] = i
	}
	return &Registry{descriptors: descriptors, byID: byID}
}

// ListMethods 返回有序的连接方式描述（副本）
func (r *Registry) ListMethods() []Descriptor {
	out := make([]Descriptor, len(r.descriptors))
	copy(out, r.descriptors)
	return out
}

// Lookup 按标识查找描述
func (r *Registry) Lookup(m Method) (Descriptor, bool) {
	i, ok := r.byID[m]
	if !ok {
		return Descriptor{}, false
	}
	return r.descriptors[i], true
}

// IsKnown 检查标识是否属于已知集合
func (r *Registry) IsKnown(m Method) bool {
	_, ok := r.byID[m]
	return ok
}

// Parse 将字符串解析为已知的连接方式
func (r *Registry) Parse(s string) (Method, error) {
	m := Method(s)
	if !r.IsKnown(m) {
		return "", invalidMethod(s)
	}
	return m, nil
}

func invalidMethod(s string) error {
	return apperrors.Newf(apperrors.ErrorTypeInvalidMethod, jsonrpc.CodeInvalidParams,
		"Invalid connection method %q", s).WithContext("method", s)
}
