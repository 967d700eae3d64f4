package catalog

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/valyala/fastjson"

	"github.com/mowind/walletrpc-go/internal/utils"
)

var parserPool fastjson.ParserPool

// Hydrate 将参数中所有等于占位地址的字符串替换为 address，返回新的参数。
// address 为空时参数原样返回。
func Hydrate(params json.RawMessage, address string) (json.RawMessage, error) {
	if len(params) == 0 {
		return json.RawMessage(`[]`), nil
	}
	if address == "" {
		return params, nil
	}
	if !utils.IsValidEthAddress(address) {
		return nil, fmt.Errorf("invalid account address: %s", address)
	}

	parser := parserPool.Get()
	defer parserPool.Put(parser)

	v, err := parser.ParseBytes(params)
	if err != nil {
		return nil, fmt.Errorf("failed to parse params: %w", err)
	}

	var arena fastjson.Arena
	replacement := arena.NewString(address)
	replace(v, replacement)

	return json.RawMessage(v.MarshalTo(nil)), nil
}

// replace 递归替换占位地址
func replace(v *fastjson.Value, replacement *fastjson.Value) {
	switch v.Type() {
	case fastjson.TypeArray:
		items, _ := v.Array()
		for i, item := range items {
			if isPlaceholder(item) {
				v.SetArrayItem(i, replacement)
				continue
			}
			replace(item, replacement)
		}
	case fastjson.TypeObject:
		obj, _ := v.Object()
		var keys []string
		obj.Visit(func(key []byte, item *fastjson.Value) {
			if isPlaceholder(item) {
				keys = append(keys, string(key))
				return
			}
			replace(item, replacement)
		})
		for _, key := range keys {
			obj.Set(key, replacement)
		}
	}
}

func isPlaceholder(v *fastjson.Value) bool {
	if v.Type() != fastjson.TypeString {
		return false
	}
	return strings.EqualFold(string(v.GetStringBytes()), PlaceholderAddress)
}

// UsesAccount 返回参数中是否包含占位地址
func UsesAccount(params json.RawMessage) bool {
	return strings.Contains(strings.ToLower(string(params)), PlaceholderAddress)
}

// HydratedTest 返回替换占位地址后的测试参数
func HydratedTest(methodID, testID, address string) (Method, Test, error) {
	m, ok := Lookup(methodID)
	if !ok {
		return Method{}, Test{}, fmt.Errorf("unknown method: %s", methodID)
	}
	t, ok := m.Test(testID)
	if !ok {
		return Method{}, Test{}, fmt.Errorf("unknown test %s for method %s", testID, methodID)
	}
	params, err := Hydrate(t.Params, address)
	if err != nil {
		return Method{}, Test{}, err
	}
	t.Params = params
	return m, t, nil
}
