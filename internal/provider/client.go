package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/mowind/walletrpc-go/internal/jsonrpc"
	"github.com/mowind/walletrpc-go/internal/utils"
)

// HTTPProvider 通过 HTTP JSON-RPC 与钱包端点通信的 provider
type HTTPProvider struct {
	endpoint   string
	httpClient *http.Client
	nextID     atomic.Uint64
}

// NewHTTPProvider 创建新的 HTTP provider
func NewHTTPProvider(endpoint string) *HTTPProvider {
	return &HTTPProvider{
		endpoint: endpoint,
		httpClient: utils.NewHTTPClient(30 * time.Second),
	}
}

// Request 发送单个调用并返回 result。钱包返回的错误以 *jsonrpc.Error 形式返回
func (p *HTTPProvider) Request(ctx context.Context, method string, params interface{}) (json.RawMessage, error) {
	req, err := jsonrpc.NewRequest(p.nextID.Add(1), method, params)
	if err != nil {
		return nil, WrapError(err, ErrorCodeRequestFailed, "failed to build request")
	}

	resp, err := p.ForwardRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, resp.Error
	}
	if !compareIDs(req.ID, resp.ID) {
		return nil, IDMismatchError(req.ID, resp.ID)
	}
	return resp.Result, nil
}

// ForwardRequest 转发JSON-RPC请求到钱包端点
func (p *HTTPProvider) ForwardRequest(ctx context.Context, req *jsonrpc.Request) (*jsonrpc.Response, error) {
	respBody, err := p.post(ctx, req)
	if err != nil {
		return nil, err
	}

	var jsonResp jsonrpc.Response
	if err := json.Unmarshal(respBody, &jsonResp); err != nil {
		return nil, InvalidResponseError(err)
	}

	// 响应缺少ID时沿用请求ID
	if jsonResp.ID == nil && req.ID != nil {
		jsonResp.ID = req.ID
	}

	return &jsonResp, nil
}

// ForwardBatchRequest 转发批量JSON-RPC请求到钱包端点
func (p *HTTPProvider) ForwardBatchRequest(ctx context.Context, requests []jsonrpc.Request) ([]jsonrpc.Response, error) {
	respBody, err := p.post(ctx, requests)
	if err != nil {
		return nil, err
	}

	var jsonResponses []jsonrpc.Response
	if err := json.Unmarshal(respBody, &jsonResponses); err != nil {
		// 如果不是数组，尝试解析为单个响应
		var singleResp jsonrpc.Response
		if err := json.Unmarshal(respBody, &singleResp); err != nil {
			return nil, InvalidResponseError(err)
		}
		jsonResponses = []jsonrpc.Response{singleResp}
	}

	if len(jsonResponses) != len(requests) {
		return nil, BatchSizeMismatchError(len(requests), len(jsonResponses))
	}

	for i := range jsonResponses {
		if jsonResponses[i].ID == nil && requests[i].ID != nil {
			jsonResponses[i].ID = requests[i].ID
		}
	}

	return jsonResponses, nil
}

// post 发送请求体并返回原始响应
func (p *HTTPProvider) post(ctx context.Context, payload interface{}) ([]byte, error) {
	reqData, err := json.Marshal(payload)
	if err != nil {
		return nil, WrapError(err, ErrorCodeRequestFailed, "failed to marshal request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(reqData))
	if err != nil {
		return nil, WrapError(err, ErrorCodeRequestFailed, "failed to create HTTP request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, WrapError(err, ErrorCodeTimeout, "request to wallet provider timed out")
		}
		return nil, ConnectionError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, WrapError(err, ErrorCodeInvalidResponse, "failed to read response body")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, RequestError(fmt.Errorf("wallet provider returned status %d: %s",
			resp.StatusCode, string(respBody)))
	}

	return respBody, nil
}

// compareIDs 比较两个JSON-RPC ID值是否相等
func compareIDs(id1, id2 interface{}) bool {
	if id1 == nil && id2 == nil {
		return true
	}
	if id1 == nil || id2 == nil {
		return false
	}
	return fmt.Sprintf("%v", id1) == fmt.Sprintf("%v", id2)
}

// Endpoint 获取钱包端点URL
func (p *HTTPProvider) Endpoint() string {
	return p.endpoint
}

// Close 关闭空闲连接
func (p *HTTPProvider) Close() error {
	p.httpClient.CloseIdleConnections()
	return nil
}
