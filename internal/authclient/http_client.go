package authclient

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mowind/walletrpc-go/internal/config"
	"github.com/mowind/walletrpc-go/internal/utils"
)

// HTTPClient is an HTTP client that signs every request for the
// embedded auth service with HMAC-SHA256.
//
// The signature covers the verb, the request path, the body hash,
// the content type and the GMT date, so replays against other
// endpoints are rejected by the service.
type HTTPClient struct {
	cfg        *config.EmbeddedConfig
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewHTTPClient creates a signing client with a 30 second timeout.
func NewHTTPClient(cfg *config.EmbeddedConfig, logger *logrus.Logger) *HTTPClient {
	return &HTTPClient{
		cfg:        cfg,
		httpClient: utils.NewHTTPClient(30 * time.Second),
		logger:     logger,
	}
}

// SignRequest 按认证服务规范为请求签名
func (c *HTTPClient) SignRequest(req *http.Request, body []byte) error {
	if c.cfg.AccessKeyID == "" || c.cfg.SecretKey == "" {
		return fmt.Errorf("embedded auth credentials are not configured")
	}

	date := time.Now().UTC().Format(http.TimeFormat)
	contentSHA256 := CalculateContentSHA256(body)

	contentType := req.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/json"
	}

	signingString := BuildSigningString(req.Method, req.URL.Path, contentSHA256, contentType, date)
	signature := CalculateHMACSHA256(signingString, c.cfg.SecretKey)

	req.Header.Set("Authorization", BuildAuthorizationHeader(c.cfg.AccessKeyID, signature))
	req.Header.Set("Date", date)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-App-ID", c.cfg.AppID)
	return nil
}

// Do signs and executes the request.
func (c *HTTPClient) Do(req *http.Request) (*http.Response, error) {
	fields := logrus.Fields{
		"method": req.Method,
		"url":    req.URL.String(),
	}
	c.logger.WithFields(fields).Debug("Executing auth service request")

	var body []byte
	if req.Body != nil {
		var err error
		body, err = io.ReadAll(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read request body: %w", err)
		}
		req.Body = io.NopCloser(bytes.NewReader(body))
	}

	if err := c.SignRequest(req, body); err != nil {
		c.logger.WithFields(fields).WithError(err).Error("Failed to sign request")
		return nil, fmt.Errorf("failed to sign request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WithFields(fields).WithError(err).Error("Auth service request failed")
		return nil, err
	}

	c.logger.WithFields(fields).WithField("status_code", resp.StatusCode).Debug("Auth service request completed")
	return resp, nil
}

// HTTPClientInterface defines the signing transport used by Client.
type HTTPClientInterface interface {
	SignRequest(req *http.Request, body []byte) error
	Do(req *http.Request) (*http.Response, error)
}

// VerifyInterfaceImplementation 验证接口实现
var _ HTTPClientInterface = (*HTTPClient)(nil)
