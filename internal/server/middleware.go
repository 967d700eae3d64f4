package server

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/mowind/walletrpc-go/internal/errors"
)

// RequestIDHeader 请求ID的HTTP头
const RequestIDHeader = "X-Request-ID"

// AuthMiddleware authenticates requests using Bearer tokens or X-API-Key headers.
func AuthMiddleware(enabled bool, secret string, whitelist []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !enabled {
			c.Next()
			return
		}

		path := c.Request.URL.Path
		for _, whitelistedPath := range whitelist {
			if strings.HasPrefix(path, whitelistedPath) {
				if whitelistedPath == "/" && path != "/" {
					continue
				}
				c.Next()
				return
			}
		}

		// Check Authorization header (Bearer token)
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			// Use constant-time comparison to prevent timing attacks
			if len(parts) == 2 && parts[0] == "Bearer" && subtle.ConstantTimeCompare([]byte(parts[1]), []byte(secret)) == 1 {
				c.Next()
				return
			}
			abortUnauthorized(c)
			return
		}

		// Check X-API-Key header
		apiKey := c.GetHeader("X-API-Key")
		if apiKey != "" {
			if subtle.ConstantTimeCompare([]byte(apiKey), []byte(secret)) == 1 {
				c.Next()
				return
			}
			abortUnauthorized(c)
			return
		}

		abortUnauthorized(c)
	}
}

// abortUnauthorized 返回统一的鉴权失败响应，不泄露失败原因
func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": "authentication failed",
		"code":  http.StatusUnauthorized,
	})
}

// RequestIDMiddleware 为每个请求分配请求ID，沿用客户端传入的 X-Request-ID
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = apperrors.GenerateRequestID()
		}
		c.Request = c.Request.WithContext(apperrors.WithRequestID(c.Request.Context(), requestID))
		c.Header(RequestIDHeader, requestID)
		c.Next()
	}
}

// CORSMiddleware 允许浏览器跨域调用，预检请求直接返回 204
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key, "+RequestIDHeader)
		c.Header("Access-Control-Expose-Headers", RequestIDHeader)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
