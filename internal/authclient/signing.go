package authclient

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// AuthScheme Authorization 头使用的认证方案
const AuthScheme = "WALLET-AUTH"

// CalculateContentSHA256 计算内容的 SHA256 哈希（base64编码）
func CalculateContentSHA256(data []byte) string {
	hash := sha256.Sum256(data)
	return base64.StdEncoding.EncodeToString(hash[:])
}

// BuildSigningString 构建签名字符串
func BuildSigningString(verb, path, contentSHA256, contentType, date string) string {
	// 格式：VERB\nPath\nContent-SHA256\nContent-Type\nDate
	return fmt.Sprintf("%s\n%s\n%s\n%s\n%s", verb, path, contentSHA256, contentType, date)
}

// CalculateHMACSHA256 计算 HMAC-SHA256 签名（base64编码）
func CalculateHMACSHA256(message, secretKey string) string {
	mac := hmac.New(sha256.New, []byte(secretKey))
	mac.Write([]byte(message))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// BuildAuthorizationHeader 构建 Authorization 头
func BuildAuthorizationHeader(accessKeyID, signature string) string {
	return fmt.Sprintf("%s %s:%s", AuthScheme, accessKeyID, signature)
}
