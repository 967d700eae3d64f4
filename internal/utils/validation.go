package utils

import (
	"strings"

	"github.com/umbracle/ethgo"
)

// IsValidEthAddress validates the format of an account address.
//
// An address must:
//   - have the "0x" prefix
//   - be exactly 42 characters long (0x + 40 hex characters)
//   - contain only hexadecimal digits after the prefix
//
// Mixed-case input is accepted without verifying the EIP-55 checksum;
// wallets are not required to return checksummed addresses.
//
// Example:
//
//	IsValidEthAddress("0x9b2055d370f73ec7d8a03e965129118dc8f5bf83") // true
//	IsValidEthAddress("0x9b2055d370f73ec7d8a03e965129118dc8f5bf8")  // false (too short)
func IsValidEthAddress(addr string) bool {
	if len(addr) != 42 || !strings.HasPrefix(addr, "0x") {
		return false
	}

	for _, c := range addr[2:] {
		if !isHexDigit(c) {
			return false
		}
	}

	return true
}

// ChecksumAddress returns the EIP-55 form of a valid address.
// The second result is false when addr is not an address.
func ChecksumAddress(addr string) (string, bool) {
	if !IsValidEthAddress(addr) {
		return "", false
	}
	return ethgo.HexToAddress(addr).String(), true
}

// isHexDigit checks if a rune is a valid hexadecimal digit (0-9, a-f, A-F).
func isHexDigit(c rune) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
