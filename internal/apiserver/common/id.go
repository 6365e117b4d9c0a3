package common

import (
	"crypto/rand"
	"encoding/hex"
)

// GenerateID 生成带前缀的唯一标识符，格式为 prefix-xxxxxxxxxxxx
func GenerateID(prefix string) string {
	b := make([]byte, 6)
	rand.Read(b)
	return prefix + "-" + hex.EncodeToString(b)
}
