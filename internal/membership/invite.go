package membership

import (
	"crypto/rand"
	"fmt"
	"strings"
)

const (
	inviteCodeLength   = 6
	inviteCodeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// NewInviteCode returns a random 6-character uppercase base-36 code.
func NewInviteCode() (string, error) {
	// 252 is the largest multiple of 36 below 256; higher bytes are rejected
	// so every symbol is equally likely.
	const limit = 252
	var sb strings.Builder
	buf := make([]byte, 16)
	for sb.Len() < inviteCodeLength {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("read random: %w", err)
		}
		for _, b := range buf {
			if b >= limit {
				continue
			}
			sb.WriteByte(inviteCodeAlphabet[int(b)%len(inviteCodeAlphabet)])
			if sb.Len() == inviteCodeLength {
				break
			}
		}
	}
	return sb.String(), nil
}

// NormalizeCode makes user-typed codes comparable to stored ones.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func validCode(code string) bool {
	if len(code) != inviteCodeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		if !strings.ContainsRune(inviteCodeAlphabet, rune(code[i])) {
			return false
		}
	}
	return true
}
