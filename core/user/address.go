package user

import (
	"encoding/hex"
	"errors"
	"strings"

	"golang.org/x/crypto/sha3"
)

var ErrInvalidAddress = errors.New("invalid wallet address")

// ChecksumAddress validates an Ethereum address and returns its EIP-55 mixed-case form.
// All-lowercase and all-uppercase addresses are accepted as is; mixed-case ones must carry a valid checksum.
func ChecksumAddress(addr string) (string, error) {
	addr = strings.TrimSpace(addr)
	if len(addr) != 42 || !(strings.HasPrefix(addr, "0x") || strings.HasPrefix(addr, "0X")) {
		return "", ErrInvalidAddress
	}
	body := addr[2:]
	if _, err := hex.DecodeString(body); err != nil {
		return "", ErrInvalidAddress
	}

	checksummed := "0x" + checksum(strings.ToLower(body))
	lower, upper := strings.ToLower(body), strings.ToUpper(body)
	if body != lower && body != upper && body != checksummed[2:] {
		return "", ErrInvalidAddress
	}
	return checksummed, nil
}

func IsAddress(addr string) bool {
	_, err := ChecksumAddress(addr)
	return err == nil
}

// checksum upper-cases every hex letter whose matching keccak256 nibble is >= 8.
func checksum(lowerHex string) string {
	h := sha3.NewLegacyKeccak256()
	_, _ = h.Write([]byte(lowerHex))
	hash := hex.EncodeToString(h.Sum(nil))

	out := []byte(lowerHex)
	for i, c := range out {
		if c >= 'a' && c <= 'f' && hash[i] >= '8' {
			out[i] = c - 32
		}
	}
	return string(out)
}
