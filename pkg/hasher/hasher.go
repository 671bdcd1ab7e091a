package hasher

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
	"strings"
)

// HashAlgorithms lists the supported hashing algorithms.
var HashAlgorithms = []string{"md5", "sha1", "sha256", "sha512"}

// IsValidHashAlgo reports whether algo names a supported algorithm.
func IsValidHashAlgo(algo string) bool {
	for _, valid := range HashAlgorithms {
		if strings.EqualFold(algo, valid) {
			return true
		}
	}
	return false
}

func newHash(algo string) (hash.Hash, error) {
	switch strings.ToLower(algo) {
	case "md5":
		return md5.New(), nil
	case "sha1":
		return sha1.New(), nil
	case "sha256":
		return sha256.New(), nil
	case "sha512":
		return sha512.New(), nil
	default:
		return nil, fmt.Errorf("unsupported hash algorithm: %s", algo)
	}
}

// GenerateHashFromReader hashes everything r yields with the given algorithm
// and returns the lowercase hex digest.
func GenerateHashFromReader(r io.Reader, algo string) (string, error) {
	h, err := newHash(algo)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// GenerateHash hashes the file at filePath with the given algorithm.
func GenerateHash(filePath, algo string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	return GenerateHashFromReader(file, algo)
}
