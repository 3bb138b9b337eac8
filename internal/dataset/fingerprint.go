package dataset

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"

	"github.com/salespulse/salespulse/internal/common"
)

// Fingerprint hashes the file contents at path. The cache layer compares
// fingerprints to decide whether a stored dataset still matches its source.
func Fingerprint(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrDataSource, err)
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("%w: hashing %s: %v", common.ErrDataSource, path, err)
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}
