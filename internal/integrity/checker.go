// Package integrity decides whether a local file already satisfies a record.
package integrity

import (
	"crypto/md5" // #nosec G401 -- published dataset checksums are MD5
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/quarrydata/quarry/internal/errs"
	"github.com/quarrydata/quarry/internal/models"
	"github.com/quarrydata/quarry/internal/utils"
)

// Checker verifies local files against their declared checksums.
type Checker struct{}

// New returns a Checker.
func New() *Checker { return &Checker{} }

// Exists reports whether record.LocalPath holds valid content: the path
// exists, is a regular file, and its MD5 hash equals the declared hash.
// A wrong hash is a miss, not an error; the caller re-fetches. A directory
// (or any non-regular entry) at the path is a hard error.
func (c *Checker) Exists(record models.FileRecord) (bool, error) {
	info, err := os.Stat(record.LocalPath)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", record.LocalPath, err)
	}
	if !info.Mode().IsRegular() {
		return false, errs.NotAFile(record.LocalPath)
	}

	sum, err := HashFile(record.LocalPath)
	if err != nil {
		return false, err
	}
	return sum == record.Hash, nil
}

// HashFile returns the hex MD5 digest of the file's content.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer utils.Close(f)

	h := md5.New() // #nosec G401
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
