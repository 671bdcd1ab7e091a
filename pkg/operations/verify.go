package operations

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"atelier/client"
	"atelier/pkg/hasher"
	"atelier/pkg/pool"
)

// VerifyStatus classifies the outcome of checking one attachment.
type VerifyStatus string

const (
	StatusOK         VerifyStatus = "ok"
	StatusMissing    VerifyStatus = "missing"
	StatusModified   VerifyStatus = "modified"
	StatusSkipped    VerifyStatus = "skipped"
	StatusUnreadable VerifyStatus = "unreadable"
)

// VerifyResult describes the outcome for one attachment.
type VerifyResult struct {
	Name   string
	Status VerifyStatus
	Err    error
}

// VerifyDownloads checks the local copies of a task's attachments against
// the checksums in the manifest, hashing up to numThreads files in parallel.
// Results come back sorted by file name. The returned error covers files
// that could not be read at all; a mismatch is a result, not an error.
func VerifyDownloads(ctx context.Context, files []client.TaskFile, dir, algo string, numThreads int) ([]VerifyResult, error) {
	if !hasher.IsValidHashAlgo(algo) {
		return nil, fmt.Errorf("unsupported hash algorithm: %s", algo)
	}

	var (
		mu      sync.Mutex
		results []VerifyResult
	)
	errs := pool.Run(ctx, files, numThreads, func(ctx context.Context, file client.TaskFile) error {
		res := verifyOne(file, dir, algo)
		mu.Lock()
		results = append(results, res)
		mu.Unlock()
		return res.Err
	})

	sort.Slice(results, func(i, j int) bool { return results[i].Name < results[j].Name })

	if len(errs) > 0 {
		return results, fmt.Errorf("%d of %d files could not be read: %w", len(errs), len(files), errors.Join(errs...))
	}
	return results, nil
}

func verifyOne(file client.TaskFile, dir, algo string) VerifyResult {
	res := VerifyResult{Name: file.Name}

	if strings.TrimSpace(file.Checksum) == "" {
		res.Status = StatusSkipped
		return res
	}

	path := filepath.Join(dir, filepath.Base(file.Name))
	digest, err := hasher.GenerateHash(path, algo)
	if err != nil {
		if os.IsNotExist(err) {
			res.Status = StatusMissing
			return res
		}
		res.Status = StatusUnreadable
		res.Err = fmt.Errorf("failed to hash %s: %w", path, err)
		return res
	}

	if strings.EqualFold(digest, file.Checksum) {
		res.Status = StatusOK
	} else {
		res.Status = StatusModified
	}
	return res
}
