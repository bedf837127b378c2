// Package storage provides a pluggable write-only backend abstraction for
// the file destination: a default local-filesystem backend, and an
// optional S3 backend (integration/storage/s3) for deployments that want
// the file destination to land messages in object storage instead.
//
// Filename sanitization (traversal separators, NUL bytes, control
// characters, per-filename length cap) runs in the caller before a key
// ever reaches a Backend. The resolved path/key is then validated by
// ValidatePath, which every Backend.Write implementation calls before
// touching disk or a remote bucket, so the same traversal and length
// rules apply regardless of which backend is configured.
package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// Backend writes data under key. append requests appending to an
// existing object where the backend supports it; backends that cannot
// append (e.g. S3) perform a read-modify-write and document the
// tradeoff.
type Backend interface {
	Write(ctx context.Context, key string, data []byte, appendMode bool) error
}

// maxPathLength matches the reference FileWriter's validate_path, which
// rejects a base dir + filename combination longer than 4096 characters.
const maxPathLength = 4096

// ValidatePath joins baseDir and key, filters out "." and ".." path
// components, and rejects the result if it's too long or still contains
// a literal ".." after normalization -- a belt-and-suspenders check for
// sequences Join's Clean doesn't catch (e.g. a key with an internal NUL
// stripped upstream, or drive-relative tricks on non-Unix filesystems).
// Ported from the reference validate_path, which performs the same two
// checks in the same order.
func ValidatePath(baseDir, key string) (string, error) {
	if len(baseDir)+len(key) > maxPathLength {
		return "", fmt.Errorf("%w: path exceeds maximum length of %d characters", ErrInvalidPath, maxPathLength)
	}

	full := filepath.Join(baseDir, key)

	if strings.Contains(full, "..") {
		return "", fmt.Errorf("%w: path contains invalid sequences", ErrInvalidPath)
	}

	return full, nil
}
