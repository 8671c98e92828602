// Package store persists scan reports by scan ID.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Store is a byte-level blob store keyed by scan ID and path.
type Store interface {
	Put(ctx context.Context, scanID, path string, content []byte) error
	Get(ctx context.Context, scanID, path string) ([]byte, error)
	List(ctx context.Context, scanID string) ([]string, error)
	// Scans returns the IDs that have at least one stored path, sorted.
	Scans(ctx context.Context) ([]string, error)
}

var (
	ErrNotFound = errors.New("report not found")
	// ErrInvalidKey is returned for empty or path-escaping scan IDs and paths.
	ErrInvalidKey = errors.New("invalid key")
)

func normalizeKey(scanID, path string) (string, string, error) {
	scanID = strings.TrimSpace(scanID)
	path = strings.TrimLeft(strings.TrimSpace(path), "/")
	if scanID == "" {
		return "", "", fmt.Errorf("%w: scan_id is required", ErrInvalidKey)
	}
	if strings.ContainsAny(scanID, `/\`) || strings.Contains(scanID, "..") {
		return "", "", fmt.Errorf("%w: scan_id %q must not contain path separators or ..", ErrInvalidKey, scanID)
	}
	if path == "" {
		return "", "", fmt.Errorf("%w: path is required", ErrInvalidKey)
	}
	if strings.Contains(path, "..") {
		return "", "", fmt.Errorf("%w: path %q must not contain ..", ErrInvalidKey, path)
	}
	return scanID, path, nil
}

func normalizeID(scanID string) (string, error) {
	id, _, err := normalizeKey(scanID, "_")
	return id, err
}
