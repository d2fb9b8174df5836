package tokenstore

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Backend is one persistence layer for token material.
//
// Cookie-like backends honour maxAge; backends without expiry semantics
// ignore it. A maxAge of zero means "no explicit expiry".
type Backend interface {
	Get(key string) (string, bool)
	Set(key, value string, maxAge time.Duration) error
	Delete(key string) error
}

// epoch is the expiry written when a cookie is cleared (Thu, 01 Jan 1970 00:00:00 GMT).
var epoch = time.Unix(0, 0).UTC()

// writeFileAtomic replaces path with data via a temp file and rename so that a
// crash never leaves a half written store behind.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("[tokenstore writeFileAtomic] create dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("[tokenstore writeFileAtomic] create temp: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("[tokenstore writeFileAtomic] write: %w", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return fmt.Errorf("[tokenstore writeFileAtomic] chmod: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("[tokenstore writeFileAtomic] close: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("[tokenstore writeFileAtomic] rename: %w", err)
	}
	return nil
}
