package health

import (
	"context"
	"os"
	"path/filepath"
	"runtime"

	"github.com/go-faster/errors"
)

// GoroutineCountCheck fails when the process exceeds max goroutines, a cheap
// proxy for leaked background work.
func GoroutineCountCheck(max int) CheckFunc {
	return func(_ context.Context) error {
		if n := runtime.NumGoroutine(); n > max {
			return errors.Errorf("too many goroutines: %d > %d", n, max)
		}
		return nil
	}
}

// DirWritableCheck fails when a probe file cannot be written in dir. Used as
// the readiness check for the snapshot data directory.
func DirWritableCheck(dir string) CheckFunc {
	return func(_ context.Context) error {
		probe := filepath.Join(dir, ".health-probe")
		if err := os.WriteFile(probe, []byte("ok"), 0o644); err != nil {
			return errors.Wrap(err, "data dir not writable")
		}
		return os.Remove(probe)
	}
}
