package cmd

import (
	"os"

	"github.com/gofrs/flock"

	"github.com/soundseeker/seekerctl/internal/config"
)

var instanceLock *flock.Flock

// AcquireLock takes the single-viewer lock. It reports false when another
// dashboard already holds it.
func AcquireLock() (bool, error) {
	if err := os.MkdirAll(config.GetSeekerDir(), 0o755); err != nil {
		return false, err
	}
	instanceLock = flock.New(config.GetLockPath())
	return instanceLock.TryLock()
}

// ReleaseLock releases the lock taken by AcquireLock.
func ReleaseLock() {
	if instanceLock != nil {
		_ = instanceLock.Unlock()
		instanceLock = nil
	}
}
