package lock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrHeld is returned when another process already holds the job lock.
var ErrHeld = errors.New("job lock is held by another process")

// JobLock is an advisory file lock that keeps overlapping cron invocations
// of the same job from running side by side on one host.
type JobLock struct {
	lock *flock.Flock
}

// Acquire takes the lock for name under dir without blocking.
func Acquire(dir, name string) (*JobLock, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create lock dir: %w", err)
	}
	l := flock.New(filepath.Join(dir, "fms-"+name+".lock"))
	ok, err := l.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire %s lock: %w", name, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrHeld, name)
	}
	return &JobLock{lock: l}, nil
}

func (j *JobLock) Path() string {
	return j.lock.Path()
}

func (j *JobLock) Release() error {
	return j.lock.Unlock()
}
