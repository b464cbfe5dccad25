package filesystem

import (
	"fmt"
	"path/filepath"

	"letitflow-media/domain/media"

	"github.com/gofrs/flock"
)

// LockFileName is created inside a locked output folder
const LockFileName = ".letitflow.lock"

// Locker implements media.DirectoryLocker with advisory file locks
type Locker struct{}

func NewLocker() *Locker {
	return &Locker{}
}

// Lock takes a non-blocking exclusive lock on dir, which must exist.
// The lock file stays behind after unlock; every run must lock the same inode.
func (l *Locker) Lock(dir string) (func() error, error) {
	lock := flock.New(filepath.Join(dir, LockFileName))

	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to lock %s: %w", dir, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", media.ErrOutputLocked, dir)
	}

	return func() error {
		if err := lock.Unlock(); err != nil {
			return fmt.Errorf("failed to unlock %s: %w", dir, err)
		}
		return nil
	}, nil
}

var _ media.DirectoryLocker = (*Locker)(nil)
