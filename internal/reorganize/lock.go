package reorganize

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

const (
	lockDirectoryCreationErrorTemplateConstant = "unable to create lock directory %s: %w"
	lockAcquisitionErrorTemplateConstant       = "unable to lock %s: %w"
	lockReleaseErrorTemplateConstant           = "unable to release lock %s: %w"
	runInProgressErrorTemplateConstant         = "another favsort run holds the lock at %s"
	lockDirectoryPermissionsConstant           = 0o755
)

// RunInProgressError indicates that another process holds the run lock.
type RunInProgressError struct {
	Path string
}

// Error describes the contended lock.
func (runInProgressError RunInProgressError) Error() string {
	return fmt.Sprintf(runInProgressErrorTemplateConstant, runInProgressError.Path)
}

// RunLock is an exclusive advisory file lock held for the duration of a run.
type RunLock struct {
	path     string
	fileLock *flock.Flock
}

// AcquireRunLock takes the lock at path without blocking. An empty path yields a no-op lock.
func AcquireRunLock(path string) (*RunLock, error) {
	if len(path) == 0 {
		return &RunLock{}, nil
	}

	if directoryError := os.MkdirAll(filepath.Dir(path), lockDirectoryPermissionsConstant); directoryError != nil {
		return nil, fmt.Errorf(lockDirectoryCreationErrorTemplateConstant, filepath.Dir(path), directoryError)
	}

	fileLock := flock.New(path)
	locked, lockError := fileLock.TryLock()
	if lockError != nil {
		return nil, fmt.Errorf(lockAcquisitionErrorTemplateConstant, path, lockError)
	}
	if !locked {
		return nil, RunInProgressError{Path: path}
	}

	return &RunLock{path: path, fileLock: fileLock}, nil
}

// Path returns the lock file location, empty for a no-op lock.
func (runLock *RunLock) Path() string {
	if runLock == nil {
		return ""
	}
	return runLock.path
}

// Release frees the lock. Releasing a nil or no-op lock succeeds.
func (runLock *RunLock) Release() error {
	if runLock == nil || runLock.fileLock == nil {
		return nil
	}
	if unlockError := runLock.fileLock.Unlock(); unlockError != nil {
		return fmt.Errorf(lockReleaseErrorTemplateConstant, runLock.path, unlockError)
	}
	return nil
}
