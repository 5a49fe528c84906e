package scratch

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"redub/internal/logging"
)

const (
	// JobPrefix starts the name of every job directory.
	JobPrefix = "job-"
	// LockFileName is the flock file held for the lifetime of a job.
	LockFileName = ".lock"
)

// Job is one dubbing run's exclusive working directory.
type Job struct {
	ID  string
	Dir string

	lock   *flock.Flock
	logger *slog.Logger
}

// NewJob creates <root>/job-<uuid> and locks it for the caller.
func NewJob(root string, logger *slog.Logger) (*Job, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, fmt.Errorf("scratch root is empty")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create scratch root: %w", err)
	}
	id := uuid.NewString()
	dir := filepath.Join(root, JobPrefix+id)
	if err := os.Mkdir(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create job dir: %w", err)
	}
	lock := flock.New(filepath.Join(dir, LockFileName))
	ok, err := lock.TryLock()
	if err != nil || !ok {
		_ = os.RemoveAll(dir)
		if err == nil {
			err = fmt.Errorf("lock held by another process")
		}
		return nil, fmt.Errorf("lock job dir: %w", err)
	}
	job := &Job{
		ID:     id,
		Dir:    dir,
		lock:   lock,
		logger: logging.NewComponentLogger(logger, "scratch"),
	}
	job.logger.Debug("job directory created", logging.String(logging.FieldJobID, id), logging.String("path", dir))
	return job, nil
}

// Path returns name joined onto the job directory.
func (j *Job) Path(name string) string {
	return filepath.Join(j.Dir, name)
}

// Release unlocks the job and, unless keep is set, removes its directory.
func (j *Job) Release(keep bool) error {
	if j == nil {
		return nil
	}
	var removeErr error
	if !keep {
		removeErr = os.RemoveAll(j.Dir)
	}
	if err := j.lock.Unlock(); err != nil && removeErr == nil {
		return fmt.Errorf("unlock job dir: %w", err)
	}
	if removeErr != nil {
		logging.WarnWithContext(j.logger, "failed to remove job directory", "scratch_cleanup_failed",
			logging.String("path", j.Dir),
			logging.Error(removeErr),
			logging.String(logging.FieldErrorHint, "run redub clean"),
			logging.String(logging.FieldImpact, "disk space not reclaimed"),
		)
		return fmt.Errorf("remove job dir: %w", removeErr)
	}
	return nil
}

// locked reports whether another holder owns the job directory's lock.
func locked(dir string) bool {
	path := filepath.Join(dir, LockFileName)
	if _, err := os.Stat(path); err != nil {
		return false
	}
	probe := flock.New(path)
	ok, err := probe.TryLock()
	if err != nil || !ok {
		return true
	}
	_ = probe.Unlock()
	return false
}
