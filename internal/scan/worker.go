package scan

import (
	"context"
	"os"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/michaelscutari/dirstat/internal/entry"
	"github.com/michaelscutari/dirstat/internal/tree"
)

// dirJob is one directory read unit. The dir pointer is carried
// opaquely: workers never touch the tree, they only hand the node back
// with the result so the applier knows where the children belong.
type dirJob struct {
	dir   *tree.DirInfo
	path  string
	depth int
}

// dirResult is the outcome of reading one directory.
type dirResult struct {
	job      dirJob
	children []entry.Meta
	err      error
}

// Worker reads directories and emits their raw child metadata. All
// tree mutation happens elsewhere, in the applier.
type Worker struct {
	id      int
	jobs    <-chan dirJob
	results chan<- dirResult
	errorCh chan<- entry.ScanError
	log     zerolog.Logger
}

// NewWorker creates a new worker.
func NewWorker(id int, jobs <-chan dirJob, results chan<- dirResult, errorCh chan<- entry.ScanError, log zerolog.Logger) *Worker {
	return &Worker{
		id:      id,
		jobs:    jobs,
		results: results,
		errorCh: errorCh,
		log:     log,
	}
}

// Run processes directory jobs until the queue is closed or the
// context is cancelled.
func (w *Worker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-w.jobs:
			if !ok {
				return
			}
			res := w.readDirectory(ctx, job)
			select {
			case w.results <- res:
			case <-ctx.Done():
				return
			}
		}
	}
}

// readDirectory lists one directory and lstats every child. Per-child
// stat failures are sampled to the error channel and the child is
// skipped; a failure to list the directory itself fails the whole job.
func (w *Worker) readDirectory(ctx context.Context, job dirJob) dirResult {
	dirEntries, err := os.ReadDir(job.path)
	if err != nil {
		return dirResult{job: job, err: err}
	}

	children := make([]entry.Meta, 0, len(dirEntries))
	for i, de := range dirEntries {
		// Check for cancellation every 100 entries
		if i%100 == 0 && ctx.Err() != nil {
			return dirResult{job: job, err: ctx.Err()}
		}

		childPath := filepath.Join(job.path, de.Name())

		// Always use Lstat to avoid following symlinks
		info, err := os.Lstat(childPath)
		if err != nil {
			w.log.Debug().Str("path", childPath).Err(err).Msg("lstat failed")
			// Non-blocking send - drop error if channel full (errors are sampled anyway)
			select {
			case w.errorCh <- entry.ScanError{Path: childPath, Message: err.Error()}:
			default:
			}
			continue
		}

		var devID, inode uint64
		var blocks int64
		if stat, ok := info.Sys().(*syscall.Stat_t); ok {
			devID = uint64(stat.Dev)
			inode = stat.Ino
			blocks = stat.Blocks * 512 // st_blocks is in 512-byte units
		}

		children = append(children, entry.Meta{
			Name:    de.Name(),
			Kind:    entry.KindFromMode(info.Mode()),
			Size:    info.Size(),
			Blocks:  blocks,
			ModTime: info.ModTime(),
			DevID:   devID,
			Inode:   inode,
		})
	}

	return dirResult{job: job, children: children}
}
