package scan

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/michaelscutari/dirstat/internal/entry"
	"github.com/michaelscutari/dirstat/internal/logging"
	"github.com/michaelscutari/dirstat/internal/tree"
)

// Scanner coordinates the filesystem scan that populates a tree.
//
// Workers only perform I/O; every tree mutation and every read-job
// transition happens on the applier loop inside Run. That single-writer
// discipline is what the tree package relies on in place of locks.
type Scanner struct {
	opts    *Options
	tree    *tree.Tree
	rootDev uint64
	log     zerolog.Logger

	jobQueue chan dirJob
	resultCh chan dirResult
	errorCh  chan entry.ScanError

	// Applier-owned state. Never touched by workers.
	backlog     []dirJob
	outstanding map[*tree.DirInfo]struct{}
	inFlight    int
	sampled     []entry.ScanError

	wg        sync.WaitGroup
	closeOnce sync.Once

	// Progress tracking (atomic)
	fileCount  int64
	dirCount   int64
	errorCount int64
	totalBytes int64
}

// Progress holds current scan progress.
type Progress struct {
	Files      int64
	Dirs       int64
	Errors     int64
	TotalBytes int64
}

// NewScanner creates a new scanner.
func NewScanner(opts *Options) *Scanner {
	if opts == nil {
		opts = DefaultOptions()
	}
	queueSize := opts.Workers * 1024
	if queueSize < 8192 {
		queueSize = 8192
	}
	resultChSize := opts.Workers * 8
	if resultChSize < 64 {
		resultChSize = 64
	}
	return &Scanner{
		opts:        opts,
		log:         logging.Component("scan"),
		jobQueue:    make(chan dirJob, queueSize),
		resultCh:    make(chan dirResult, resultChSize),
		errorCh:     make(chan entry.ScanError, 1000),
		outstanding: make(map[*tree.DirInfo]struct{}),
	}
}

// Run scans root and populates t, returning the root directory node.
// On cancellation the partially built tree is left in place with every
// outstanding directory (and its ancestors) marked aborted, and the
// context error is returned alongside the root.
func (s *Scanner) Run(ctx context.Context, root string, t *tree.Tree) (*tree.DirInfo, error) {
	s.tree = t

	// Create cancellable context for max-errors abort
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	rootInfo, err := os.Lstat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to stat root: %w", err)
	}
	if !rootInfo.IsDir() {
		return nil, fmt.Errorf("scan root %q is not a directory", root)
	}

	var rootInode uint64
	var rootBlocks int64
	if stat, ok := rootInfo.Sys().(*syscall.Stat_t); ok {
		s.rootDev = uint64(stat.Dev)
		rootInode = stat.Ino
		rootBlocks = stat.Blocks * 512
	}

	rootDir := tree.NewDirInfo(t, nil, entry.Meta{
		Name:    root,
		Kind:    entry.KindDir,
		Size:    rootInfo.Size(),
		Blocks:  rootBlocks,
		ModTime: rootInfo.ModTime(),
		DevID:   s.rootDev,
		Inode:   rootInode,
	})
	t.SetRoot(rootDir)
	atomic.AddInt64(&s.dirCount, 1)

	for i := 0; i < s.opts.Workers; i++ {
		worker := NewWorker(i, s.jobQueue, s.resultCh, s.errorCh, s.log)
		s.wg.Add(1)
		go func(w *Worker) {
			defer s.wg.Done()
			w.Run(ctx)
		}(worker)
	}

	s.dispatch(rootDir, root, 0)

	for s.inFlight > 0 {
		select {
		case <-ctx.Done():
			s.abortOutstanding()
			s.shutdown()
			return rootDir, ctx.Err()

		case res := <-s.resultCh:
			s.apply(res, cancel)
			s.fillQueue()

		case e := <-s.errorCh:
			s.recordError(e, cancel)
		}
	}

	s.shutdown()

	if ctx.Err() != nil {
		s.abortOutstanding()
		return rootDir, ctx.Err()
	}

	rootDir.FinalizeAll()
	s.log.Debug().
		Int64("files", atomic.LoadInt64(&s.fileCount)).
		Int64("dirs", atomic.LoadInt64(&s.dirCount)).
		Int64("errors", atomic.LoadInt64(&s.errorCount)).
		Msg("scan complete")
	return rootDir, nil
}

// Progress returns current scan progress (safe for concurrent access).
func (s *Scanner) Progress() Progress {
	return Progress{
		Files:      atomic.LoadInt64(&s.fileCount),
		Dirs:       atomic.LoadInt64(&s.dirCount),
		Errors:     atomic.LoadInt64(&s.errorCount),
		TotalBytes: atomic.LoadInt64(&s.totalBytes),
	}
}

// ErrorCount returns the total number of errors encountered.
func (s *Scanner) ErrorCount() int64 {
	return atomic.LoadInt64(&s.errorCount)
}

// Only keep a bounded sample of errors; the full count is still tracked.
const maxSampledErrors = 1000

// SampledErrors returns the first errors encountered during the scan,
// capped at a fixed sample size. Only valid after Run returns.
func (s *Scanner) SampledErrors() []entry.ScanError {
	return s.sampled
}

// apply folds one directory result into the tree.
func (s *Scanner) apply(res dirResult, cancel context.CancelFunc) {
	dir := res.job.dir
	delete(s.outstanding, dir)
	s.inFlight--

	if res.err != nil {
		s.recordError(entry.ScanError{Path: res.job.path, Message: res.err.Error()}, cancel)
		// Only this directory's read failed; the abort stays local
		// instead of propagating like a whole-scan abort would.
		dir.SetReadState(tree.DirAborted)
		dir.ReadJobFinished()
		return
	}

	for _, m := range res.children {
		childPath := filepath.Join(res.job.path, m.Name)

		if m.Kind != entry.KindDir {
			if s.opts.ShouldExclude(childPath) {
				continue
			}
			dir.InsertChild(tree.NewFileInfo(s.tree, dir, m))
			if m.Kind == entry.KindFile {
				atomic.AddInt64(&s.fileCount, 1)
				atomic.AddInt64(&s.totalBytes, m.Blocks)
			}
			continue
		}

		child := tree.NewDirInfo(s.tree, dir, m)
		dir.InsertChild(child)
		atomic.AddInt64(&s.dirCount, 1)

		mountPoint := m.DevID != 0 && m.DevID != s.rootDev
		if mountPoint {
			child.SetMountPoint(true)
		}

		switch {
		case s.opts.ShouldExclude(childPath):
			child.SetExcluded(true)
			child.SetReadState(tree.DirFinished)
		case mountPoint && s.opts.Xdev:
			child.SetReadState(tree.DirFinished)
		default:
			s.dispatch(child, childPath, res.job.depth+1)
		}
	}

	dir.SetReadState(tree.DirFinished)
	dir.ReadJobFinished()
}

// dispatch registers a read job for dir and hands it to the workers.
// A full queue parks the job in the applier's backlog instead of
// blocking, which would deadlock against workers waiting to deliver
// results.
func (s *Scanner) dispatch(dir *tree.DirInfo, path string, depth int) {
	dir.ReadJobAdded()
	s.outstanding[dir] = struct{}{}
	s.inFlight++

	job := dirJob{dir: dir, path: path, depth: depth}
	select {
	case s.jobQueue <- job:
		dir.SetReadState(tree.DirReading)
	default:
		s.backlog = append(s.backlog, job)
	}
}

// fillQueue tops the job queue back up from the backlog.
func (s *Scanner) fillQueue() {
	for len(s.backlog) > 0 {
		job := s.backlog[len(s.backlog)-1]
		select {
		case s.jobQueue <- job:
			s.backlog = s.backlog[:len(s.backlog)-1]
			job.dir.SetReadState(tree.DirReading)
		default:
			return
		}
	}
}

// abortOutstanding marks every directory still waiting on a read as
// aborted, which propagates to all ancestors and keeps them from ever
// reporting finished work that never happened.
func (s *Scanner) abortOutstanding() {
	for dir := range s.outstanding {
		dir.ReadJobAborted()
	}
	s.outstanding = make(map[*tree.DirInfo]struct{})
	s.backlog = nil
	s.inFlight = 0
}

func (s *Scanner) recordError(e entry.ScanError, cancel context.CancelFunc) {
	count := atomic.AddInt64(&s.errorCount, 1)
	s.log.Warn().Str("path", e.Path).Str("error", e.Message).Msg("scan error")
	if len(s.sampled) < maxSampledErrors {
		s.sampled = append(s.sampled, e)
	}

	if s.opts.MaxErrors > 0 && count >= int64(s.opts.MaxErrors) && cancel != nil {
		cancel() // Signal scan to stop
	}
}

func (s *Scanner) shutdown() {
	s.closeOnce.Do(func() {
		close(s.jobQueue)
	})
	s.wg.Wait()

	// Drain whatever the workers managed to send before exiting.
	for {
		select {
		case e := <-s.errorCh:
			s.recordError(e, nil)
		default:
			return
		}
	}
}
