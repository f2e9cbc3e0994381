// Package walk enumerates directory trees in parallel. A fixed pool of
// workers pulls directories from a shared queue; every worker owns its own
// Visitor and decides, per entry, whether the walk carries on.
package walk

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"

	"github.com/meghashyamc/whereis/logger"
	"golang.org/x/sync/errgroup"
)

var ErrCreationTimeUnavailable = errors.New("creation time is not available on this platform")

// State is a visitor's verdict on an entry.
type State int

const (
	// Continue descends into the entry if it is a directory.
	Continue State = iota
	// Skip does not descend into the entry.
	Skip
	// Quit stops the whole walk as soon as every worker notices.
	Quit
)

type Visitor func(entry *Entry) State

// Unbounded disables the depth limit.
const Unbounded = -1

type Options struct {
	SkipHidden bool
	GitIgnore  bool
	// MaxDepth of 0 only visits the roots themselves.
	MaxDepth int
	Threads  int
	Logger   logger.Logger
}

func DefaultOptions() Options {
	return Options{
		SkipHidden: true,
		GitIgnore:  true,
		MaxDepth:   Unbounded,
		Threads:    runtime.NumCPU(),
	}
}

type Walker struct {
	roots  []string
	opts   Options
	logger logger.Logger
}

func New(root string, opts Options) *Walker {
	if opts.Threads < 1 {
		opts.Threads = 1
	}
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}

	return &Walker{roots: []string{root}, opts: opts, logger: log}
}

// Add registers another root to be walked in the same run.
func (w *Walker) Add(root string) *Walker {
	w.roots = append(w.roots, root)
	return w
}

// Run walks every root, calling newVisitor once per worker. It returns when
// all workers have exited: the trees are exhausted, a visitor returned Quit
// or ctx was cancelled.
func (w *Walker) Run(ctx context.Context, newVisitor func() Visitor) error {
	if len(w.roots) == 0 {
		return nil
	}

	q := newQueue()
	for _, root := range w.roots {
		q.push(job{path: root, root: true})
	}

	stop := context.AfterFunc(ctx, q.stop)
	defer stop()

	g := new(errgroup.Group)
	for range w.opts.Threads {
		visit := newVisitor()
		g.Go(func() error {
			w.work(q, visit)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	return ctx.Err()
}

func (w *Walker) work(q *queue, visit Visitor) {
	for {
		j, ok := q.pop()
		if !ok {
			return
		}
		if !w.process(q, j, visit) {
			q.stop()
		}
		q.done()
	}
}

// process handles one job and reports false when the visitor asked to quit.
func (w *Walker) process(q *queue, j job, visit Visitor) bool {
	if j.root {
		info, err := os.Stat(j.path)
		if err != nil {
			w.logger.Warn("could not read search root", "path", j.path, "err", err.Error())
			return true
		}
		entry := newRootEntry(j.path, info)
		switch visit(entry) {
		case Quit:
			return false
		case Skip:
			return true
		}
		if !info.IsDir() || !w.canDescend(0) {
			return true
		}
	}

	return w.expand(q, j, visit)
}

func (w *Walker) expand(q *queue, j job, visit Visitor) bool {
	dirEntries, err := os.ReadDir(j.path)
	if err != nil {
		w.logger.Debug("could not read directory", "path", j.path, "err", err.Error())
		if len(dirEntries) == 0 {
			return true
		}
	}

	ignores := j.ignores
	if w.opts.GitIgnore {
		ignores = w.loadIgnoreRules(j.path, j.ignores)
	}

	childDepth := j.depth + 1
	for _, dirEntry := range dirEntries {
		if w.opts.SkipHidden && isHidden(dirEntry.Name()) {
			continue
		}
		entry := newEntry(filepath.Join(j.path, dirEntry.Name()), childDepth, dirEntry)
		if len(ignores) > 0 && isIgnored(ignores, entry.Path(), entry.IsDir()) {
			continue
		}

		switch visit(entry) {
		case Quit:
			return false
		case Skip:
			continue
		}

		if entry.IsDir() && w.canDescend(childDepth) {
			q.push(job{path: entry.Path(), depth: childDepth, ignores: ignores})
		}
	}

	return true
}

func (w *Walker) canDescend(depth int) bool {
	return w.opts.MaxDepth < 0 || depth < w.opts.MaxDepth
}
