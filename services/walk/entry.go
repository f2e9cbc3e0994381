package walk

import (
	"io/fs"
	"os"
	"time"
)

// Entry is one file-system object visited during a walk. An Entry is only
// ever handled by the worker that produced it, so its metadata cache needs
// no locking.
type Entry struct {
	path  string
	name  string
	depth int
	typ   fs.FileMode

	dirEntry fs.DirEntry
	info     fs.FileInfo
	infoErr  error
	loaded   bool
}

func newEntry(path string, depth int, dirEntry fs.DirEntry) *Entry {
	return &Entry{
		path:     path,
		name:     dirEntry.Name(),
		depth:    depth,
		typ:      dirEntry.Type(),
		dirEntry: dirEntry,
	}
}

func newRootEntry(path string, info fs.FileInfo) *Entry {
	return &Entry{
		path:   path,
		name:   info.Name(),
		typ:    info.Mode().Type(),
		info:   info,
		loaded: true,
	}
}

func (e *Entry) Path() string { return e.path }

func (e *Entry) Name() string { return e.name }

// Depth is 0 for a root and grows by one per directory level.
func (e *Entry) Depth() int { return e.depth }

func (e *Entry) IsDir() bool { return e.typ.IsDir() }

func (e *Entry) IsRegular() bool { return e.typ.IsRegular() }

func (e *Entry) IsSymlink() bool { return e.typ&fs.ModeSymlink != 0 }

// Info returns the entry's metadata, reading it at most once.
func (e *Entry) Info() (fs.FileInfo, error) {
	if e.loaded {
		return e.info, e.infoErr
	}
	e.loaded = true
	if e.dirEntry != nil {
		e.info, e.infoErr = e.dirEntry.Info()
	} else {
		e.info, e.infoErr = os.Lstat(e.path)
	}

	return e.info, e.infoErr
}

func (e *Entry) Size() (int64, error) {
	info, err := e.Info()
	if err != nil {
		return 0, err
	}

	return info.Size(), nil
}

func (e *Entry) ModTime() (time.Time, error) {
	info, err := e.Info()
	if err != nil {
		return time.Time{}, err
	}

	return info.ModTime(), nil
}

// Created returns the entry's birth time. ErrCreationTimeUnavailable is
// returned where the platform or file system does not record one.
func (e *Entry) Created() (time.Time, error) {
	info, err := e.Info()
	if err != nil {
		return time.Time{}, err
	}

	return birthTime(e.path, info)
}
