package search

import (
	"time"

	"github.com/meghashyamc/whereis/services/walk"
)

type Ordering int

const (
	Less Ordering = iota - 1
	Equal
	Greater
)

func (o Ordering) String() string {
	switch o {
	case Less:
		return "less"
	case Equal:
		return "equal"
	case Greater:
		return "greater"
	default:
		return "unknown"
	}
}

type FilterKind int

const (
	FilterCreated FilterKind = iota
	FilterModified
	FilterFileSize
	FilterCustom
)

// FilterFunc is a caller-supplied condition. It runs inline on a traversal
// worker, so it must be safe for concurrent use and must not block.
type FilterFunc func(entry *walk.Entry) bool

// Filter is one condition an entry must meet to be reported.
type Filter struct {
	kind     FilterKind
	ordering Ordering
	when     time.Time
	size     uint64
	custom   FilterFunc
}

func CreatedFilter(ordering Ordering, when time.Time) Filter {
	return Filter{kind: FilterCreated, ordering: ordering, when: when}
}

func ModifiedFilter(ordering Ordering, when time.Time) Filter {
	return Filter{kind: FilterModified, ordering: ordering, when: when}
}

func FileSizeFilter(ordering Ordering, size FileSize) Filter {
	return Filter{kind: FilterFileSize, ordering: ordering, size: size.Bytes()}
}

func CustomFilter(f FilterFunc) Filter {
	return Filter{kind: FilterCustom, custom: f}
}

func (f Filter) Kind() FilterKind { return f.kind }

// Apply reports whether entry passes. Entries whose metadata cannot be read
// never pass a time or size filter.
func (f Filter) Apply(entry *walk.Entry) bool {
	switch f.kind {
	case FilterCreated:
		created, err := entry.Created()
		if err != nil {
			return false
		}
		return compareTime(created, f.when) == f.ordering
	case FilterModified:
		modified, err := entry.ModTime()
		if err != nil {
			return false
		}
		return compareTime(modified, f.when) == f.ordering
	case FilterFileSize:
		size, err := entry.Size()
		if err != nil || size < 0 {
			return false
		}
		return compareSize(uint64(size), f.size) == f.ordering
	case FilterCustom:
		return f.custom != nil && f.custom(entry)
	default:
		return false
	}
}

type filters []Filter

func (fs filters) apply(entry *walk.Entry) bool {
	for _, f := range fs {
		if !f.Apply(entry) {
			return false
		}
	}
	return true
}

func compareTime(a, b time.Time) Ordering {
	switch {
	case a.Before(b):
		return Less
	case a.After(b):
		return Greater
	default:
		return Equal
	}
}

func compareSize(a, b uint64) Ordering {
	switch {
	case a < b:
		return Less
	case a > b:
		return Greater
	default:
		return Equal
	}
}
