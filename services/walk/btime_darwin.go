//go:build darwin

package walk

import (
	"io/fs"
	"syscall"
	"time"
)

func birthTime(_ string, info fs.FileInfo) (time.Time, error) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return time.Time{}, ErrCreationTimeUnavailable
	}

	return time.Unix(stat.Birthtimespec.Unix()), nil
}
