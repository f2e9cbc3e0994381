//go:build !linux && !darwin

package walk

import (
	"io/fs"
	"time"
)

func birthTime(_ string, _ fs.FileInfo) (time.Time, error) {
	return time.Time{}, ErrCreationTimeUnavailable
}
