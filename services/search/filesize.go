package search

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

type SizeUnit int

const (
	Byte SizeUnit = iota
	Kilobyte
	Megabyte
	Gigabyte
	Terabyte
)

// FileSize is a size expressed in binary units: one kilobyte is 1024 bytes.
type FileSize struct {
	unit  SizeUnit
	bytes uint64
	value float64
}

func Bytes(n uint64) FileSize { return FileSize{unit: Byte, bytes: n} }

func Kilobytes(n float64) FileSize { return FileSize{unit: Kilobyte, value: n} }

func Megabytes(n float64) FileSize { return FileSize{unit: Megabyte, value: n} }

func Gigabytes(n float64) FileSize { return FileSize{unit: Gigabyte, value: n} }

func Terabytes(n float64) FileSize { return FileSize{unit: Terabyte, value: n} }

func (s FileSize) Unit() SizeUnit { return s.unit }

// Bytes converts the size to a byte count, truncating any fraction.
func (s FileSize) Bytes() uint64 {
	if s.unit == Byte {
		return s.bytes
	}

	total := s.value * math.Pow(1024, float64(s.unit))
	switch {
	case math.IsNaN(total) || total <= 0:
		return 0
	case total >= math.MaxUint64:
		return math.MaxUint64
	}

	return uint64(total)
}

func (s FileSize) String() string {
	if s.unit == Byte {
		return strconv.FormatUint(s.bytes, 10) + "B"
	}

	return strconv.FormatFloat(s.value, 'f', -1, 64) + unitSuffixes[s.unit]
}

var unitSuffixes = map[SizeUnit]string{
	Kilobyte: "KB",
	Megabyte: "MB",
	Gigabyte: "GB",
	Terabyte: "TB",
}

var unitsByPrefix = map[string]SizeUnit{
	"":  Byte,
	"k": Kilobyte,
	"m": Megabyte,
	"g": Gigabyte,
	"t": Terabyte,
}

// ParseFileSize reads sizes such as "512", "10k", "1.5MB" or "2 GiB".
func ParseFileSize(text string) (FileSize, error) {
	trimmed := strings.ToLower(strings.TrimSpace(text))
	if trimmed == "" {
		return FileSize{}, fmt.Errorf("empty file size")
	}

	split := strings.IndexFunc(trimmed, func(r rune) bool {
		return (r < '0' || r > '9') && r != '.'
	})
	number, suffix := trimmed, ""
	if split >= 0 {
		number, suffix = trimmed[:split], strings.TrimSpace(trimmed[split:])
	}
	suffix = strings.TrimSuffix(strings.TrimSuffix(suffix, "b"), "i")

	unit, ok := unitsByPrefix[suffix]
	if !ok || number == "" {
		return FileSize{}, fmt.Errorf("invalid file size %q", text)
	}

	if unit == Byte {
		n, err := strconv.ParseUint(number, 10, 64)
		if err != nil {
			return FileSize{}, fmt.Errorf("invalid byte count %q: %w", text, err)
		}
		return Bytes(n), nil
	}

	value, err := strconv.ParseFloat(number, 64)
	if err != nil {
		return FileSize{}, fmt.Errorf("invalid file size %q: %w", text, err)
	}

	return FileSize{unit: unit, value: value}, nil
}
