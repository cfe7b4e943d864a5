package release

import (
	"errors"
	"fmt"
	"strings"
)

// Format is an output package type understood by the external packager.
type Format string

const (
	// FormatRPM produces RPM packages.
	FormatRPM Format = "rpm"
	// FormatDEB produces Debian packages.
	FormatDEB Format = "deb"
)

// errUnknownFormat is returned for formats other than rpm and deb.
var errUnknownFormat = errors.New("unknown package format")

// DefaultFormats returns the formats built per architecture, in build order.
func DefaultFormats() []Format {
	return []Format{FormatRPM, FormatDEB}
}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatRPM, FormatDEB:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", errUnknownFormat, s)
	}
}

// Extension returns the file extension of packages in this format, with the dot.
func (f Format) Extension() string {
	return "." + string(f)
}

func (f Format) String() string {
	return string(f)
}
