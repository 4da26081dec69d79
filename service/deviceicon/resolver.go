package deviceicon

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	ico "github.com/sergeymakinen/go-ico"
)

// IconExtractor extracts an icon from a container file, such as an
// executable or library.
type IconExtractor interface {
	// Extract returns the icon at index, preferring the large or small
	// representation.
	Extract(containerPath string, index int, large bool) (*Icon, error)
}

// IconResolver resolves icon-path specifiers to icons.
type IconResolver interface {
	Resolve(specifier string, large bool) (*Icon, error)
}

// Resolver resolves icon-path specifiers. A specifier is either a path to
// an .ico file or a "container,index" reference.
type Resolver struct {
	Extractor IconExtractor
	LargeSize int
	SmallSize int
}

// NewResolver returns a resolver that uses the given extractor for
// container references.
func NewResolver(extractor IconExtractor, largeSize, smallSize int) *Resolver {
	return &Resolver{
		Extractor: extractor,
		LargeSize: largeSize,
		SmallSize: smallSize,
	}
}

// Resolve loads the icon described by specifier. Errors are always of type
// *ResolutionError.
func (r *Resolver) Resolve(specifier string, large bool) (*Icon, error) {
	// Plain icon files are loaded directly.
	if strings.HasSuffix(specifier, ".ico") {
		icon, err := loadICOFile(specifier, r.size(large))
		if err != nil {
			return nil, extractionFailed(specifier, err)
		}
		return icon, nil
	}

	containerPath, index, err := ParseSpecifier(specifier)
	if err != nil {
		return nil, malformed(specifier, err)
	}

	if r.Extractor == nil {
		return nil, extractionFailed(specifier, errors.New("no extractor configured"))
	}
	icon, err := r.Extractor.Extract(containerPath, index, large)
	if err != nil {
		return nil, extractionFailed(specifier, err)
	}
	return icon, nil
}

func (r *Resolver) size(large bool) int {
	if large {
		return r.LargeSize
	}
	return r.SmallSize
}

// ParseSpecifier splits a "container,index" specifier.
func ParseSpecifier(specifier string) (containerPath string, index int, err error) {
	fields := strings.Split(specifier, ",")
	if len(fields) != 2 {
		return "", 0, fmt.Errorf("expected 2 comma separated fields, got %d", len(fields))
	}

	containerPath = strings.TrimSpace(fields[0])
	if containerPath == "" {
		return "", 0, errors.New("empty container path")
	}
	index, err = strconv.Atoi(strings.TrimSpace(fields[1]))
	if err != nil {
		return "", 0, fmt.Errorf("invalid icon index: %w", err)
	}

	return containerPath, index, nil
}

func loadICOFile(path string, size int) (*Icon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read icon %s: %w", path, err)
	}
	return decodeICO(data, size)
}

func decodeICO(data []byte, size int) (*Icon, error) {
	// Decode with the ico package directly, as image.Decode may fail on
	// ICOs extracted from binaries.
	images, err := ico.DecodeAll(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode ICO: %w", err)
	}
	return NewIcon(images, size)
}
