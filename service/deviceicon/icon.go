package deviceicon

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/fogleman/gg"
	ico "github.com/sergeymakinen/go-ico"
	"github.com/tevino/abool"

	"github.com/safing/audioicons/assets"
)

// Disposer is implemented by cached values that hold resources which must be
// released when they leave the cache.
type Disposer interface {
	Dispose()
}

// Icon is a decoded icon with one or more frames of different sizes.
// An Icon returned by the Provider stays owned by the cache; callers must
// not dispose it.
type Icon struct {
	lock   sync.RWMutex
	images []image.Image

	// size is the preferred edge length in pixels.
	size int

	static   bool
	disposed *abool.AtomicBool
}

var errNoImages = errors.New("icon has no images")

// NewIcon returns an icon holding the given frames. The frame closest to
// size is used as the primary image.
func NewIcon(images []image.Image, size int) (*Icon, error) {
	if len(images) == 0 {
		return nil, errNoImages
	}
	return &Icon{
		images:   images,
		size:     size,
		disposed: abool.New(),
	}, nil
}

var (
	defaultMicrophone = sync.OnceValue(func() *Icon {
		return &Icon{
			images:   assets.MicrophoneImages(),
			size:     DefaultLargeSize,
			static:   true,
			disposed: abool.New(),
		}
	})
	defaultSpeakers = sync.OnceValue(func() *Icon {
		return &Icon{
			images:   assets.SpeakersImages(),
			size:     DefaultLargeSize,
			static:   true,
			disposed: abool.New(),
		}
	})
)

// DefaultMicrophone returns the generic microphone icon used for capture
// devices whose icon cannot be resolved.
func DefaultMicrophone() *Icon {
	return defaultMicrophone()
}

// DefaultSpeakers returns the generic speakers icon used for render devices
// whose icon cannot be resolved.
func DefaultSpeakers() *Icon {
	return defaultSpeakers()
}

// IsDefault returns whether the icon is one of the process-wide defaults.
func (icon *Icon) IsDefault() bool {
	return icon.static
}

// Size returns the preferred edge length of the icon.
func (icon *Icon) Size() int {
	return icon.size
}

// Image returns the frame that best matches the preferred size.
// It returns nil once the icon was disposed.
func (icon *Icon) Image() image.Image {
	return icon.ImageSized(icon.size)
}

// ImageSized returns the frame whose width is closest to the given edge
// length, preferring the larger frame on ties.
func (icon *Icon) ImageSized(edge int) image.Image {
	icon.lock.RLock()
	defer icon.lock.RUnlock()

	return bestImage(icon.images, edge)
}

// Images returns a copy of all frames.
func (icon *Icon) Images() []image.Image {
	icon.lock.RLock()
	defer icon.lock.RUnlock()

	return append([]image.Image(nil), icon.images...)
}

// Disposed returns whether the icon was released.
func (icon *Icon) Disposed() bool {
	return icon.disposed.IsSet()
}

// Dispose releases the icon frames. Only the first call has an effect.
// Default icons are never released.
func (icon *Icon) Dispose() {
	if icon.static || !icon.disposed.SetToIf(false, true) {
		return
	}

	icon.lock.Lock()
	defer icon.lock.Unlock()
	icon.images = nil
}

// PNG encodes the preferred frame as PNG.
func (icon *Icon) PNG() ([]byte, error) {
	img := icon.Image()
	if img == nil {
		return nil, errNoImages
	}

	dc := gg.NewContextForImage(img)
	buf := &bytes.Buffer{}
	if err := dc.EncodePNG(buf); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// ICO encodes all frames as an ICO file.
func (icon *Icon) ICO() ([]byte, error) {
	images := icon.Images()
	if len(images) == 0 {
		return nil, errNoImages
	}

	buf := &bytes.Buffer{}
	if err := ico.EncodeAll(buf, images); err != nil {
		return nil, fmt.Errorf("failed to encode ICO: %w", err)
	}
	return buf.Bytes(), nil
}

func bestImage(images []image.Image, edge int) image.Image {
	var (
		best     image.Image
		bestDiff int
	)
	for _, img := range images {
		width := img.Bounds().Dx()
		diff := width - edge
		if diff < 0 {
			diff = -diff
		}

		switch {
		case best == nil:
		case diff < bestDiff:
		case diff == bestDiff && width > best.Bounds().Dx():
		default:
			continue
		}
		best = img
		bestDiff = diff
	}
	return best
}
