package deviceicon

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	ico "github.com/sergeymakinen/go-ico"
	"github.com/stretchr/testify/require"
)

func squareImage(size int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func writeICOFile(t *testing.T, name string, sizes ...int) string {
	t.Helper()

	images := make([]image.Image, 0, len(sizes))
	for _, size := range sizes {
		images = append(images, squareImage(size, color.NRGBA{R: 200, A: 255}))
	}

	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck
	require.NoError(t, ico.EncodeAll(f, images))

	return path
}

// fakeExtractor returns a fresh icon for every call, or err if set.
type fakeExtractor struct {
	calls atomic.Int32
	err   error
}

func (x *fakeExtractor) Extract(containerPath string, index int, large bool) (*Icon, error) {
	x.calls.Add(1)
	if x.err != nil {
		return nil, x.err
	}

	size := DefaultSmallSize
	if large {
		size = DefaultLargeSize
	}
	return NewIcon([]image.Image{squareImage(size, color.NRGBA{B: 255, A: 255})}, size)
}
