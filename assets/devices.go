package assets

import (
	"image"
	"math"
	"sync"

	"github.com/fogleman/gg"
)

// DeviceIconSizes holds the edge lengths of the rendered default device
// icons, largest first.
var DeviceIconSizes = []int{256, 48, 32, 16}

const masterSize = 256

var (
	microphoneOnce   sync.Once
	microphoneImages []image.Image

	speakersOnce   sync.Once
	speakersImages []image.Image
)

// MicrophoneImages returns the generic microphone icon in all
// DeviceIconSizes. The returned slice must not be modified.
func MicrophoneImages() []image.Image {
	microphoneOnce.Do(func() {
		microphoneImages = renderAllSizes(drawMicrophone)
	})
	return microphoneImages
}

// SpeakersImages returns the generic speakers icon in all DeviceIconSizes.
// The returned slice must not be modified.
func SpeakersImages() []image.Image {
	speakersOnce.Do(func() {
		speakersImages = renderAllSizes(drawSpeakers)
	})
	return speakersImages
}

func renderAllSizes(draw func(dc *gg.Context)) []image.Image {
	dc := gg.NewContext(masterSize, masterSize)
	dc.SetRGB(0.25, 0.25, 0.25)
	draw(dc)
	master := dc.Image()

	images := make([]image.Image, 0, len(DeviceIconSizes))
	for _, size := range DeviceIconSizes {
		images = append(images, scaleImageTo(master, size))
	}
	return images
}

func drawMicrophone(dc *gg.Context) {
	// Capsule.
	dc.DrawRoundedRectangle(96, 16, 64, 136, 32)
	dc.Fill()

	// Cradle.
	dc.SetLineWidth(16)
	dc.SetLineCapRound()
	dc.NewSubPath()
	dc.DrawArc(128, 112, 72, 0, math.Pi)
	dc.Stroke()

	// Stand.
	dc.DrawLine(128, 184, 128, 228)
	dc.Stroke()
	dc.DrawLine(84, 232, 172, 232)
	dc.Stroke()
}

func drawSpeakers(dc *gg.Context) {
	// Magnet and cone.
	dc.DrawRectangle(24, 96, 48, 64)
	dc.Fill()
	dc.MoveTo(72, 96)
	dc.LineTo(136, 40)
	dc.LineTo(136, 216)
	dc.LineTo(72, 160)
	dc.ClosePath()
	dc.Fill()

	// Sound waves.
	dc.SetLineWidth(14)
	dc.SetLineCapRound()
	for _, radius := range []float64{40, 76} {
		dc.NewSubPath()
		dc.DrawArc(148, 128, radius, -math.Pi/4, math.Pi/4)
		dc.Stroke()
	}
}
