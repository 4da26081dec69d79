package assets

import (
	"image"

	"golang.org/x/image/draw"
)

// scaleImageTo scales img to a square of the given edge length. The image is
// returned as is if it already has the requested size.
func scaleImageTo(img image.Image, pixelSize int) image.Image {
	if img.Bounds().Dx() == pixelSize && img.Bounds().Dy() == pixelSize {
		return img
	}

	rectangle := image.Rect(0, 0, pixelSize, pixelSize)
	scaledImage := image.NewRGBA(rectangle)
	draw.CatmullRom.Scale(scaledImage, rectangle, img, img.Bounds(), draw.Over, nil)
	return scaledImage
}
