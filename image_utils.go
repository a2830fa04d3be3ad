package lbldraw

import (
	"image"
	"os"

	"github.com/disintegration/imaging"

	// Decoders for the image types accepted in a project's img directory.
	_ "image/jpeg"
	_ "image/png"

	_ "github.com/chai2010/webp"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// DecodeImageConfig opens the file at path and returns the results of image.DecodeConfig.
func DecodeImageConfig(path string) (config image.Config, format string, err error) {
	file, err := os.Open(path)
	if err != nil {
		return image.Config{}, "", err
	}
	defer file.Close()

	return image.DecodeConfig(file)
}

// LoadImage reads and decodes the image at path and returns the results of image.Decode.
func LoadImage(path string) (img image.Image, format string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	return image.Decode(f)
}

// FitToCanvas downscales img to fit within maxWidth x maxHeight, preserving the aspect
// ratio. Images already within the bounds are returned at their native size.
func FitToCanvas(img image.Image, maxWidth, maxHeight int) *image.NRGBA {
	return imaging.Fit(img, maxWidth, maxHeight, imaging.Linear)
}
