package compare

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/sdejongh/semdiff/pkg/config"
	"github.com/sdejongh/semdiff/pkg/models"
	"github.com/sdejongh/semdiff/pkg/render"
)

// ImageComparator compares two raster images pixel by pixel in a
// perceptual color space. Two thresholds govern the verdict: a pixel
// counts as differing when its color distance exceeds ImageMaxDistance,
// and the images count as different when the fraction of differing
// pixels exceeds ImageMaxDiffRatio. Both boundaries are inclusive on the
// tolerant side.
type ImageComparator struct{}

// NewImageComparator creates a new perceptual image comparator
func NewImageComparator() *ImageComparator {
	return &ImageComparator{}
}

// Class returns the content class this comparator handles
func (c *ImageComparator) Class() models.ContentClass {
	return models.ClassImage
}

// Compare decodes both images and measures per-pixel color distance
func (c *ImageComparator) Compare(ctx context.Context, pair Pair, tol *config.Tolerances) (*models.FileDetail, error) {
	expected, err := decodeImage(pair.Expected)
	if err != nil {
		return nil, models.NewCompareError(models.ErrDecode, pair.Path, models.SideExpected, err)
	}
	actual, err := decodeImage(pair.Actual)
	if err != nil {
		return nil, models.NewCompareError(models.ErrDecode, pair.Path, models.SideActual, err)
	}

	eb, ab := expected.Bounds(), actual.Bounds()
	detail := &models.ImageDetail{
		ExpectedWidth:  eb.Dx(),
		ExpectedHeight: eb.Dy(),
		ActualWidth:    ab.Dx(),
		ActualHeight:   ab.Dy(),
	}

	// Size is structure, not appearance: a dimension mismatch is a
	// difference outright and the pixel pass is skipped
	if eb.Dx() != ab.Dx() || eb.Dy() != ab.Dy() {
		return &models.FileDetail{
			Class: models.ClassImage,
			Equal: false,
			Image: detail,
		}, nil
	}
	detail.DimensionsMatch = true

	width, height := eb.Dx(), eb.Dy()
	mask := make([]bool, width*height)

	var sum float64
	for y := 0; y < height; y++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		for x := 0; x < width; x++ {
			ep := color.NRGBAModel.Convert(expected.At(eb.Min.X+x, eb.Min.Y+y)).(color.NRGBA)
			ap := color.NRGBAModel.Convert(actual.At(ab.Min.X+x, ab.Min.Y+y)).(color.NRGBA)

			dist := pixelDistance(ep.R, ep.G, ep.B, ep.A, ap.R, ap.G, ap.B, ap.A)
			sum += dist
			if dist > detail.MaxDistance {
				detail.MaxDistance = dist
			}
			if dist > tol.ImageMaxDistance {
				detail.DiffPixels++
				mask[y*width+x] = true
			}
		}
	}

	detail.TotalPixels = uint64(width * height)
	if detail.TotalPixels > 0 {
		detail.MeanDistance = sum / float64(detail.TotalPixels)
		detail.DiffRatio = float64(detail.DiffPixels) / float64(detail.TotalPixels)
	}

	equal := detail.DiffRatio <= tol.ImageMaxDiffRatio
	if !equal {
		detail.DiffMaskPNG = render.DiffMaskPNG(mask, width, height)
	}

	return &models.FileDetail{
		Class: models.ClassImage,
		Equal: equal,
		Image: detail,
	}, nil
}

func decodeImage(content []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}
