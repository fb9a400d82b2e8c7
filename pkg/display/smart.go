package display

import (
	"context"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/muesli/smartcrop"
)

// smartCrop finds the most interesting region of img with the aspect ratio
// of a w x h screen.
func smartCrop(img image.Image, w, h int, resampler imaging.ResampleFilter) (image.Rectangle, error) {
	analyzer := smartcrop.NewAnalyzer(&resizer{resampler: resampler})
	rect, err := analyzer.FindBestCrop(img, w, h)
	if err != nil {
		return image.Rectangle{}, fmt.Errorf("finding best crop: %w", err)
	}
	return rect, nil
}

// resizer implements the smartcrop resizer on top of imaging.
type resizer struct {
	resampler imaging.ResampleFilter
}

// Resize has no context because the smartcrop interface does not carry one.
func (r *resizer) Resize(img image.Image, width, height uint) image.Image {
	return imaging.Resize(img, int(width), int(height), r.resampler)
}

func (r *resizer) resizeWithContext(ctx context.Context, img image.Image, width, height int) (image.Image, error) {
	return withContext(ctx, func() image.Image {
		return imaging.Resize(img, width, height, r.resampler)
	})
}

// withContext runs an image operation and gives up waiting when ctx ends.
func withContext(ctx context.Context, op func() image.Image) (image.Image, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	resultChan := make(chan image.Image, 1)
	go func() {
		resultChan <- op()
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case result := <-resultChan:
		return result, nil
	}
}

func checkContext(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
