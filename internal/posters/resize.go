package posters

import (
	"bytes"
	"fmt"

	"github.com/desertthunder/reelpick/internal/models"
	"github.com/desertthunder/reelpick/internal/shared"
	"github.com/disintegration/imaging"
)

const jpegQuality = 85

// Downscale fits img inside maxWidth×maxHeight and re-encodes it as JPEG.
//
// A zero bound leaves that dimension free. Images that already fit are returned unchanged.
func Downscale(img *models.PosterImage, maxWidth, maxHeight int) (*models.PosterImage, error) {
	if maxWidth <= 0 && maxHeight <= 0 {
		return img, nil
	}

	src, err := imaging.Decode(bytes.NewReader(img.Data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: poster is not an image: %v", shared.ErrDecode, err)
	}

	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	fitsW := maxWidth <= 0 || w <= maxWidth
	fitsH := maxHeight <= 0 || h <= maxHeight
	if fitsW && fitsH {
		return img, nil
	}

	switch {
	case maxWidth > 0 && maxHeight > 0:
		src = imaging.Fit(src, maxWidth, maxHeight, imaging.Lanczos)
	case maxWidth > 0:
		src = imaging.Resize(src, maxWidth, 0, imaging.Lanczos)
	default:
		src = imaging.Resize(src, 0, maxHeight, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, src, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, fmt.Errorf("failed to encode poster: %w", err)
	}
	return &models.PosterImage{Data: buf.Bytes(), ContentType: "image/jpeg"}, nil
}
