package imageprep

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
)

// Processor readies scans for the vision model: it downsizes large images,
// sharpens text edges and re-encodes as JPEG.
type Processor struct {
	MaxDimension int
	Sharpen      float64
	Contrast     float64
	Quality      int
}

// New returns a Processor with settings tuned for document photos.
func New(maxDimension int) *Processor {
	if maxDimension <= 0 {
		maxDimension = 2000
	}
	return &Processor{
		MaxDimension: maxDimension,
		Sharpen:      1.5,
		Contrast:     20,
		Quality:      90,
	}
}

func (p *Processor) Process(data []byte) ([]byte, string, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}

	b := img.Bounds()
	if b.Dx() > p.MaxDimension || b.Dy() > p.MaxDimension {
		if b.Dx() > b.Dy() {
			img = imaging.Resize(img, p.MaxDimension, 0, imaging.Lanczos)
		} else {
			img = imaging.Resize(img, 0, p.MaxDimension, imaging.Lanczos)
		}
	}
	if p.Sharpen > 0 {
		img = imaging.Sharpen(img, p.Sharpen)
	}
	if p.Contrast != 0 {
		img = imaging.AdjustContrast(img, p.Contrast)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(p.Quality)); err != nil {
		return nil, "", fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), "image/jpeg", nil
}
