package pipeline

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
)

// RenderPage rasterizes a 0-based page at the given zoom factor. Failures
// are wrapped in *RenderError so the caller can isolate them per page.
func RenderPage(d *Document, pageIndex int, zoom float64) (image.Image, error) {
	if d == nil || d.fz == nil || d.closed {
		return nil, &RenderError{Page: pageIndex, Err: fmt.Errorf("document is not open")}
	}
	if pageIndex < 0 || pageIndex >= d.PageCount() {
		return nil, &RenderError{Page: pageIndex, Err: fmt.Errorf("page out of range (document has %d pages)", d.PageCount())}
	}

	img, err := d.renderImage(pageIndex, zoom)
	if err != nil {
		return nil, &RenderError{Page: pageIndex, Err: err}
	}
	return img, nil
}

// WritePNG encodes img to path, creating parent directories as needed.
func WritePNG(img image.Image, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create image directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create image file: %w", err)
	}

	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode png: %w", err)
	}

	return f.Close()
}

// PageFileName returns the canonical image name for a 1-based page number.
// Presentation code reconstructs the same name to serve pages.
func PageFileName(pageNumber int) string {
	return fmt.Sprintf("page_%03d.png", pageNumber)
}
