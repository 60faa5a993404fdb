package pipeline

import (
	"image"

	"github.com/gen2brain/go-fitz"
)

// Document is an opened PDF handle. It is owned by the operation that
// opened it and must be closed on every exit path.
type Document struct {
	fz     *fitz.Document
	path   string
	closed bool
}

// Open opens the PDF at path. A file that is unreadable or not a valid PDF
// yields an *OpenError.
func Open(path string) (*Document, error) {
	fz, err := fitz.New(path)
	if err != nil {
		return nil, &OpenError{Path: path, Err: err}
	}
	return &Document{fz: fz, path: path}, nil
}

// Path returns the file location the document was opened from.
func (d *Document) Path() string {
	return d.path
}

// PageCount returns the number of pages, or 0 when the document is closed
// or otherwise unreadable. Callers must tolerate a zero count.
func (d *Document) PageCount() int {
	if d == nil || d.fz == nil || d.closed {
		return 0
	}
	n := d.fz.NumPage()
	if n < 0 {
		return 0
	}
	return n
}

// Metadata returns the document information dictionary (title, author,
// subject and friends). Missing entries are simply absent from the map.
func (d *Document) Metadata() map[string]string {
	if d == nil || d.fz == nil || d.closed {
		return nil
	}
	return d.fz.Metadata()
}

// PageText returns the text layer of a 0-based page.
func (d *Document) PageText(pageIndex int) (string, error) {
	return d.fz.Text(pageIndex)
}

// renderImage rasterizes a 0-based page at the given zoom factor. MuPDF's
// native page size is 72 DPI, so the zoom maps linearly to DPI.
func (d *Document) renderImage(pageIndex int, zoom float64) (image.Image, error) {
	return d.fz.ImageDPI(pageIndex, 72*zoom)
}

// Close releases the underlying MuPDF resources. Safe to call more than
// once; only the first call does anything.
func (d *Document) Close() error {
	if d == nil || d.fz == nil || d.closed {
		return nil
	}
	d.closed = true
	return d.fz.Close()
}
