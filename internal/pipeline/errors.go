package pipeline

import (
	"fmt"
)

// OpenError reports a PDF that could not be opened at all. It aborts the
// whole operation for that document but is never propagated past the
// pipeline boundary.
type OpenError struct {
	Path string
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("open document %s: %v", e.Path, e.Err)
}

func (e *OpenError) Unwrap() error {
	return e.Err
}

// RenderError reports a single page that could not be rasterized.
// Conversion continues with the remaining pages.
type RenderError struct {
	Page int
	Err  error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render page %d: %v", e.Page+1, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}
