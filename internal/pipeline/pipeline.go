package pipeline

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/pustaka-id/book-ingest/pkg/logger"
)

const (
	imagesFolderName = "book_images"
	coversFolderName = "covers"

	// 2x zoom for full pages so readers get legible images; 1.5x keeps
	// cover thumbnails small.
	defaultPageZoom  = 2.0
	defaultCoverZoom = 1.5
)

// Pipeline sequences the PDF analysis steps behind four total operations.
// None of them propagate errors to the caller: a malformed upload degrades
// to a sentinel result ("", 0, fallback keywords) and the failure is logged.
type Pipeline struct {
	mediaRoot string
	pageZoom  float64
	coverZoom float64
	extractor *Extractor
	ranker    *Ranker
	logger    logger.Logger
}

type Option func(*Pipeline)

// WithZoom overrides the page and cover zoom factors.
func WithZoom(pageZoom, coverZoom float64) Option {
	return func(p *Pipeline) {
		if pageZoom > 0 {
			p.pageZoom = pageZoom
		}
		if coverZoom > 0 {
			p.coverZoom = coverZoom
		}
	}
}

// WithExtractor replaces the default text extractor.
func WithExtractor(e *Extractor) Option {
	return func(p *Pipeline) {
		p.extractor = e
	}
}

// WithRanker replaces the default keyword ranker.
func WithRanker(r *Ranker) Option {
	return func(p *Pipeline) {
		p.ranker = r
	}
}

// New creates a pipeline writing images under mediaRoot.
func New(mediaRoot string, log logger.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		mediaRoot: mediaRoot,
		pageZoom:  defaultPageZoom,
		coverZoom: defaultCoverZoom,
		logger:    log,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.extractor == nil {
		p.extractor = NewExtractor(log)
	}
	if p.ranker == nil {
		p.ranker = NewRanker(log)
	}
	return p
}

// ConvertToImages rasterizes every page into a freshly created folder named
// <bookID>_<8 hex> under book_images and returns the relative folder
// identifier, or "" when the document cannot be opened at all. Pages that
// fail to render are skipped; a partially populated folder is an acceptable
// degraded result.
func (p *Pipeline) ConvertToImages(pdfPath, bookID string) string {
	doc, err := Open(pdfPath)
	if err != nil {
		p.logger.Error("Failed to open PDF for conversion",
			logger.String("path", pdfPath),
			logger.String("bookId", bookID),
			logger.Error(err),
		)
		return ""
	}
	defer doc.Close()

	folder := path.Join(imagesFolderName, fmt.Sprintf("%s_%s", bookID, randomSuffix()))
	dir := filepath.Join(p.mediaRoot, filepath.FromSlash(folder))
	if err := os.MkdirAll(dir, 0755); err != nil {
		p.logger.Error("Failed to create images folder",
			logger.String("dir", dir),
			logger.Error(err),
		)
		return ""
	}

	rendered := 0
	for i := 0; i < doc.PageCount(); i++ {
		img, err := RenderPage(doc, i, p.pageZoom)
		if err != nil {
			p.logger.Error("Failed to rasterize page",
				logger.String("path", pdfPath),
				logger.Int("page", i+1),
				logger.Error(err),
			)
			continue
		}

		imagePath := filepath.Join(dir, PageFileName(i+1))
		if err := WritePNG(img, imagePath); err != nil {
			p.logger.Error("Failed to write page image",
				logger.String("imagePath", imagePath),
				logger.Error(err),
			)
			continue
		}
		rendered++
	}

	p.logger.Info("PDF conversion completed",
		logger.String("path", pdfPath),
		logger.String("folder", folder),
		logger.Int("pages", rendered),
	)
	return folder
}

// PageCount returns the number of pages, or 0 when the file is unreadable.
func (p *Pipeline) PageCount(pdfPath string) int {
	doc, err := Open(pdfPath)
	if err != nil {
		p.logger.Error("Failed to open PDF for page count",
			logger.String("path", pdfPath),
			logger.Error(err),
		)
		return 0
	}
	defer doc.Close()

	return doc.PageCount()
}

// ExtractCover rasterizes the first page into the shared covers folder and
// returns the relative cover path, or "" on failure.
func (p *Pipeline) ExtractCover(pdfPath, bookID string) string {
	doc, err := Open(pdfPath)
	if err != nil {
		p.logger.Error("Failed to open PDF for cover extraction",
			logger.String("path", pdfPath),
			logger.String("bookId", bookID),
			logger.Error(err),
		)
		return ""
	}
	defer doc.Close()

	img, err := RenderPage(doc, 0, p.coverZoom)
	if err != nil {
		p.logger.Error("Failed to rasterize cover page",
			logger.String("path", pdfPath),
			logger.Error(err),
		)
		return ""
	}

	coverName := fmt.Sprintf("cover_%s_%s.png", bookID, randomSuffix())
	coverPath := filepath.Join(p.mediaRoot, coversFolderName, coverName)
	if err := WritePNG(img, coverPath); err != nil {
		p.logger.Error("Failed to write cover image",
			logger.String("coverPath", coverPath),
			logger.Error(err),
		)
		return ""
	}

	p.logger.Info("Cover extracted",
		logger.String("path", pdfPath),
		logger.String("cover", coverName),
	)
	return path.Join(coversFolderName, coverName)
}

// AnalyzeKeywords extracts the book's text and ranks it into at most
// maxKeywords keywords. Never fails; scanned or empty books end up with
// filename-derived or generic keywords.
func (p *Pipeline) AnalyzeKeywords(pdfPath string, maxKeywords int) []string {
	raw := p.extractor.ExtractText(pdfPath)
	keywords := p.ranker.Rank(raw, pdfPath, maxKeywords)

	p.logger.Info("Keyword analysis completed",
		logger.String("path", pdfPath),
		logger.Strings("keywords", keywords),
	)
	return keywords
}

// randomSuffix disambiguates folder and cover names for concurrent uploads
// that may share a book identifier before persistence.
func randomSuffix() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
}
