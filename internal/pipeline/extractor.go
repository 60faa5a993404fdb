package pipeline

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/pustaka-id/book-ingest/pkg/logger"
)

const (
	// Below this many characters the whole extraction is treated as
	// "too little text" and the metadata/filename fallbacks kick in.
	minDocumentText = 50
	// Metadata is only usable when the concatenated values exceed this.
	minMetadataText = 20

	// Appended to filename-derived pseudo-text so the ranker always has
	// generic but non-empty terms to work with.
	filenameTextSuffix = " document book pdf file text content"
)

// Extractor recovers text from a PDF through layered fallbacks: text layer,
// alternate extractor, block reconstruction, then (optionally) OCR, then
// document metadata, then the filename itself.
type Extractor struct {
	logger logger.Logger
	ocr    *OCREngine
}

type ExtractorOption func(*Extractor)

// WithOCR enables the OCR tier for scanned, image-only books.
func WithOCR(engine *OCREngine) ExtractorOption {
	return func(e *Extractor) {
		e.ocr = engine
	}
}

func NewExtractor(log logger.Logger, opts ...ExtractorOption) *Extractor {
	e := &Extractor{logger: log}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExtractText returns whatever text can be recovered from the PDF at path.
// It is a total function: every failure is logged and degrades to the next
// tier, terminating in "" when even the filename yields nothing.
func (e *Extractor) ExtractText(path string) string {
	doc, err := Open(path)
	if err != nil {
		e.logger.Error("Failed to open PDF for text extraction",
			logger.String("path", path),
			logger.Error(err),
		)
		return ""
	}
	defer doc.Close()

	text := strings.TrimSpace(e.extractLayered(doc))
	if len(text) >= minDocumentText {
		return text
	}

	e.logger.Warn("Very little text extracted, escalating fallbacks",
		logger.String("path", path),
		logger.Int("chars", len(text)),
	)

	if e.ocr != nil {
		if ocrText := strings.TrimSpace(e.ocr.DocumentText(doc)); len(ocrText) >= minDocumentText {
			e.logger.Info("Using OCR text",
				logger.String("path", path),
				logger.Int("chars", len(ocrText)),
			)
			return ocrText
		}
	}

	if meta := strings.TrimSpace(metadataText(doc)); len(meta) > minMetadataText {
		e.logger.Info("Using document metadata as text",
			logger.String("path", path),
			logger.Int("chars", len(meta)),
		)
		return meta
	}

	if fromName := filenameText(path); fromName != "" {
		e.logger.Info("Using filename-derived text",
			logger.String("path", path),
			logger.String("text", fromName),
		)
		return fromName + filenameTextSuffix
	}

	e.logger.Warn("No text could be extracted", logger.String("path", path))
	return ""
}

// extractLayered walks every page trying the tiers in order; the first tier
// that yields non-whitespace text wins for that page. Page results are
// joined with single spaces.
func (e *Extractor) extractLayered(doc *Document) string {
	alt := e.openAlternate(doc.Path())
	if alt != nil {
		defer alt.close()
	}

	var parts []string
	for i := 0; i < doc.PageCount(); i++ {
		text, err := doc.PageText(i)
		if err != nil {
			e.logger.Warn("Text layer extraction failed",
				logger.String("path", doc.Path()),
				logger.Int("page", i+1),
				logger.Error(err),
			)
		} else if strings.TrimSpace(text) != "" {
			parts = append(parts, text)
			continue
		}

		if alt == nil {
			continue
		}
		if text := alt.pageText(i + 1); strings.TrimSpace(text) != "" {
			parts = append(parts, text)
		}
	}

	return strings.Join(parts, " ")
}

// metadataText concatenates the document information values (author, title,
// subject and so on) in a stable order.
func metadataText(doc *Document) string {
	meta := doc.Metadata()
	if len(meta) == 0 {
		return ""
	}

	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var parts []string
	for _, k := range keys {
		if v := strings.TrimSpace(meta[k]); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " ")
}

// filenameText turns the file's base name into pseudo-text: extension
// stripped, non-letters blanked, words of more than 2 letters kept.
func filenameText(path string) string {
	return strings.Join(filenameWords(path, 2), " ")
}

// filenameWords splits the base name (without extension) into letter-only
// words longer than minLen runes.
func filenameWords(path string, minLen int) []string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = nonLetterOrSpace.ReplaceAllString(base, " ")

	var out []string
	for _, w := range strings.Fields(base) {
		if len(w) > minLen {
			out = append(out, w)
		}
	}
	return out
}

// alternateReader wraps the secondary PDF library used when MuPDF's text
// layer comes back empty: first its plain-text extraction, then a
// reconstruction from structural text blocks.
type alternateReader struct {
	file   *os.File
	reader *pdf.Reader
	logger logger.Logger
	path   string
}

func (e *Extractor) openAlternate(path string) *alternateReader {
	f, r, err := pdf.Open(path)
	if err != nil {
		e.logger.Warn("Alternate extractor unavailable",
			logger.String("path", path),
			logger.Error(err),
		)
		return nil
	}
	return &alternateReader{file: f, reader: r, logger: e.logger, path: path}
}

func (a *alternateReader) close() {
	if a.file != nil {
		a.file.Close()
	}
}

// pageText extracts a 1-based page. The underlying library panics on some
// malformed content streams, so both tiers run behind a recover.
func (a *alternateReader) pageText(pageNumber int) (text string) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Warn("Alternate extraction panicked",
				logger.String("path", a.path),
				logger.Int("page", pageNumber),
				logger.Any("panic", r),
			)
			text = ""
		}
	}()

	if pageNumber > a.reader.NumPage() {
		return ""
	}
	page := a.reader.Page(pageNumber)
	if page.V.IsNull() {
		return ""
	}

	if plain, err := page.GetPlainText(nil); err == nil && strings.TrimSpace(plain) != "" {
		return plain
	} else if err != nil {
		a.logger.Warn("Alternate plain-text extraction failed",
			logger.String("path", a.path),
			logger.Int("page", pageNumber),
			logger.Error(err),
		)
	}

	// block-level reconstruction: concatenate the text fields of the page's
	// structural content blocks
	var blocks []string
	for _, t := range page.Content().Text {
		if strings.TrimSpace(t.S) != "" {
			blocks = append(blocks, t.S)
		}
	}
	return strings.Join(blocks, " ")
}
