package pipeline

import (
	"bytes"
	"image/png"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"

	"github.com/pustaka-id/book-ingest/pkg/logger"
)

// OCREngine recognizes text on rasterized pages. It is the extraction tier
// for scanned, image-only books; recognition runs locally through
// tesseract, no network involved.
type OCREngine struct {
	languages []string
	logger    logger.Logger
}

func NewOCREngine(log logger.Logger, languages ...string) *OCREngine {
	if len(languages) == 0 {
		languages = []string{"eng"}
	}
	return &OCREngine{
		languages: languages,
		logger:    log,
	}
}

// DocumentText rasterizes every page of doc and runs recognition on each
// one. Pages that fail are skipped; the rest are joined with spaces.
func (o *OCREngine) DocumentText(doc *Document) string {
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(o.languages...); err != nil {
		o.logger.Warn("Failed to set OCR languages",
			logger.Strings("languages", o.languages),
			logger.Error(err),
		)
	}

	var parts []string
	for i := 0; i < doc.PageCount(); i++ {
		img, err := RenderPage(doc, i, 2.0)
		if err != nil {
			o.logger.Error("Failed to rasterize page for OCR",
				logger.String("path", doc.Path()),
				logger.Int("page", i+1),
				logger.Error(err),
			)
			continue
		}

		// grayscale improves recognition on low-contrast scans
		var buf bytes.Buffer
		if err := png.Encode(&buf, imaging.Grayscale(img)); err != nil {
			o.logger.Error("Failed to encode page for OCR",
				logger.Int("page", i+1),
				logger.Error(err),
			)
			continue
		}

		if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
			o.logger.Error("Failed to set OCR image",
				logger.Int("page", i+1),
				logger.Error(err),
			)
			continue
		}

		text, err := client.Text()
		if err != nil {
			o.logger.Error("OCR failed",
				logger.String("path", doc.Path()),
				logger.Int("page", i+1),
				logger.Error(err),
			)
			continue
		}
		if strings.TrimSpace(text) != "" {
			parts = append(parts, text)
		}
	}

	return strings.Join(parts, " ")
}
