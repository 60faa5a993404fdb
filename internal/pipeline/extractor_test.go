package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pustaka-id/book-ingest/pkg/logger"
)

func TestFilenameWords(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		minLen int
		want   []string
	}{
		{
			name:   "underscores and digits stripped",
			path:   "/uploads/scan_report_2021.pdf",
			minLen: 3,
			want:   []string{"scan", "report"},
		},
		{
			name:   "extension never leaks in",
			path:   "pdf_pdf.pdf",
			minLen: 2,
			want:   []string{"pdf", "pdf"},
		},
		{
			name:   "short words dropped",
			path:   "/books/My_Great_Book.pdf",
			minLen: 2,
			want:   []string{"Great", "Book"},
		},
		{
			name:   "nothing usable",
			path:   "/books/123-456.pdf",
			minLen: 2,
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, filenameWords(tt.path, tt.minLen))
		})
	}
}

func TestFilenameText(t *testing.T) {
	assert.Equal(t, "Great Book", filenameText("/books/My_Great_Book.pdf"))
	assert.Equal(t, "", filenameText("/books/12.pdf"))
}

func TestExtractText_TextLayer(t *testing.T) {
	e := NewExtractor(logger.NewTestLogger())

	path := writePDF(t, "perdagangan.pdf", []string{
		"the archipelago trade routes connected distant harbors",
		"spices and textiles moved along the monsoon winds",
	}, nil)

	text := e.ExtractText(path)

	assert.GreaterOrEqual(t, len(text), 50)
	assert.Contains(t, text, "archipelago")
	assert.Contains(t, text, "monsoon")
}

func TestExtractText_ShortTextFallsToFilename(t *testing.T) {
	e := NewExtractor(logger.NewTestLogger())

	// a real text layer, but far below the usable-document threshold
	path := writePDF(t, "catatan_rapat_tahunan.pdf", []string{"memo"}, nil)

	text := e.ExtractText(path)

	assert.Equal(t, "catatan rapat tahunan"+filenameTextSuffix, text)
}

func TestExtractText_MetadataTier(t *testing.T) {
	e := NewExtractor(logger.NewTestLogger())

	path := writePDF(t, "arsip.pdf", []string{""}, map[string]string{
		"Title":  "Sejarah Kepulauan Nusantara",
		"Author": "Badan Arsip Nasional",
	})

	text := e.ExtractText(path)

	assert.Contains(t, text, "Sejarah Kepulauan Nusantara")
	assert.Contains(t, text, "Badan Arsip Nasional")
}

func TestExtractText_BlankPagesFallToFilename(t *testing.T) {
	e := NewExtractor(logger.NewTestLogger())

	path := writePDF(t, "sejarah_nusantara_kuno.pdf", []string{"", ""}, nil)

	text := e.ExtractText(path)

	assert.Equal(t, "sejarah nusantara kuno"+filenameTextSuffix, text)
}

func TestExtractText_UnreadableFile(t *testing.T) {
	log := logger.NewTestLogger()
	e := NewExtractor(log)

	text := e.ExtractText(filepath.Join(t.TempDir(), "missing.pdf"))

	assert.Equal(t, "", text)
	assert.True(t, log.HasError("Failed to open PDF for text extraction"))
}

func TestExtractText_CorruptFile(t *testing.T) {
	log := logger.NewTestLogger()
	e := NewExtractor(log)

	path := filepath.Join(t.TempDir(), "broken.pdf")
	require.NoError(t, os.WriteFile(path, []byte("this is not a pdf"), 0644))

	text := e.ExtractText(path)

	assert.Equal(t, "", text)
	assert.True(t, log.HasError("Failed to open PDF for text extraction"))
}
