package pipeline

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pustaka-id/book-ingest/pkg/logger"
)

func corruptPDF(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "broken.pdf")
	require.NoError(t, os.WriteFile(path, []byte("this is not a pdf"), 0644))
	return path
}

func TestPageFileName(t *testing.T) {
	assert.Equal(t, "page_001.png", PageFileName(1))
	assert.Equal(t, "page_042.png", PageFileName(42))
	assert.Equal(t, "page_1000.png", PageFileName(1000))
}

func TestRandomSuffix(t *testing.T) {
	a := randomSuffix()
	b := randomSuffix()

	assert.Len(t, a, 8)
	assert.Len(t, b, 8)
	assert.NotEqual(t, a, b)
}

func TestPageCount_UnreadableFile(t *testing.T) {
	log := logger.NewTestLogger()
	p := New(t.TempDir(), log)

	assert.Equal(t, 0, p.PageCount("/nope/missing.pdf"))
	assert.Equal(t, 0, p.PageCount(corruptPDF(t)))
	assert.True(t, log.HasError("Failed to open PDF for page count"))
}

func TestConvertToImages_UnreadableFile(t *testing.T) {
	log := logger.NewTestLogger()
	mediaRoot := t.TempDir()
	p := New(mediaRoot, log)

	folder := p.ConvertToImages(corruptPDF(t), "book42")

	assert.Equal(t, "", folder)
	assert.True(t, log.HasError("Failed to open PDF for conversion"))

	// nothing written under the media root
	entries, err := os.ReadDir(mediaRoot)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestExtractCover_UnreadableFile(t *testing.T) {
	log := logger.NewTestLogger()
	p := New(t.TempDir(), log)

	assert.Equal(t, "", p.ExtractCover(corruptPDF(t), "book42"))
	assert.True(t, log.HasError("Failed to open PDF for cover extraction"))
}

func TestAnalyzeKeywords_UnreadableFileUsesFilename(t *testing.T) {
	log := logger.NewTestLogger()
	p := New(t.TempDir(), log)

	dir := t.TempDir()
	path := filepath.Join(dir, "annual_budget_review.pdf")
	require.NoError(t, os.WriteFile(path, []byte("junk"), 0644))

	keywords := p.AnalyzeKeywords(path, 10)

	require.NotEmpty(t, keywords)
	assert.Equal(t, []string{"annual", "budget", "review"}, keywords[:3])
	assert.Contains(t, keywords, "document")
}

func TestConvertToImages(t *testing.T) {
	log := logger.NewTestLogger()
	mediaRoot := t.TempDir()
	p := New(mediaRoot, log)

	path := writePDF(t, "buku.pdf", []string{"halaman satu", "halaman dua", "halaman tiga"}, nil)

	folder := p.ConvertToImages(path, "book42")
	require.NotEmpty(t, folder)
	assert.Regexp(t, `^book_images/book42_[0-9a-f]{8}$`, folder)

	dir := filepath.Join(mediaRoot, filepath.FromSlash(folder))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, p.PageCount(path))

	for i := 1; i <= 3; i++ {
		_, err := os.Stat(filepath.Join(dir, PageFileName(i)))
		assert.NoError(t, err, "missing %s", PageFileName(i))
	}
}

func TestConvertToImages_UniqueFolderPerCall(t *testing.T) {
	p := New(t.TempDir(), logger.NewTestLogger())
	path := writePDF(t, "buku.pdf", []string{"halaman satu"}, nil)

	first := p.ConvertToImages(path, "book42")
	second := p.ConvertToImages(path, "book42")

	require.NotEmpty(t, first)
	require.NotEmpty(t, second)
	assert.NotEqual(t, first, second)
}

func TestPageCount(t *testing.T) {
	p := New(t.TempDir(), logger.NewTestLogger())

	path := writePDF(t, "buku.pdf", []string{"satu", "dua", "tiga"}, nil)
	assert.Equal(t, 3, p.PageCount(path))

	single := writePDF(t, "tunggal.pdf", []string{"satu"}, nil)
	assert.Equal(t, 1, p.PageCount(single))
}

func TestExtractCover(t *testing.T) {
	log := logger.NewTestLogger()
	mediaRoot := t.TempDir()
	p := New(mediaRoot, log)

	path := writePDF(t, "buku.pdf", []string{"sampul depan", "isi buku"}, nil)

	cover := p.ExtractCover(path, "book42")
	require.NotEmpty(t, cover)
	assert.Regexp(t, `^covers/cover_book42_[0-9a-f]{8}\.png$`, cover)

	f, err := os.Open(filepath.Join(mediaRoot, filepath.FromSlash(cover)))
	require.NoError(t, err)
	defer f.Close()

	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Positive(t, img.Bounds().Dx())
	assert.Positive(t, img.Bounds().Dy())
}

func TestRenderPage_ZoomScalesDimensions(t *testing.T) {
	path := writePDF(t, "buku.pdf", []string{"halaman"}, nil)

	doc, err := Open(path)
	require.NoError(t, err)
	defer doc.Close()

	small, err := RenderPage(doc, 0, 1.0)
	require.NoError(t, err)
	large, err := RenderPage(doc, 0, 2.0)
	require.NoError(t, err)

	assert.InDelta(t, 2.0, float64(large.Bounds().Dx())/float64(small.Bounds().Dx()), 0.02)
	assert.InDelta(t, 2.0, float64(large.Bounds().Dy())/float64(small.Bounds().Dy()), 0.02)
}

func TestAnalyzeKeywords_MostFrequentFirst(t *testing.T) {
	p := New(t.TempDir(), logger.NewTestLogger())

	path := writePDF(t, "intro.pdf", []string{
		"general notes about research habits and reading",
		"algorithm algorithm algorithm algorithm algorithm",
		"closing summary of research findings",
	}, nil)

	keywords := p.AnalyzeKeywords(path, 5)

	require.NotEmpty(t, keywords)
	assert.Equal(t, "algorithm", keywords[0])
	assert.LessOrEqual(t, len(keywords), 5)
}

func TestZoomOptions(t *testing.T) {
	log := logger.NewTestLogger()

	p := New(t.TempDir(), log, WithZoom(3.0, 1.0))
	assert.Equal(t, 3.0, p.pageZoom)
	assert.Equal(t, 1.0, p.coverZoom)

	// non-positive values keep the defaults
	p = New(t.TempDir(), log, WithZoom(0, -1))
	assert.Equal(t, 2.0, p.pageZoom)
	assert.Equal(t, 1.5, p.coverZoom)
}
