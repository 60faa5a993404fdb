package pipeline

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// buildPDF assembles a minimal uncompressed PDF with one page per entry in
// pageTexts, drawn in Helvetica so the text layer is extractable. Offsets in
// the xref table are computed, so strict readers accept the file. Texts must
// not contain parentheses or backslashes. An empty entry produces a blank
// page. info adds a document information dictionary.
func buildPDF(pageTexts []string, info map[string]string) []byte {
	var buf bytes.Buffer
	var offsets []int
	writeObj := func(body string) {
		offsets = append(offsets, buf.Len())
		buf.WriteString(body)
	}

	buf.WriteString("%PDF-1.4\n")

	n := len(pageTexts)
	kids := make([]string, n)
	for i := range pageTexts {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}

	writeObj("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")
	writeObj(fmt.Sprintf("2 0 obj\n<< /Type /Pages /Kids [%s] /Count %d >>\nendobj\n",
		strings.Join(kids, " "), n))
	writeObj("3 0 obj\n<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>\nendobj\n")

	for i, text := range pageTexts {
		pageNum := 4 + 2*i
		writeObj(fmt.Sprintf("%d 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] "+
			"/Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>\nendobj\n",
			pageNum, pageNum+1))

		var stream string
		if text != "" {
			stream = fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
		}
		writeObj(fmt.Sprintf("%d 0 obj\n<< /Length %d >>\nstream\n%s\nendstream\nendobj\n",
			pageNum+1, len(stream), stream))
	}

	trailerInfo := ""
	if len(info) > 0 {
		infoNum := 4 + 2*n
		var entries []string
		for _, key := range []string{"Title", "Author", "Subject", "Keywords"} {
			if v, ok := info[key]; ok {
				entries = append(entries, fmt.Sprintf("/%s (%s)", key, v))
			}
		}
		writeObj(fmt.Sprintf("%d 0 obj\n<< %s >>\nendobj\n", infoNum, strings.Join(entries, " ")))
		trailerInfo = fmt.Sprintf(" /Info %d 0 R", infoNum)
	}

	xrefPos := buf.Len()
	buf.WriteString(fmt.Sprintf("xref\n0 %d\n", len(offsets)+1))
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		buf.WriteString(fmt.Sprintf("%010d 00000 n \n", off))
	}
	buf.WriteString(fmt.Sprintf("trailer\n<< /Size %d /Root 1 0 R%s >>\nstartxref\n%d\n%%%%EOF\n",
		len(offsets)+1, trailerInfo, xrefPos))

	return buf.Bytes()
}

// writePDF writes a built PDF under a fresh temp dir and returns its path.
// name matters: the extraction fallbacks derive keywords from it.
func writePDF(t *testing.T, name string, pageTexts []string, info map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, buildPDF(pageTexts, info), 0644))
	return path
}
