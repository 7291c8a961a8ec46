package textextract

import (
	"archive/zip"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/doc-extractor/constants"
	"github.com/joseph-ayodele/doc-extractor/internal/common"
	"github.com/joseph-ayodele/doc-extractor/internal/ocr"
)

type fakeOCR struct {
	pages   map[int]string
	image   string
	err     error
	ocrPage []int
}

func (f *fakeOCR) Image(context.Context, string) (ocr.Result, error) {
	return ocr.Result{Text: f.image, Method: "image-ocr"}, f.err
}

func (f *fakeOCR) PDFPage(_ context.Context, _ string, page int) (ocr.Result, error) {
	f.ocrPage = append(f.ocrPage, page)
	if f.err != nil {
		return ocr.Result{}, f.err
	}
	return ocr.Result{Text: f.pages[page], Method: "pdf-ocr"}, nil
}

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, data, 0o644))
	return p
}

func writeDOCX(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "letter.docx")
	f, err := os.Create(p)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?>`+
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`+
		body+`</w:body></w:document>`)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return p
}

func TestReaderText(t *testing.T) {
	t.Run("Should return a text file as page 1 in NFC form", func(t *testing.T) {
		p := writeFile(t, "note.txt", []byte("Café bill\nTotal: 12.00\n"))
		res, err := NewReader(nil, quiet()).Extract(context.Background(), p)
		require.NoError(t, err)
		assert.Equal(t, constants.FileTypeTXT, res.SourceType)
		assert.Equal(t, []int{1}, res.Pages.Numbers())
		assert.Equal(t, "Café bill\nTotal: 12.00\n", res.Pages[1])
		assert.Equal(t, []string{MethodTXT}, res.Methods)
	})

	t.Run("Should join docx paragraphs with newlines", func(t *testing.T) {
		p := writeDOCX(t, `<w:p><w:r><w:t>Invoice #</w:t></w:r><w:r><w:t xml:space="preserve"> 77</w:t></w:r></w:p>`+
			`<w:p><w:r><w:t>Due</w:t><w:tab/><w:t>soon</w:t></w:r></w:p>`)
		res, err := NewReader(nil, quiet()).Extract(context.Background(), p)
		require.NoError(t, err)
		assert.Equal(t, constants.FileTypeDOCX, res.SourceType)
		assert.Equal(t, "Invoice # 77\nDue\tsoon", res.Pages[1])
	})

	t.Run("Should reject unsupported files", func(t *testing.T) {
		p := writeFile(t, "data.bin", []byte{0x00, 0x01, 0x02, 0x03})
		_, err := NewReader(nil, quiet()).Extract(context.Background(), p)
		require.Error(t, err)
		assert.True(t, errors.Is(err, common.ErrUnsupported))
	})
}

func TestReaderPDF(t *testing.T) {
	p := writeFile(t, "scan.pdf", []byte("%PDF-1.4\n%stub\n"))
	long := strings.Repeat("Invoice text ", 10)

	t.Run("Should OCR only pages below the threshold", func(t *testing.T) {
		fo := &fakeOCR{pages: map[int]string{2: "scanned page two"}}
		r := NewReader(fo, quiet())
		r.pdfPages = func(string) ([]string, error) { return []string{long, "  12 \n", long}, nil }

		res, err := r.Extract(context.Background(), p)
		require.NoError(t, err)
		assert.Equal(t, constants.FileTypePDF, res.SourceType)
		assert.Equal(t, []int{1, 2, 3}, res.Pages.Numbers())
		assert.Equal(t, "scanned page two", res.Pages[2])
		assert.Equal(t, []int{2}, fo.ocrPage)
		assert.Equal(t, []string{MethodPDFText, MethodPDFOCR, MethodPDFText}, res.Methods)
	})

	t.Run("Should keep embedded text when OCR fails", func(t *testing.T) {
		fo := &fakeOCR{err: errors.New("tesseract missing")}
		r := NewReader(fo, quiet(), WithMinTextChars(5))
		r.pdfPages = func(string) ([]string, error) { return []string{"abc"}, nil }

		res, err := r.Extract(context.Background(), p)
		require.NoError(t, err)
		assert.Equal(t, "abc", res.Pages[1])
		require.Len(t, res.Warnings, 1)
		assert.Contains(t, res.Warnings[0], "ocr failed")
	})

	t.Run("Should warn when OCR is disabled", func(t *testing.T) {
		r := NewReader(nil, quiet())
		r.pdfPages = func(string) ([]string, error) { return []string{""}, nil }

		res, err := r.Extract(context.Background(), p)
		require.NoError(t, err)
		assert.Equal(t, "", res.Pages[1])
		assert.Len(t, res.Warnings, 1)
	})
}

func TestReaderImage(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	p := writeFile(t, "receipt.png", png)

	t.Run("Should OCR images as page 1", func(t *testing.T) {
		res, err := NewReader(&fakeOCR{image: "Total 9.99"}, quiet()).Extract(context.Background(), p)
		require.NoError(t, err)
		assert.Equal(t, constants.FileTypeImage, res.SourceType)
		assert.Equal(t, "image/png", res.MimeType)
		assert.Equal(t, "Total 9.99", res.Pages[1])
	})

	t.Run("Should require OCR for images", func(t *testing.T) {
		_, err := NewReader(nil, quiet()).Extract(context.Background(), p)
		assert.True(t, errors.Is(err, common.ErrUnsupported))
	})
}
