package textextract

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
	"golang.org/x/text/unicode/norm"

	"github.com/joseph-ayodele/doc-extractor/constants"
	"github.com/joseph-ayodele/doc-extractor/internal/common"
	"github.com/joseph-ayodele/doc-extractor/internal/extract"
	"github.com/joseph-ayodele/doc-extractor/internal/ocr"
)

// DefaultMinTextChars is the number of non-whitespace characters below which
// a PDF page is considered scanned and sent to OCR.
const DefaultMinTextChars = 50

const (
	MethodPDFText  = "pdf-text"
	MethodPDFOCR   = "pdf-ocr"
	MethodImageOCR = "image-ocr"
	MethodDOCX     = "docx"
	MethodTXT      = "txt"
)

// OCR is the subset of ocr.Recognizer the reader needs.
type OCR interface {
	Image(ctx context.Context, path string) (ocr.Result, error)
	PDFPage(ctx context.Context, path string, page int) (ocr.Result, error)
}

// Reader turns a file on disk into numbered pages of text.
type Reader struct {
	ocr          OCR
	logger       *slog.Logger
	minTextChars int
	pdfPages     func(path string) ([]string, error)
}

var _ extract.TextExtractor = (*Reader)(nil)

type Option func(*Reader)

// WithMinTextChars sets the OCR fallback threshold for PDF pages.
func WithMinTextChars(n int) Option {
	return func(r *Reader) {
		if n > 0 {
			r.minTextChars = n
		}
	}
}

// NewReader builds a Reader. A nil OCR disables scanned-page fallback and
// image support.
func NewReader(o OCR, logger *slog.Logger, opts ...Option) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Reader{
		ocr:          o,
		logger:       logger,
		minTextChars: DefaultMinTextChars,
		pdfPages:     readPDFPages,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Extract reads path and returns its pages numbered 1..n.
func (r *Reader) Extract(ctx context.Context, path string) (extract.TextExtractionResult, error) {
	start := time.Now()
	mime, fileType, err := DetectType(path)
	if err != nil {
		return extract.TextExtractionResult{}, err
	}
	r.logger.Debug("reading document", "path", path, "mime", mime, "file_type", fileType)

	var res extract.TextExtractionResult
	switch fileType {
	case constants.FileTypePDF:
		res, err = r.readPDF(ctx, path)
	case constants.FileTypeDOCX:
		var text string
		text, err = readDOCX(path)
		res = single(text, MethodDOCX)
	case constants.FileTypeTXT:
		var b []byte
		b, err = os.ReadFile(path)
		res = single(string(b), MethodTXT)
	case constants.FileTypeImage:
		res, err = r.readImage(ctx, path)
	default:
		err = common.NewAppError(common.CodeTextReader, fmt.Sprintf("cannot read %s (%s)", filepath.Base(path), mime), common.ErrUnsupported)
	}
	res.SourceType = fileType
	res.MimeType = mime
	res.Duration = time.Since(start)
	if err != nil {
		return res, err
	}
	for n, text := range res.Pages {
		res.Pages[n] = norm.NFC.String(text)
	}
	r.logger.Info("document read",
		"path", path,
		"file_type", fileType,
		"pages", len(res.Pages),
		"duration_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

// DetectType sniffs the file content and falls back to the extension when
// the content is ambiguous (zip containers, plain bytes).
func DetectType(path string) (mime, fileType string, err error) {
	byExt := constants.FileTypeForExt(filepath.Ext(path))
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return "", "", fmt.Errorf("detect type of %s: %w", path, err)
	}
	mime = mt.String()
	switch {
	case mt.Is("application/pdf"):
		return mime, constants.FileTypePDF, nil
	case mt.Is("application/vnd.openxmlformats-officedocument.wordprocessingml.document"):
		return mime, constants.FileTypeDOCX, nil
	case strings.HasPrefix(mime, "image/"):
		return mime, constants.FileTypeImage, nil
	case mt.Is("text/plain") && byExt == constants.FileTypeTXT:
		return mime, constants.FileTypeTXT, nil
	}
	return mime, byExt, nil
}

func (r *Reader) readPDF(ctx context.Context, path string) (extract.TextExtractionResult, error) {
	texts, err := r.pdfPages(path)
	if err != nil {
		return extract.TextExtractionResult{}, common.NewAppError(common.CodeTextReader, "read pdf "+filepath.Base(path), err)
	}
	res := extract.TextExtractionResult{
		Pages:   make(extract.Pages, len(texts)),
		Methods: make([]string, len(texts)),
	}
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		n := i + 1
		res.Pages[n] = text
		res.Methods[i] = MethodPDFText
		if visibleChars(text) >= r.minTextChars {
			continue
		}
		if r.ocr == nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("page %d: little text and OCR is disabled", n))
			continue
		}
		out, err := r.ocr.PDFPage(ctx, path, n)
		if err != nil {
			r.logger.Warn("page ocr failed, keeping embedded text", "path", path, "page", n, "error", err)
			res.Warnings = append(res.Warnings, fmt.Sprintf("page %d: ocr failed: %v", n, err))
			continue
		}
		res.Pages[n] = out.Text
		res.Methods[i] = MethodPDFOCR
	}
	return res, nil
}

func (r *Reader) readImage(ctx context.Context, path string) (extract.TextExtractionResult, error) {
	if r.ocr == nil {
		return extract.TextExtractionResult{}, common.NewAppError(common.CodeTextReader, "image input needs OCR", common.ErrUnsupported)
	}
	out, err := r.ocr.Image(ctx, path)
	if err != nil {
		return extract.TextExtractionResult{}, common.NewAppError(common.CodeTextReader, "ocr "+filepath.Base(path), err)
	}
	return single(out.Text, MethodImageOCR), nil
}

func single(text, method string) extract.TextExtractionResult {
	return extract.TextExtractionResult{
		Pages:   extract.Pages{1: text},
		Methods: []string{method},
	}
}

// readPDFPages returns the embedded text of every page, in order.
func readPDFPages(path string) ([]string, error) {
	f, rd, err := pdf.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	n := rd.NumPage()
	out := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		p := rd.Page(i)
		if p.V.IsNull() {
			out = append(out, "")
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			// unreadable content streams are treated like scanned pages
			text = ""
		}
		out = append(out, text)
	}
	return out, nil
}

func visibleChars(s string) int {
	n := 0
	for _, r := range s {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}
