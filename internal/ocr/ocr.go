package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joseph-ayodele/doc-extractor/constants"
)

type Config struct {
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	TesseractLang string // default "eng"
	DPI           int    // rasterization DPI for PDF pages, default 300

	TessdataDir         string
	HeicConverter       string
	EnableTSVConfidence bool

	PSM int // e.g., 6 is good for uniform block of text
	OEM int // 1 = LSTM; leave 0 to use default

	ArtifactCacheDir string
}

// Result is the OCR output for one image or one rendered PDF page.
type Result struct {
	Text       string
	Method     string // "image-ocr" | "pdf-ocr"
	Language   string
	Confidence float32 // 0 unless TSV confidence is enabled
	Duration   time.Duration
}

// Recognizer shells out to tesseract (and pdftoppm / a HEIC converter) to
// read text from images and PDF pages.
type Recognizer struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

type Option func(*Recognizer)

// WithRunner replaces the command runner.
func WithRunner(r Runner) Option {
	return func(rc *Recognizer) {
		if r != nil {
			rc.runner = r
		}
	}
}

func NewRecognizer(cfg Config, logger *slog.Logger, opts ...Option) *Recognizer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	r := &Recognizer{cfg: cfg, runner: ExecRunner{Logger: logger}, logger: logger}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Image OCRs a single image file. HEIC/HEIF input is converted to PNG first.
func (r *Recognizer) Image(ctx context.Context, path string) (Result, error) {
	start := time.Now()
	if constants.IsHEIC(filepath.Ext(path)) {
		png, cleanup, err := r.convertHEIC(ctx, path)
		if err != nil {
			r.logger.Error("heic conversion failed", "path", path, "error", err)
			return Result{}, err
		}
		defer cleanup()
		path = png
	}
	res, err := r.recognize(ctx, path)
	res.Method = "image-ocr"
	res.Duration = time.Since(start)
	return res, err
}

// PDFPage renders one 1-based page of a PDF and OCRs it.
func (r *Recognizer) PDFPage(ctx context.Context, path string, page int) (Result, error) {
	start := time.Now()
	tmpDir, err := os.MkdirTemp("", "docx-pp-*")
	if err != nil {
		return Result{}, err
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			r.logger.Warn("failed to remove temp dir", "dir", tmpDir, "error", err)
		}
	}()

	prefix := filepath.Join(tmpDir, "page")
	n := strconv.Itoa(page)
	// pdftoppm -r 300 -png -f n -l n -singlefile <in.pdf> <tmp/page>
	_, errb, err := r.runner.Run(ctx, r.cfg.Pdftoppm,
		"-r", strconv.Itoa(r.cfg.DPI), "-png", "-f", n, "-l", n, "-singlefile", path, prefix)
	if err != nil {
		return Result{}, fmt.Errorf("pdftoppm page %d: %w: %s", page, err, tail(errb, 512))
	}
	img := prefix + ".png"
	if _, err := os.Stat(img); err != nil {
		return Result{}, fmt.Errorf("pdftoppm produced no image for page %d", page)
	}

	res, err := r.recognize(ctx, img)
	res.Method = "pdf-ocr"
	res.Duration = time.Since(start)
	return res, err
}

func (r *Recognizer) recognize(ctx context.Context, img string) (Result, error) {
	res := Result{Language: r.cfg.TesseractLang}
	// tesseract <file> stdout -l <lang>
	out, errb, err := r.runner.Run(ctx, r.cfg.Tesseract, r.args(img)...)
	if err != nil {
		return res, fmt.Errorf("tesseract: %w: %s", err, tail(errb, 512))
	}
	res.Text = Normalize(string(out))

	if r.cfg.EnableTSVConfidence {
		tsv, _, err := r.runner.Run(ctx, r.cfg.Tesseract, append(r.args(img), "tsv")...)
		if err != nil {
			r.logger.Warn("tesseract tsv failed", "image", img, "error", err)
		} else {
			res.Confidence = meanTSVConfidence(string(tsv))
		}
	}
	return res, nil
}

func (r *Recognizer) args(img string) []string {
	args := []string{img, "stdout", "-l", r.cfg.TesseractLang}
	if r.cfg.PSM > 0 {
		args = append(args, "--psm", strconv.Itoa(r.cfg.PSM))
	}
	if r.cfg.OEM > 0 {
		args = append(args, "--oem", strconv.Itoa(r.cfg.OEM))
	}
	if r.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", r.cfg.TessdataDir)
	}
	return args
}
