package ocr

import (
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
)

type call struct {
	name string
	args []string
}

// fakeRunner records calls and creates the output files the real tools would.
type fakeRunner struct {
	calls  []call
	stdout map[string]string
	fail   map[string]error
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	f.calls = append(f.calls, call{name: name, args: args})
	if err := f.fail[name]; err != nil {
		return nil, []byte("stderr for " + name), err
	}
	switch name {
	case "pdftoppm":
		prefix := args[len(args)-1]
		if err := os.WriteFile(prefix+".png", []byte("png"), 0o644); err != nil {
			return nil, nil, err
		}
	case "magick", "heif-convert":
		if err := os.WriteFile(args[len(args)-1], []byte("png"), 0o644); err != nil {
			return nil, nil, err
		}
	case "tesseract":
		if args[len(args)-1] == "tsv" {
			return []byte(f.stdout["tsv"]), nil, nil
		}
	}
	return []byte(f.stdout[name]), nil, nil
}

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestRecognizerImage(t *testing.T) {
	t.Run("Should normalize tesseract output", func(t *testing.T) {
		fr := &fakeRunner{stdout: map[string]string{"tesseract": "Invoice\t\tNo  42  \r\n\n\n\n-----\nTotal $10\n"}}
		r := NewRecognizer(Config{}, quietLogger(), WithRunner(fr))

		res, err := r.Image(context.Background(), "scan.png")
		require.NoError(t, err)
		assert.Equal(t, "Invoice No 42\n\nTotal $10", res.Text)
		assert.Equal(t, "image-ocr", res.Method)
		assert.Equal(t, "eng", res.Language)
		require.Len(t, fr.calls, 1)
		assert.Equal(t, []string{"scan.png", "stdout", "-l", "eng"}, fr.calls[0].args)
	})

	t.Run("Should convert HEIC and cache the png by content hash", func(t *testing.T) {
		cache := t.TempDir()
		fr := &fakeRunner{stdout: map[string]string{"tesseract": "hello"}}
		r := NewRecognizer(Config{HeicConverter: "magick", ArtifactCacheDir: cache}, quietLogger(), WithRunner(fr))
		ctx := WithContentHash(context.Background(), "abc123")

		_, err := r.Image(ctx, "photo.HEIC")
		require.NoError(t, err)
		assert.FileExists(t, filepath.Join(cache, "abc123.png"))

		_, err = r.Image(ctx, "photo.HEIC")
		require.NoError(t, err)
		converts := 0
		for _, c := range fr.calls {
			if c.name == "magick" {
				converts++
			}
		}
		assert.Equal(t, 1, converts)
	})

	t.Run("Should reject an unknown HEIC converter", func(t *testing.T) {
		r := NewRecognizer(Config{HeicConverter: "paint"}, quietLogger(), WithRunner(&fakeRunner{}))
		_, err := r.Image(context.Background(), "photo.heif")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "HEIC not supported")
	})

	t.Run("Should surface tesseract failures", func(t *testing.T) {
		fr := &fakeRunner{fail: map[string]error{"tesseract": errors.New("exit 1")}}
		r := NewRecognizer(Config{}, quietLogger(), WithRunner(fr))
		_, err := r.Image(context.Background(), "scan.png")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "stderr for tesseract")
	})
}

func TestRecognizerPDFPage(t *testing.T) {
	tsv := "level\tpage_num\tblock_num\tpar_num\tline_num\tword_num\tleft\ttop\twidth\theight\tconf\ttext\n" +
		"1\t1\t0\t0\t0\t0\t0\t0\t100\t100\t-1\t\n" +
		"5\t1\t1\t1\t1\t1\t0\t0\t10\t10\t90\tHello\n" +
		"5\t1\t1\t1\t1\t2\t0\t0\t10\t10\t70\tWorld\n"
	fr := &fakeRunner{stdout: map[string]string{"tesseract": "Hello World", "tsv": tsv}}
	r := NewRecognizer(Config{DPI: 150, PSM: 6, EnableTSVConfidence: true}, quietLogger(), WithRunner(fr))

	res, err := r.PDFPage(context.Background(), "doc.pdf", 3)
	require.NoError(t, err)
	assert.Equal(t, "Hello World", res.Text)
	assert.Equal(t, "pdf-ocr", res.Method)
	assert.InDelta(t, 0.8, res.Confidence, 0.001)

	require.Len(t, fr.calls, 3)
	pp := strings.Join(fr.calls[0].args, " ")
	assert.Contains(t, pp, "-r 150 -png -f 3 -l 3 -singlefile doc.pdf")
	assert.Contains(t, fr.calls[1].args, "--psm")
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "", Normalize(""))
	assert.Equal(t, "a b\nc", Normalize("  a \t b  \r\nc \n"))
	assert.Equal(t, "Due 05/01", Normalize("Due 05/01"))
}
