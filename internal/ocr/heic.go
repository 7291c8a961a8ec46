package ocr

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

type ctxKey string

const ctxKeyContentHash ctxKey = "ocr.content_hash_hex"

// WithContentHash stores the hex-encoded SHA256 of the file being processed so
// converted artifacts can be cached under it.
func WithContentHash(ctx context.Context, hex string) context.Context {
	return context.WithValue(ctx, ctxKeyContentHash, hex)
}

func contentHashFromCtx(ctx context.Context) string {
	v, _ := ctx.Value(ctxKeyContentHash).(string)
	return v
}

// convertHEIC converts a HEIC/HEIF file to PNG with the configured converter.
// With a content hash in ctx and a cache dir set, the PNG is kept at
// {cacheDir}/{hash}.png and reused; otherwise a temp file is returned together
// with a cleanup func.
func (r *Recognizer) convertHEIC(ctx context.Context, in string) (string, func(), error) {
	noop := func() {}
	hash := contentHashFromCtx(ctx)
	cached := ""
	if r.cfg.ArtifactCacheDir != "" && hash != "" {
		cached = filepath.Join(r.cfg.ArtifactCacheDir, hash+".png")
		if st, err := os.Stat(cached); err == nil && !st.IsDir() {
			r.logger.Debug("using cached heic->png", "cache", cached)
			return cached, noop, nil
		}
		if err := os.MkdirAll(r.cfg.ArtifactCacheDir, 0o755); err != nil {
			return "", noop, err
		}
	}

	tmpDir, err := os.MkdirTemp("", "docx-heic-*")
	if err != nil {
		return "", noop, err
	}
	cleanup := func() { _ = os.RemoveAll(tmpDir) }
	out := filepath.Join(tmpDir, "page.png")

	var errb []byte
	switch r.cfg.HeicConverter {
	case "heif-convert":
		_, errb, err = r.runner.Run(ctx, "heif-convert", in, out)
	case "magick":
		_, errb, err = r.runner.Run(ctx, "magick", in, out)
	case "sips":
		_, errb, err = r.runner.Run(ctx, "sips", "-s", "format", "png", in, "--out", out)
	default:
		cleanup()
		return "", noop, fmt.Errorf("HEIC not supported: set ocr heic converter to one of: heif-convert | magick | sips")
	}
	if err != nil {
		cleanup()
		return "", noop, fmt.Errorf("%s failed: %w: %s", r.cfg.HeicConverter, err, tail(errb, 512))
	}
	if _, statErr := os.Stat(out); statErr != nil {
		cleanup()
		return "", noop, fmt.Errorf("HEIC conversion produced no output: %w", statErr)
	}
	if cached == "" {
		return out, cleanup, nil
	}

	defer cleanup()
	if err := os.Rename(out, cached); err != nil {
		if err := copyFile(out, cached); err != nil {
			return "", noop, err
		}
	}
	r.logger.Debug("cached heic->png", "cache", cached)
	return cached, noop, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
