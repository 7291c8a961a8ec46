package ingest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/doc-extractor/internal/entity"
	"github.com/joseph-ayodele/doc-extractor/internal/extract"
	"github.com/joseph-ayodele/doc-extractor/internal/pipeline"
)

type fakeProcessor struct {
	mu   sync.Mutex
	seen []string
}

func (f *fakeProcessor) ProcessFile(_ context.Context, path string, _ uuid.UUID) (pipeline.Outcome, error) {
	f.mu.Lock()
	f.seen = append(f.seen, filepath.Base(path))
	f.mu.Unlock()
	switch filepath.Base(path) {
	case "broken.pdf":
		return pipeline.Outcome{Document: &entity.Document{ID: uuid.New()}}, errors.New("no text")
	case "dup.txt":
		return pipeline.Outcome{Document: &entity.Document{ID: uuid.New()}, Deduplicated: true}, nil
	}
	return pipeline.Outcome{
		Document: &entity.Document{ID: uuid.New()},
		Results:  []extract.Result{{PageNumber: 1}},
	}, nil
}

func (f *fakeProcessor) names() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]string(nil), f.seen...)
	sort.Strings(out)
	return out
}

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestIngestDirectory(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "a.pdf"))
	touch(t, filepath.Join(root, "broken.pdf"))
	touch(t, filepath.Join(root, "sub", "dup.txt"))
	touch(t, filepath.Join(root, "sub", "notes.md"))
	touch(t, filepath.Join(root, ".hidden", "secret.pdf"))
	touch(t, filepath.Join(root, ".skip.png"))

	t.Run("Should process supported files and skip hidden entries", func(t *testing.T) {
		p := &fakeProcessor{}
		results, stats, err := NewIngestor(p, quiet()).IngestDirectory(context.Background(), root, DirOptions{
			SkipHidden:  true,
			Parallelism: 3,
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"a.pdf", "broken.pdf", "dup.txt"}, p.names())
		assert.Equal(t, uint32(3), stats.Matched)
		assert.Equal(t, uint32(2), stats.Succeeded)
		assert.Equal(t, uint32(1), stats.Deduplicated)
		assert.Equal(t, uint32(1), stats.Failed)
		require.Len(t, results, 3)
		assert.Equal(t, filepath.Join(root, "a.pdf"), results[0].Path)
		assert.Equal(t, 1, results[0].Results)
		assert.Equal(t, "no text", results[1].Err)
		assert.NotEqual(t, uuid.Nil, results[1].DocumentID)
	})

	t.Run("Should honor an explicit extension list", func(t *testing.T) {
		p := &fakeProcessor{}
		_, stats, err := NewIngestor(p, quiet()).IngestDirectory(context.Background(), root, DirOptions{
			IncludeExts: []string{".PDF"},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"a.pdf", "broken.pdf", "secret.pdf"}, p.names())
		assert.Equal(t, uint32(3), stats.Matched)
	})

	t.Run("Should require a root", func(t *testing.T) {
		_, _, err := NewIngestor(&fakeProcessor{}, quiet()).IngestDirectory(context.Background(), " ", DirOptions{})
		assert.Error(t, err)
	})
}

func TestWatcher(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "existing.pdf"))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	paths, _, err := StartWatcher(ctx, WatchConfig{Roots: []string{root}, InitialScan: true, Logger: quiet()})
	require.NoError(t, err)

	select {
	case p := <-paths:
		assert.Equal(t, filepath.Join(root, "existing.pdf"), p)
	case <-time.After(2 * time.Second):
		t.Fatal("initial scan did not emit the existing file")
	}

	touch(t, filepath.Join(root, "new.txt"))
	touch(t, filepath.Join(root, "ignored.md"))
	select {
	case p := <-paths:
		assert.Equal(t, filepath.Join(root, "new.txt"), p)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not emit the new file")
	}

	cancel()
	for range paths {
	}
}

func TestIsHidden(t *testing.T) {
	assert.True(t, IsHidden("/a/.git"))
	assert.False(t, IsHidden("."))
	assert.False(t, IsHidden("/a/b.pdf"))
	assert.True(t, AllowedExt(".HEIC"))
	assert.False(t, AllowedExt("md"))
}
