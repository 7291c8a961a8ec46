package common

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestValidator(t *testing.T) {
	t.Run("Should collect every failure", func(t *testing.T) {
		v := NewValidator().
			Field("name", "  ", Required).
			Field("format", "xml", OneOf("text", "json")).
			Field("short", "abcdef", MaxLength(3)).
			Check(false, "custom", 1, "is wrong")

		require.True(t, v.HasErrors())
		assert.Len(t, v.Errors(), 4)
		assert.True(t, errors.Is(v.Error(), ErrValidation))
		assert.True(t, IsValidation(v.Error()))
		assert.Contains(t, v.ErrorMessage(), `format must be one of text, json (got "xml")`)
	})

	t.Run("Should pass valid input", func(t *testing.T) {
		v := NewValidator().
			Field("name", "ok", Required, MaxLength(10)).
			Field("format", "JSON", OneOf("text", "json")).
			Field("workers", 3, AtLeast(1))
		assert.NoError(t, v.Error())
	})
}

func TestToStatus(t *testing.T) {
	cases := []struct {
		err  error
		want codes.Code
	}{
		{fmt.Errorf("doc: %w", ErrNotFound), codes.NotFound},
		{fmt.Errorf("rules: %w", ErrValidation), codes.InvalidArgument},
		{ErrUnsupported, codes.InvalidArgument},
		{context.DeadlineExceeded, codes.DeadlineExceeded},
		{errors.New("boom"), codes.Internal},
		{status.Error(codes.AlreadyExists, "dup"), codes.AlreadyExists},
	}
	for _, tc := range cases {
		t.Run("Should map "+tc.err.Error(), func(t *testing.T) {
			assert.Equal(t, tc.want, status.Code(ToStatus(tc.err)))
		})
	}
	assert.NoError(t, ToStatus(nil))
}

func TestAppError(t *testing.T) {
	err := NewAppError(CodeConfig, "bad", ErrInvalidInput)
	assert.Equal(t, "CONFIG_ERROR: bad: invalid input", err.Error())
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestConfig(t *testing.T) {
	t.Run("Should load defaults that validate", func(t *testing.T) {
		cfg := LoadConfig()
		assert.Equal(t, DriverSQLite, cfg.Database.Driver)
		assert.Equal(t, 50, cfg.OCR.MinTextChars)
		assert.NoError(t, cfg.Validate())
	})

	t.Run("Should read environment overrides", func(t *testing.T) {
		t.Setenv("EXTRACT_PARALLELISM", "4")
		t.Setenv("PROCESS_TIMEOUT", "90s")
		cfg := LoadConfig()
		assert.Equal(t, 4, cfg.Extraction.Parallelism)
		assert.Equal(t, 90*time.Second, cfg.Server.ProcessTimeout)
	})

	t.Run("Should layer viper settings over defaults", func(t *testing.T) {
		t.Setenv("DOCX_DATABASE_DRIVER", "postgres")
		v := viper.New()
		SetDefaults(v)
		v.Set("log.format", "json")

		cfg := ConfigFromViper(v)
		assert.Equal(t, DriverPostgres, cfg.Database.Driver)
		assert.Equal(t, "json", cfg.Log.Format)
		assert.Equal(t, 2, cfg.Server.Workers)
	})

	t.Run("Should reject unknown drivers", func(t *testing.T) {
		cfg := LoadConfig()
		cfg.Database.Driver = "mysql"
		cfg.Server.Workers = 0
		err := cfg.Validate()
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidInput))
		assert.Contains(t, err.Error(), "database.driver must be one of sqlite, postgres")
		assert.Contains(t, err.Error(), "server.workers must be at least 1")
	})
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{Level: "warn", Format: "json"}, &buf)
	logger.Info("hidden")
	logger.Warn("shown", "k", "v")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)

	assert.Equal(t, slog.LevelDebug, ParseLevel(" DEBUG "))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestContextLogger(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, nil))

	ContextLogger(context.Background(), base).Info("plain")
	assert.NotContains(t, buf.String(), "request_id")
	assert.NotContains(t, buf.String(), "document_id")

	buf.Reset()
	ctx := WithDocumentID(WithRequestID(context.Background(), "req-1"), "doc-7")
	ContextLogger(ctx, base).Info("tagged")
	assert.Contains(t, buf.String(), "request_id=req-1")
	assert.Contains(t, buf.String(), "document_id=doc-7")
	assert.Equal(t, "doc-7", DocumentIDFromContext(ctx))
}
