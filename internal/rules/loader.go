package rules

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/doc-extractor/internal/common"
)

// LoadFile reads rules from path, choosing the format by extension.
func LoadFile(path string) ([]Rule, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open rules: %w", err)
	}
	defer func() { _ = f.Close() }()

	source := filepath.Base(path)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return LoadXLSX(f, source)
	case ".yaml", ".yml":
		return LoadYAML(f, source)
	case ".json":
		return LoadJSON(f, source)
	}
	return nil, fmt.Errorf("%w: unsupported rule file %q (want .xlsx, .yaml or .json)", common.ErrInvalidInput, source)
}
