package rules

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/joseph-ayodele/doc-extractor/internal/common"
)

// File is the object form of a YAML or JSON rule file.
type File struct {
	Name  string   `json:"name,omitempty" yaml:"name,omitempty"`
	Rules []Record `json:"rules" yaml:"rules"`
}

// LoadJSON reads rules from a JSON document.
func LoadJSON(r io.Reader, source string) ([]Rule, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", source, err)
	}
	return loadStructured(data, source)
}

// LoadYAML reads rules from a YAML document. The document is converted to
// JSON first so both formats share one schema.
func LoadYAML(r io.Reader, source string) ([]Rule, error) {
	var doc any
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("%w: %s is empty", common.ErrInvalidInput, source)
		}
		return nil, fmt.Errorf("%w: parse %s: %v", common.ErrInvalidInput, source, err)
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", common.ErrInvalidInput, source, err)
	}
	return loadStructured(data, source)
}

func loadStructured(data []byte, source string) ([]Rule, error) {
	if err := validateDocument(data); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", common.ErrValidation, source, err)
	}

	var recs []Record
	if len(data) > 0 && firstNonSpace(data) == '[' {
		if err := json.Unmarshal(data, &recs); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", common.ErrInvalidInput, source, err)
		}
	} else {
		var f File
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", common.ErrInvalidInput, source, err)
		}
		recs = f.Rules
	}
	return FromRecords(source, recs)
}

func firstNonSpace(b []byte) byte {
	for _, c := range b {
		switch c {
		case ' ', '\t', '\r', '\n':
			continue
		}
		return c
	}
	return 0
}

// WriteYAML writes rules in the object form accepted by LoadYAML. Context
// terminators are written escaped; yaml.v3 cannot round-trip a value that
// is only a line break.
func WriteYAML(w io.Writer, name string, rs []Rule) error {
	recs := Records(rs)
	for i := range recs {
		recs[i] = recs[i].Escaped()
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(File{Name: name, Rules: recs}); err != nil {
		return fmt.Errorf("encode rules: %w", err)
	}
	return enc.Close()
}
