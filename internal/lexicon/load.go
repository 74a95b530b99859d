package lexicon

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load returns the default lexicon overlaid with the YAML file at path.
// Lists present in the file replace the built-in list, keyword weights
// are merged key by key. An empty path yields the defaults.
func Load(path string) (*Lexicon, error) {
	lex := Default()
	if strings.TrimSpace(path) == "" {
		return lex, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lexicon file: %w", err)
	}
	return Parse(raw)
}

// Parse overlays YAML bytes on the defaults.
func Parse(raw []byte) (*Lexicon, error) {
	lex := Default()
	if len(bytes.TrimSpace(raw)) == 0 {
		return lex, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(lex); err != nil {
		return nil, fmt.Errorf("decode lexicon yaml: %w", err)
	}
	if err := lex.Validate(); err != nil {
		return nil, err
	}
	return lex, nil
}
