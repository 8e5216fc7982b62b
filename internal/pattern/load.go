package pattern

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/pauljbernard/headelf/internal/model"
)

// File is the on-disk pattern document.
//
//	industries:
//	  MANUFACTURING:
//	    - keywords: [manufacturing, oee]
//	      weight: 0.8
type File struct {
	Industries map[string][]ContextPattern `yaml:"industries"`
}

// DefaultPath returns ~/.headelf/patterns.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".headelf", "patterns.yaml")
}

// LoadFile builds a registry from the built-in table with the file's
// industries replacing their built-in patterns. Empty path falls back to
// DefaultPath. A missing file yields the built-in table.
func LoadFile(path string) (*Registry, string, error) {
	if path == "" {
		path = DefaultPath()
	}
	emptyHash := hashOf(nil)
	if path == "" {
		return Builtin(), emptyHash, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Builtin(), emptyHash, nil
		}
		return nil, "", fmt.Errorf("failed to read pattern file: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, "", fmt.Errorf("failed to parse pattern file: %w", err)
	}

	override, err := f.validate()
	if err != nil {
		return nil, "", err
	}

	r := NewRegistry()
	for _, ind := range model.AllIndustries {
		if p, ok := override[ind]; ok {
			r.Register(ind, p)
			continue
		}
		if p, ok := DefaultPatterns[ind]; ok {
			r.Register(ind, p)
		}
	}
	return r, hashOf(data), nil
}

func (f File) validate() (map[model.IndustryVertical][]ContextPattern, error) {
	out := make(map[model.IndustryVertical][]ContextPattern, len(f.Industries))
	var errs []error
	for name, patterns := range f.Industries {
		ind, err := model.ParseIndustry(name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for i, p := range patterns {
			if p.Weight <= 0 || p.Weight > 1 {
				errs = append(errs, fmt.Errorf("%s[%d]: weight %v outside (0,1]", ind, i, p.Weight))
			}
			if len(p.Keywords) == 0 {
				errs = append(errs, fmt.Errorf("%s[%d]: no keywords", ind, i))
			}
		}
		out[ind] = patterns
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid pattern file: %w", errors.Join(errs...))
	}
	return out, nil
}

func hashOf(data []byte) string {
	h := sha256.Sum256(data)
	return "sha256:" + hex.EncodeToString(h[:])
}
