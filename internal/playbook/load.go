package playbook

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pauljbernard/headelf/internal/industry"
	"github.com/pauljbernard/headelf/internal/model"
)

//go:embed playbooks/*.yaml
var builtinFS embed.FS

// FileName returns the playbook file name for an industry, e.g.
// "finance_insurance.yaml".
func FileName(ind model.IndustryVertical) string {
	return strings.ToLower(string(ind)) + ".yaml"
}

// DefaultDir returns ~/.headelf/playbooks.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".headelf", "playbooks")
}

// Builtin parses the embedded playbook for an industry.
func Builtin(ind model.IndustryVertical) (*Playbook, error) {
	data, err := builtinFS.ReadFile("playbooks/" + FileName(ind))
	if err != nil {
		return nil, fmt.Errorf("no built-in playbook for %s", ind)
	}
	return parse(data, ind)
}

// Load returns the playbook for an industry. A file in dir overrides the
// built-in one; empty dir uses DefaultDir.
func Load(dir string, ind model.IndustryVertical) (*Playbook, error) {
	if dir == "" {
		dir = DefaultDir()
	}
	if dir != "" {
		data, err := os.ReadFile(filepath.Join(dir, FileName(ind)))
		if err == nil {
			return parse(data, ind)
		}
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read playbook for %s: %w", ind, err)
		}
	}
	return Builtin(ind)
}

// LoadAll loads a playbook for every industry in canonical order.
func LoadAll(dir string) ([]*Playbook, error) {
	out := make([]*Playbook, 0, len(model.AllIndustries))
	for _, ind := range model.AllIndustries {
		p, err := Load(dir, ind)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// Registrar accepts handlers; *engine.Engine satisfies it.
type Registrar interface {
	RegisterHandler(model.IndustryVertical, industry.Handler)
}

// RegisterAll loads every playbook and registers it with r.
func RegisterAll(r Registrar, dir string) error {
	books, err := LoadAll(dir)
	if err != nil {
		return err
	}
	for _, p := range books {
		r.RegisterHandler(p.Industry, p)
	}
	return nil
}

func parse(data []byte, ind model.IndustryVertical) (*Playbook, error) {
	var p Playbook
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse playbook for %s: %w", ind, err)
	}
	if p.Industry == "" {
		p.Industry = ind
	}
	if p.Industry != ind {
		return nil, fmt.Errorf("playbook for %s declares industry %s", ind, p.Industry)
	}
	if err := Validate(&p); err != nil {
		return nil, fmt.Errorf("invalid playbook: %w", err)
	}
	return &p, nil
}
