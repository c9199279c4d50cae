// Package catalog loads the benefit program catalog the eligibility matcher
// runs against. Every Source returns a fresh slice the caller may keep.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"

	"advocacy-workers/internal/eligibility"

	"gopkg.in/yaml.v3"
)

const (
	KindReference     = "reference"
	KindYAML          = "yaml"
	KindPostgres      = "postgres"
	KindElasticsearch = "elasticsearch"
)

var (
	ErrCatalogUnavailable = errors.New("CATALOG_UNAVAILABLE")
	ErrEmptyCatalog       = errors.New("EMPTY_CATALOG")
)

type Source interface {
	Programs(ctx context.Context) ([]eligibility.Program, error)
}

// Static serves a fixed list of programs.
type Static struct {
	programs []eligibility.Program
}

func NewStatic(programs []eligibility.Program) *Static {
	return &Static{programs: append([]eligibility.Program(nil), programs...)}
}

// Reference serves the five federal reference programs.
func Reference() *Static {
	return NewStatic(eligibility.ReferencePrograms())
}

func (s *Static) Programs(_ context.Context) ([]eligibility.Program, error) {
	return append([]eligibility.Program(nil), s.programs...), nil
}

// File is the on-disk catalog layout shared by YAML files and CLI input.
type File struct {
	Programs []eligibility.Program `yaml:"programs" json:"programs"`
}

// YAMLFile reads programs from a YAML document on every call, so edits to
// the file are picked up without a restart.
type YAMLFile struct {
	path string
}

func NewYAMLFile(path string) *YAMLFile {
	return &YAMLFile{path: path}
}

func (y *YAMLFile) Programs(_ context.Context) ([]eligibility.Program, error) {
	data, err := os.ReadFile(y.path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrCatalogUnavailable, y.path, err)
	}
	return ParseYAML(data)
}

// ParseYAML decodes a catalog document and validates that every program has an id.
func ParseYAML(data []byte) ([]eligibility.Program, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: decode catalog: %v", ErrCatalogUnavailable, err)
	}
	if len(f.Programs) == 0 {
		return nil, ErrEmptyCatalog
	}
	seen := make(map[string]bool, len(f.Programs))
	for i, p := range f.Programs {
		if p.ID == "" {
			return nil, fmt.Errorf("%w: program %d has no id", ErrCatalogUnavailable, i)
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("%w: duplicate program id %q", ErrCatalogUnavailable, p.ID)
		}
		seen[p.ID] = true
	}
	return f.Programs, nil
}
