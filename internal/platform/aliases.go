package platform

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/qtex/pkg/core"
)

// aliasFile is the YAML layout of a vocabulary override:
//
//	macros:
//	  true: [richtig, true]
//	environments:
//	  multichoice: [frage, question]
type aliasFile struct {
	Macros       map[string][]string `yaml:"macros"`
	Environments map[string][]string `yaml:"environments"`
}

// LoadAliases reads a vocabulary override and applies it on top of the
// default vocabulary.
func LoadAliases(path string) (*core.AliasTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseAliases(data)
}

// ParseAliases is LoadAliases on in-memory YAML.
func ParseAliases(data []byte) (*core.AliasTable, error) {
	var f aliasFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("invalid alias file: %w", err)
	}
	for id, spellings := range f.Macros {
		if len(spellings) == 0 {
			return nil, fmt.Errorf("invalid alias file: macro %q has no spellings", id)
		}
	}
	for id, spellings := range f.Environments {
		if len(spellings) == 0 {
			return nil, fmt.Errorf("invalid alias file: environment %q has no spellings", id)
		}
	}
	return core.DefaultAliases().Override(f.Macros, f.Environments), nil
}
