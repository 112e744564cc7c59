package cmd

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mhoffs/typeahead/internal/filter"
)

//go:embed commands.yaml
var defaultCommandsYAML []byte

// commandDef is one palette entry in a command-set file.
type commandDef struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	// Kind is "command" (default) or "agent".
	Kind string `yaml:"kind,omitempty"`
}

type commandSet struct {
	Commands []commandDef `yaml:"commands"`
}

// loadCommandSet returns the built-in command set overlaid with the
// user's file at path when it exists. User entries replace built-ins
// with the same name; nameless entries are dropped.
func loadCommandSet(path string) ([]commandDef, error) {
	var base commandSet
	if err := yaml.Unmarshal(defaultCommandsYAML, &base); err != nil {
		return nil, fmt.Errorf("failed to parse built-in command set: %w", err)
	}
	defs := base.Commands

	if path == "" {
		return defs, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defs, nil
		}
		return nil, fmt.Errorf("failed to read command set: %w", err)
	}
	var user commandSet
	if err := yaml.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("failed to parse command set: %w", err)
	}
	return mergeCommandDefs(defs, user.Commands), nil
}

func mergeCommandDefs(base, overlay []commandDef) []commandDef {
	out := make([]commandDef, len(base))
	copy(out, base)

	index := make(map[string]int, len(out))
	for i, def := range out {
		index[def.Name] = i
	}
	for _, def := range overlay {
		if def.Name == "" {
			continue
		}
		if i, ok := index[def.Name]; ok {
			out[i] = def
			continue
		}
		index[def.Name] = len(out)
		out = append(out, def)
	}
	return out
}

// commandCandidates converts defs of one kind into candidates.
func commandCandidates(defs []commandDef, kind string) []filter.Candidate {
	var out []filter.Candidate
	for _, def := range defs {
		k := def.Kind
		if k == "" {
			k = "command"
		}
		if k != kind || def.Name == "" {
			continue
		}
		out = append(out, filter.Candidate{
			Text:   def.Name,
			Detail: def.Description,
			Kind:   k,
		})
	}
	return out
}
