package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
)

// GroupEntry names a catalog identifier and the args its module is built
// and rendered with.
type GroupEntry struct {
	Type string         `json:"type"`
	Args map[string]any `json:"args,omitempty"`
}

// Groups maps a group name to its entries, in registration order.
type Groups map[string][]GroupEntry

// Names returns the group names in lexical order.
func (g Groups) Names() []string {
	names := make([]string, 0, len(g))
	for name := range g {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type groupsFile struct {
	Groups map[string][]any `json:"groups" yaml:"groups" toml:"groups"`
}

// LoadGroups reads a groups file. The format follows the extension: .yaml
// or .yml, .toml, or .json.
func LoadGroups(path string) (Groups, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read groups file: %w", err)
	}
	return ParseGroups(data, filepath.Ext(path))
}

// ParseGroups decodes a groups document in the format named by ext.
func ParseGroups(data []byte, ext string) (Groups, error) {
	var raw groupsFile
	var err error

	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &raw)
	case ".toml":
		err = toml.Unmarshal(data, &raw)
	case ".json":
		err = sonic.Unmarshal(data, &raw)
	default:
		return nil, fmt.Errorf("unsupported groups format %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse groups: %w", err)
	}

	groups := make(Groups, len(raw.Groups))
	for name, items := range raw.Groups {
		if name == "" {
			return nil, fmt.Errorf("group name cannot be empty")
		}
		entries := make([]GroupEntry, 0, len(items))
		for i, item := range items {
			entry, err := normalizeEntry(item)
			if err != nil {
				return nil, fmt.Errorf("group %q entry %d: %w", name, i, err)
			}
			entries = append(entries, entry)
		}
		groups[name] = entries
	}
	return groups, nil
}

func normalizeEntry(item any) (GroupEntry, error) {
	switch v := item.(type) {
	case string:
		if v == "" {
			return GroupEntry{}, fmt.Errorf("empty module type")
		}
		return GroupEntry{Type: v}, nil
	case map[string]any:
		typ, _ := v["type"].(string)
		if typ == "" {
			return GroupEntry{}, fmt.Errorf("missing module type")
		}
		entry := GroupEntry{Type: typ}
		switch args := v["args"].(type) {
		case nil:
		case map[string]any:
			entry.Args = args
		default:
			return GroupEntry{}, fmt.Errorf("args of %s must be a mapping, got %T", typ, args)
		}
		return entry, nil
	default:
		return GroupEntry{}, fmt.Errorf("entry must be a type name or a mapping, got %T", item)
	}
}
