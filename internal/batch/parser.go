package batch

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/goccy/go-yaml/parser"
	"github.com/mitchellh/mapstructure"
)

type Entry struct {
	Name       string `json:"name" mapstructure:"name"`
	Expression string `json:"expression" mapstructure:"expression"`
}

func Load(filePath string) ([]Entry, error) {
	var parse func(io.Reader) ([]Entry, error)
	switch filepath.Ext(filePath) {
	case ".json":
		parse = ParseJSON
	case ".yaml", ".yml":
		parse = ParseYAML
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", filePath)
	}

	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("os.Open(%q): %w", filePath, err)
	}
	defer f.Close()

	entries, err := parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filePath, err)
	}
	return entries, nil
}

func ParseYAML(r io.Reader) ([]Entry, error) {
	yamlBytes, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("io.ReadAll: %w", err)
	}

	// walk the AST instead of converting to JSON so that unquoted literals
	// such as 010 or 0x1F keep their source text
	file, err := parser.ParseBytes(yamlBytes, 0)
	if err != nil {
		return nil, fmt.Errorf("parser.ParseBytes: %w", err)
	}

	var def any
	switch len(file.Docs) {
	case 0:
	case 1:
		def, err = decodeNode(file.Docs[0].Body)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("expected a single document but got %d", len(file.Docs))
	}

	return compileEntries(def)
}

func ParseJSON(r io.Reader) ([]Entry, error) {
	decoder := json.NewDecoder(r)
	decoder.UseNumber()

	var def any
	if err := decoder.Decode(&def); err != nil {
		return nil, fmt.Errorf("json.Decode: %w", err)
	}

	return compileEntries(def)
}

func compileEntries(def any) ([]Entry, error) {
	var list []any
	switch v := def.(type) {
	case nil:
		return nil, nil

	case []any:
		list = v

	case map[string]any:
		expressions, ok := v["expressions"]
		if !ok {
			return nil, fmt.Errorf("missing %q", "expressions")
		}
		if expressions == nil {
			return nil, nil
		}
		list, ok = expressions.([]any)
		if !ok {
			return nil, fmt.Errorf("expressions: expected a list but got %T", expressions)
		}

	default:
		return nil, fmt.Errorf("expected a list or a map but got %T", def)
	}

	entries := make([]Entry, len(list))
	for i, item := range list {
		entry, err := compileEntry(item)
		if err != nil {
			return nil, fmt.Errorf("expressions[%d]: %w", i, err)
		}
		if entry.Name == "" {
			entry.Name = fmt.Sprintf("#%d", i+1)
		}
		entries[i] = entry
	}
	return entries, nil
}

func compileEntry(item any) (Entry, error) {
	switch v := item.(type) {
	case string:
		return Entry{Expression: v}, nil

	case json.Number:
		return Entry{Expression: v.String()}, nil

	case map[string]any:
		var entry Entry
		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			ErrorUnused: true,
			Result:      &entry,
		})
		if err != nil {
			return Entry{}, err
		}
		if err := decoder.Decode(v); err != nil {
			return Entry{}, err
		}
		return entry, nil

	default:
		return Entry{}, fmt.Errorf("unknown type: %T", item)
	}
}
