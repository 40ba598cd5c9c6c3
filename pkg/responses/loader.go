package responses

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Intent is one entry of the intents file used both for classifier patterns and replies.
type Intent struct {
	Tag       string   `json:"tag" yaml:"tag"`
	Patterns  []string `json:"patterns" yaml:"patterns"`
	Responses []string `json:"responses" yaml:"responses"`
}

type intentsFile struct {
	Intents []Intent `json:"intents" yaml:"intents"`
}

// Corpus is the parsed intents file.
type Corpus struct {
	Intents []Intent
	Table   Table
}

// Load reads an intents file. Files ending in .yaml or .yml are parsed as YAML,
// everything else as JSON.
func Load(path string) (*Corpus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read intents file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".yaml" || ext == ".yml" {
		return ParseYAML(data)
	}
	return ParseJSON(data)
}

func ParseJSON(data []byte) (*Corpus, error) {
	var f intentsFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse intents json: %w", err)
	}
	return build(f.Intents), nil
}

func ParseYAML(data []byte) (*Corpus, error) {
	var f intentsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse intents yaml: %w", err)
	}
	return build(f.Intents), nil
}

func build(intents []Intent) *Corpus {
	table := make(Table, len(intents))
	kept := make([]Intent, 0, len(intents))
	for _, in := range intents {
		tag := strings.TrimSpace(in.Tag)
		if tag == "" {
			continue
		}
		in.Tag = tag

		var replies []string
		for _, r := range in.Responses {
			if strings.TrimSpace(r) != "" {
				replies = append(replies, r)
			}
		}
		// Entries without replies still train the classifier but stay out of the table.
		if len(replies) > 0 {
			table[tag] = append(table[tag], replies...)
		}
		in.Responses = replies
		kept = append(kept, in)
	}
	return &Corpus{Intents: kept, Table: table}
}
