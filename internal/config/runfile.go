package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/dgallion1/filingdigest/internal/summarize"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed runfile.schema.json
var runFileSchema []byte

var compileRunFileSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("runfile.schema.json", bytes.NewReader(runFileSchema)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	return compiler.Compile("runfile.schema.json")
})

// RunFile is a batch run description: what to summarize and where.
type RunFile struct {
	InfoTypes       []summarize.InfoType
	DataDirectory   string
	OpenAIKey       string
	OutputDirectory string
	MarkerSet       string
}

type runFileJSON struct {
	InfoDict        json.RawMessage `json:"info_dict"`
	DataDirectory   string          `json:"data_directory"`
	OpenAIKey       string          `json:"openai_key"`
	OutputDirectory string          `json:"output_directory"`
	MarkerSet       string          `json:"marker_set"`
}

// LoadRunFile reads and validates a run file from disk.
func LoadRunFile(path string) (RunFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RunFile{}, fmt.Errorf("read run file: %w", err)
	}
	rf, err := ParseRunFile(data)
	if err != nil {
		return RunFile{}, fmt.Errorf("%s: %w", path, err)
	}
	return rf, nil
}

// ParseRunFile validates data against the run file schema and decodes it.
func ParseRunFile(data []byte) (RunFile, error) {
	schema, err := compileRunFileSchema()
	if err != nil {
		return RunFile{}, fmt.Errorf("compile run file schema: %w", err)
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return RunFile{}, fmt.Errorf("decode run file: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return RunFile{}, fmt.Errorf("invalid run file: %w", err)
	}

	var raw runFileJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return RunFile{}, fmt.Errorf("decode run file: %w", err)
	}
	infos, err := summarize.ParseInfoTypes(raw.InfoDict)
	if err != nil {
		return RunFile{}, err
	}
	return RunFile{
		InfoTypes:       infos,
		DataDirectory:   raw.DataDirectory,
		OpenAIKey:       raw.OpenAIKey,
		OutputDirectory: raw.OutputDirectory,
		MarkerSet:       raw.MarkerSet,
	}, nil
}

// Apply overlays non-empty run file settings onto cfg.
func (rf RunFile) Apply(cfg Config) Config {
	if rf.OpenAIKey != "" {
		cfg.OpenAIAPIKey = rf.OpenAIKey
	}
	if rf.OutputDirectory != "" {
		cfg.OutputDir = rf.OutputDirectory
	}
	if rf.MarkerSet != "" {
		cfg.MarkerSet = rf.MarkerSet
	}
	return cfg
}

// Summarizer returns the provider settings for the configured summarizer.
func (c Config) Summarizer() summarize.ProviderConfig {
	if c.Provider == "anthropic" {
		return summarize.ProviderConfig{
			Provider: c.Provider,
			APIKey:   c.AnthropicAPIKey,
			Model:    c.AnthropicModel,
			Timeout:  c.LLMTimeout,
		}
	}
	return summarize.ProviderConfig{
		Provider: c.Provider,
		APIKey:   c.OpenAIAPIKey,
		Model:    c.OpenAIModel,
		BaseURL:  c.OpenAIBaseURL,
		Timeout:  c.LLMTimeout,
	}
}
