package definition

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format identifies the text encoding of a definition file.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	// FormatAuto tries YAML first and falls back to JSON.
	FormatAuto Format = ""
)

// ErrEmptyDefinition is returned when a definition file has no content.
var ErrEmptyDefinition = errors.New("definition is empty")

// DetectFormat picks the format from a file extension.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".json":
		return FormatJSON
	default:
		return FormatAuto
	}
}

// Load reads and decodes the definition at path.
func Load(path string) (*Composition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read definition: %w", err)
	}

	def, err := Parse(data, DetectFormat(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return def, nil
}

// Parse decodes a definition from data in the given format.
func Parse(data []byte, format Format) (*Composition, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyDefinition
	}

	switch format {
	case FormatYAML:
		return parseYAML(data)
	case FormatJSON:
		return parseJSON(data)
	}

	def, yamlErr := parseYAML(data)
	if yamlErr == nil {
		return def, nil
	}
	def, jsonErr := parseJSON(data)
	if jsonErr == nil {
		return def, nil
	}
	return nil, fmt.Errorf("not valid YAML (%v) or JSON (%v)", yamlErr, jsonErr)
}

func parseYAML(data []byte) (*Composition, error) {
	var def Composition
	if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&def); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyDefinition
		}
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	return &def, nil
}

func parseJSON(data []byte) (*Composition, error) {
	var def Composition
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return &def, nil
}

// Marshal encodes a definition in the given format. FormatAuto encodes YAML.
func Marshal(def *Composition, format Format) ([]byte, error) {
	if format == FormatJSON {
		return json.MarshalIndent(def, "", "  ")
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(def); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
