// Package emit persists synthesized artifacts as a skill directory.
package emit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/afero"

	"github.com/codervisor/combo-skills/internal/synth"
)

// File names inside an emitted skill directory.
const (
	BodyFile     = "SKILL.md"
	MetadataFile = "metadata.json"
	ExamplesDir  = "examples"
)

// ErrNoExamples is returned for an artifact without usage examples.
var ErrNoExamples = errors.New("artifact has no usage examples")

// Emitter persists an artifact under a destination directory.
type Emitter interface {
	Emit(ctx context.Context, artifact *synth.Artifact, dest string) (*Result, error)
}

// Result lists what was written.
type Result struct {
	Dir      string   `json:"dir"`
	Files    []string `json:"files"`
	Metadata string   `json:"metadata"`
}

// metadataRecord is the JSON document written next to the body.
type metadataRecord struct {
	Name     string                   `json:"name"`
	Version  string                   `json:"version,omitempty"`
	Examples []string                 `json:"examples"`
	Metadata synth.GenerationMetadata `json:"generation"`
}

// FSEmitter writes artifacts to an afero filesystem.
type FSEmitter struct {
	fs afero.Fs
}

// NewFSEmitter creates an emitter over fs.
func NewFSEmitter(fs afero.Fs) *FSEmitter {
	return &FSEmitter{fs: fs}
}

// NewOSEmitter creates an emitter over the real filesystem.
func NewOSEmitter() *FSEmitter {
	return NewFSEmitter(afero.NewOsFs())
}

// Emit writes <dest>/<name>/SKILL.md, <dest>/<name>/metadata.json and one
// Markdown file per example under <dest>/<name>/examples.
func (e *FSEmitter) Emit(ctx context.Context, artifact *synth.Artifact, dest string) (*Result, error) {
	if artifact == nil {
		return nil, errors.New("no artifact to emit")
	}
	if len(artifact.Examples) == 0 {
		return nil, ErrNoExamples
	}
	name := slug(artifact.Name)
	if name == "" {
		return nil, fmt.Errorf("artifact name %q cannot be used as a directory name", artifact.Name)
	}

	dir := filepath.Join(dest, name)
	result := &Result{Dir: dir}

	if err := e.fs.MkdirAll(filepath.Join(dir, ExamplesDir), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", dir, err)
	}

	write := func(path string, data []byte) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := afero.WriteFile(e.fs, path, data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		result.Files = append(result.Files, path)
		return nil
	}

	if err := write(filepath.Join(dir, BodyFile), []byte(artifact.Body)); err != nil {
		return nil, err
	}

	exampleFiles := make([]string, 0, len(artifact.Examples))
	used := make(map[string]bool)
	for i, ex := range artifact.Examples {
		base := slug(ex.Title)
		if base == "" {
			base = fmt.Sprintf("example-%d", i+1)
		}
		file := base
		for n := 2; used[file]; n++ {
			file = fmt.Sprintf("%s-%d", base, n)
		}
		used[file] = true

		rel := filepath.Join(ExamplesDir, file+".md")
		if err := write(filepath.Join(dir, rel), []byte(ex.Body)); err != nil {
			return nil, err
		}
		exampleFiles = append(exampleFiles, filepath.ToSlash(rel))
	}

	record, err := json.MarshalIndent(metadataRecord{
		Name:     artifact.Name,
		Version:  artifact.Version,
		Examples: exampleFiles,
		Metadata: artifact.Metadata,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode metadata: %w", err)
	}
	result.Metadata = filepath.Join(dir, MetadataFile)
	if err := write(result.Metadata, append(record, '\n')); err != nil {
		return nil, err
	}

	return result, nil
}

var unsafeChars = regexp.MustCompile(`[^a-z0-9._-]+`)

// slug turns a name into a safe single path segment.
func slug(s string) string {
	s = unsafeChars.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "-")
	s = strings.Trim(s, "-.")
	return s
}
