package types

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Role is the part a generated file plays in a component, derived from its suffix.
type Role string

const (
	RoleLogic  Role = "logic"
	RoleMarkup Role = "markup"
	RoleStyle  Role = "style"
	RoleOther  Role = "other"
)

// DefaultRequiredFiles is the file set every generation must produce.
var DefaultRequiredFiles = []string{"app.component.ts", "app.component.html", "app.component.scss"}

var (
	ErrEmptyFileSet        = errors.New("file set is empty")
	ErrMissingRequiredFile = errors.New("required file missing")
	ErrInvalidFileRecord   = errors.New("file record missing filename or content")
	ErrDuplicateFilename   = errors.New("duplicate filename in file set")
)

// GeneratedFile represents the structure expected from the LLM for each file.
type GeneratedFile struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

// Role reports the artifact role of the file based on its extension.
func (f GeneratedFile) Role() Role {
	return RoleOf(f.Filename)
}

// RoleOf maps a filename suffix to its role.
func RoleOf(filename string) Role {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".ts":
		return RoleLogic
	case ".html":
		return RoleMarkup
	case ".scss", ".css":
		return RoleStyle
	default:
		return RoleOther
	}
}

// FileSet is the ordered output of one generation.
type FileSet []GeneratedFile

// Validate checks the structural invariants: every record is complete,
// filenames are unique and each required filename is present.
func (fs FileSet) Validate(required []string) error {
	if len(fs) == 0 {
		return ErrEmptyFileSet
	}
	seen := make(map[string]struct{}, len(fs))
	for i, f := range fs {
		if strings.TrimSpace(f.Filename) == "" || f.Content == "" {
			return fmt.Errorf("record %d: %w", i, ErrInvalidFileRecord)
		}
		if _, dup := seen[f.Filename]; dup {
			return fmt.Errorf("%s: %w", f.Filename, ErrDuplicateFilename)
		}
		seen[f.Filename] = struct{}{}
	}
	var missing []string
	for _, name := range required {
		if _, ok := seen[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingRequiredFile, strings.Join(missing, ", "))
	}
	return nil
}

// Find returns the first file with the given role.
func (fs FileSet) Find(role Role) (GeneratedFile, bool) {
	for _, f := range fs {
		if f.Role() == role {
			return f, true
		}
	}
	return GeneratedFile{}, false
}

// Get returns the file with the exact filename.
func (fs FileSet) Get(filename string) (GeneratedFile, bool) {
	for _, f := range fs {
		if f.Filename == filename {
			return f, true
		}
	}
	return GeneratedFile{}, false
}

func (fs FileSet) Clone() FileSet {
	if fs == nil {
		return nil
	}
	out := make(FileSet, len(fs))
	copy(out, fs)
	return out
}

// EvaluationResult is the semantic verdict returned by the evaluation stage.
type EvaluationResult struct {
	IsValid     bool     `json:"isValid"`
	Issues      []string `json:"issues"`
	Suggestions []string `json:"suggestions"`
}

// PreviewFilename is the name under which a rendered fragment is stored
// next to the generated files.
const PreviewFilename = "preview.html"

// Artifact is the complete output of one pipeline run.
type Artifact struct {
	ID               string    `json:"id"`
	Description      string    `json:"description"`
	Files            FileSet   `json:"files"`
	RenderedFragment string    `json:"renderedFragment,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}

// StoredFiles is the file list written to persistence: the generated files
// followed by the preview fragment when one was rendered.
func (a Artifact) StoredFiles() FileSet {
	files := a.Files.Clone()
	if a.RenderedFragment != "" {
		files = append(files, GeneratedFile{Filename: PreviewFilename, Content: a.RenderedFragment})
	}
	return files
}

// PipelineState is the externally observable progress of the generation pipeline.
type PipelineState struct {
	RunID        string  `json:"runId,omitempty"`
	IsLoading    bool    `json:"isLoading"`
	Error        string  `json:"error,omitempty"`
	CurrentFiles FileSet `json:"currentFiles"`
	Description  string  `json:"description"`
}
