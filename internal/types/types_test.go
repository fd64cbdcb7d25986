package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completeSet() FileSet {
	return FileSet{
		{Filename: "app.component.ts", Content: "export class AppComponent {}"},
		{Filename: "app.component.html", Content: "<div>hi</div>"},
		{Filename: "app.component.scss", Content: ".a { color: red; }"},
	}
}

func TestFileSetValidate(t *testing.T) {
	tests := []struct {
		name    string
		files   FileSet
		wantErr error
	}{
		{name: "complete set", files: completeSet()},
		{name: "empty set", files: nil, wantErr: ErrEmptyFileSet},
		{
			name:    "missing style",
			files:   completeSet()[:2],
			wantErr: ErrMissingRequiredFile,
		},
		{
			name:    "empty content",
			files:   append(completeSet()[:2:2], GeneratedFile{Filename: "app.component.scss"}),
			wantErr: ErrInvalidFileRecord,
		},
		{
			name:    "duplicate filename",
			files:   append(completeSet(), GeneratedFile{Filename: "app.component.ts", Content: "x"}),
			wantErr: ErrDuplicateFilename,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.files.Validate(DefaultRequiredFiles)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestFileSetValidateNamesMissingFiles(t *testing.T) {
	err := completeSet()[:1].Validate(DefaultRequiredFiles)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "app.component.html")
	assert.Contains(t, err.Error(), "app.component.scss")
}

func TestFileSetFindByRole(t *testing.T) {
	fs := completeSet()
	logic, ok := fs.Find(RoleLogic)
	require.True(t, ok)
	assert.Equal(t, "app.component.ts", logic.Filename)

	markup, ok := fs.Find(RoleMarkup)
	require.True(t, ok)
	assert.Equal(t, "app.component.html", markup.Filename)

	_, ok = FileSet{{Filename: "readme.md", Content: "x"}}.Find(RoleLogic)
	assert.False(t, ok)
}

func TestRoleOf(t *testing.T) {
	assert.Equal(t, RoleStyle, RoleOf("theme.CSS"))
	assert.Equal(t, RoleStyle, RoleOf("app.component.scss"))
	assert.Equal(t, RoleOther, RoleOf("Makefile"))
}

func TestArtifactStoredFiles(t *testing.T) {
	a := Artifact{Files: completeSet()}
	assert.Len(t, a.StoredFiles(), 3)

	a.RenderedFragment = "<div>x</div>"
	stored := a.StoredFiles()
	require.Len(t, stored, 4)
	assert.Equal(t, PreviewFilename, stored[3].Filename)
	assert.Len(t, a.Files, 3, "original file set must not grow")
}
