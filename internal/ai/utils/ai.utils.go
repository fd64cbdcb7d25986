package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"k8s.io/klog/v2"

	"libgenui_server/internal/types"
)

// SaveFilesDisk writes each file under dir, creating subdirectories named in
// filenames. Filenames that would escape dir are rejected.
func SaveFilesDisk(dir string, files types.FileSet) error {
	root, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolve output dir: %w", err)
	}

	filesCount := 0
	for _, f := range files {
		filePath := filepath.Join(root, filepath.FromSlash(f.Filename))
		if filePath != root && !strings.HasPrefix(filePath, root+string(os.PathSeparator)) {
			return fmt.Errorf("file %q escapes output dir", f.Filename)
		}

		if err := os.MkdirAll(filepath.Dir(filePath), os.ModePerm); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", f.Filename, err)
		}
		if err := os.WriteFile(filePath, []byte(f.Content), 0o644); err != nil {
			return fmt.Errorf("failed to write file %s: %w", filePath, err)
		}

		klog.V(2).Infof("File saved: %s", filePath)
		filesCount++
	}
	klog.Infof("Saved %d files to %s", filesCount, root)
	return nil
}
