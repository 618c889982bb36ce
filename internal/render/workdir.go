package render

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// workdir is a scoped, exclusively-owned filesystem region holding the
// template and output artifacts during one engine invocation. The directory
// name carries a fresh UUID so concurrent renders never share paths.
type workdir struct {
	dir string
}

// newWorkdir creates a unique working directory under baseDir.
// An empty baseDir falls back to the system temp directory.
func newWorkdir(baseDir string) (*workdir, error) {
	if baseDir == "" {
		baseDir = os.TempDir()
	}

	dir := filepath.Join(baseDir, fmt.Sprintf("cvrender-%s", uuid.New()))
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create working directory: %w", err)
	}

	return &workdir{dir: dir}, nil
}

// TemplatePath is the slot for the materialized template.
func (w *workdir) TemplatePath() string {
	return filepath.Join(w.dir, "template.docx")
}

// OutputPath is the slot for the merged document.
func (w *workdir) OutputPath() string {
	return filepath.Join(w.dir, "output.docx")
}

// Release removes the working directory and every artifact inside it.
// Safe to call from a defer on all exit paths.
func (w *workdir) Release() {
	if err := os.RemoveAll(w.dir); err != nil {
		log.Printf("Failed to remove working directory %s: %v", w.dir, err)
	}
}
