// Package render orchestrates the template merge: it materializes template
// bytes into a scoped working area, invokes the merge engine, and reads back
// the rendered document.
package render

import (
	"context"
	"os"

	"github.com/jonathan/cv-renderer/internal/normalize"
)

// Engine is the file-based contract of the external templating engine.
type Engine interface {
	Merge(templatePath string, data map[string]any, outputPath string) error
}

// Renderer merges normalized CV data into document templates.
type Renderer struct {
	engine  Engine
	baseDir string
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithBaseDir places working areas under dir instead of the system temp
// directory. Used by tests to observe cleanup.
func WithBaseDir(dir string) Option {
	return func(r *Renderer) {
		r.baseDir = dir
	}
}

// New creates a Renderer backed by the given engine.
func New(engine Engine, opts ...Option) *Renderer {
	r := &Renderer{engine: engine}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render merges data into templateBytes and returns the rendered document.
// The working area is unique per call and removed on every exit path; no
// partial document is ever returned. Engine failures surface as *Error.
func (r *Renderer) Render(ctx context.Context, templateBytes []byte, data normalize.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, &Error{Message: "render canceled", Cause: err}
	}

	wd, err := newWorkdir(r.baseDir)
	if err != nil {
		return nil, &Error{Message: "failed to acquire working area", Cause: err}
	}
	defer wd.Release()

	if err := os.WriteFile(wd.TemplatePath(), templateBytes, 0o600); err != nil {
		return nil, &Error{Message: "failed to materialize template", Cause: err}
	}

	if err := r.engine.Merge(wd.TemplatePath(), data, wd.OutputPath()); err != nil {
		return nil, &Error{Message: "document rendering failed", Cause: err}
	}

	output, err := os.ReadFile(wd.OutputPath())
	if err != nil {
		return nil, &Error{Message: "failed to read rendered document", Cause: err}
	}

	return output, nil
}
