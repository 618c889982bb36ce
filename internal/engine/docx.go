// Package engine implements a file-based .docx template merge.
//
// A .docx file is a zip archive of XML parts. The engine renders the
// Jinja2-compatible template tags embedded in the document body, headers and
// footers against a context mapping, copies every other archive entry
// verbatim, and writes the merged document to the output path.
package engine

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/flosch/pongo2/v6"
)

// Docx merges context data into .docx templates.
type Docx struct{}

// NewDocx creates a new .docx merge engine.
func NewDocx() *Docx {
	return &Docx{}
}

// Merge loads the template at templatePath, renders its templated XML parts
// against data, and saves the merged document to outputPath.
func (d *Docx) Merge(templatePath string, data map[string]any, outputPath string) error {
	reader, err := zip.OpenReader(templatePath)
	if err != nil {
		return &EngineError{
			Message: "template is not a valid .docx archive",
			Cause:   err,
		}
	}
	defer func() { _ = reader.Close() }()

	var buf bytes.Buffer
	writer := zip.NewWriter(&buf)

	for _, part := range reader.File {
		if err := d.mergePart(writer, part, data); err != nil {
			_ = writer.Close()
			return err
		}
	}

	if err := writer.Close(); err != nil {
		return &EngineError{
			Message: "failed to assemble output archive",
			Cause:   err,
		}
	}

	if err := os.WriteFile(outputPath, buf.Bytes(), 0o600); err != nil {
		return &EngineError{
			Message: "failed to save output document",
			Cause:   err,
		}
	}

	return nil
}

// mergePart writes a single archive entry to the output, rendering it if it
// is a templated XML part.
func (d *Docx) mergePart(writer *zip.Writer, part *zip.File, data map[string]any) error {
	rc, err := part.Open()
	if err != nil {
		return &EngineError{
			Message: fmt.Sprintf("failed to open archive part %s", part.Name),
			Cause:   err,
		}
	}
	defer func() { _ = rc.Close() }()

	content, err := io.ReadAll(rc)
	if err != nil {
		return &EngineError{
			Message: fmt.Sprintf("failed to read archive part %s", part.Name),
			Cause:   err,
		}
	}

	if isTemplatedPart(part.Name) {
		content, err = renderPart(part.Name, content, data)
		if err != nil {
			return err
		}
	}

	out, err := writer.Create(part.Name)
	if err != nil {
		return &EngineError{
			Message: fmt.Sprintf("failed to create archive part %s", part.Name),
			Cause:   err,
		}
	}
	if _, err := out.Write(content); err != nil {
		return &EngineError{
			Message: fmt.Sprintf("failed to write archive part %s", part.Name),
			Cause:   err,
		}
	}

	return nil
}

// isTemplatedPart reports whether an archive entry carries template tags.
// Word stores the body in word/document.xml and headers/footers in
// word/headerN.xml and word/footerN.xml.
func isTemplatedPart(name string) bool {
	if name == "word/document.xml" {
		return true
	}
	if !strings.HasSuffix(name, ".xml") {
		return false
	}
	return strings.HasPrefix(name, "word/header") || strings.HasPrefix(name, "word/footer")
}

// renderPart executes the template tags of one XML part against the context.
func renderPart(name string, content []byte, data map[string]any) ([]byte, error) {
	tpl, err := pongo2.FromBytes(content)
	if err != nil {
		return nil, &EngineError{
			Message: fmt.Sprintf("failed to parse template part %s", name),
			Cause:   err,
		}
	}

	rendered, err := tpl.ExecuteBytes(pongo2.Context(data))
	if err != nil {
		return nil, &EngineError{
			Message: fmt.Sprintf("failed to merge context into %s", name),
			Cause:   err,
		}
	}

	return rendered, nil
}
