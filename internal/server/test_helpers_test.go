package server

import (
	"archive/zip"
	"bytes"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

// newTestServer starts an httptest server around the routed handler.
func newTestServer(t *testing.T, cfg Config) *httptest.Server {
	t.Helper()

	ts := httptest.NewServer(New(cfg).Handler())
	t.Cleanup(ts.Close)
	return ts
}

// buildTestDocx assembles a minimal .docx template whose body is documentXML.
func buildTestDocx(t *testing.T, documentXML string) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	parts := map[string]string{
		"[Content_Types].xml": `<?xml version="1.0"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"/>`,
		"word/document.xml":   documentXML,
	}
	for name, content := range parts {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	return buf.Bytes()
}

// documentBody extracts word/document.xml from a rendered .docx payload.
func documentBody(t *testing.T, docx []byte) string {
	t.Helper()

	reader, err := zip.NewReader(bytes.NewReader(docx), int64(len(docx)))
	require.NoError(t, err)

	for _, part := range reader.File {
		if part.Name != "word/document.xml" {
			continue
		}
		rc, err := part.Open()
		require.NoError(t, err)
		defer func() { _ = rc.Close() }()
		content, err := io.ReadAll(rc)
		require.NoError(t, err)
		return string(content)
	}

	t.Fatal("word/document.xml not found in rendered document")
	return ""
}
