package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// templateServer serves the given bytes as a template download.
func templateServer(t *testing.T, template []byte) *httptest.Server {
	t.Helper()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", docxMediaType)
		_, _ = w.Write(template)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func postRenderJSON(t *testing.T, ts *httptest.Server, body RenderRequest) *http.Response {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(ts.URL+"/render_cv", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func readBody(t *testing.T, resp *http.Response) []byte {
	t.Helper()

	var buf bytes.Buffer
	_, err := buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	return buf.Bytes()
}

func TestRenderCV_URLSource(t *testing.T) {
	template := buildTestDocx(t, `<w:t>[{{ candidate.first_name }}][{{ candidate.last_name }}][{{ target_title }}]</w:t>`)
	backend := templateServer(t, template)
	ts := newTestServer(t, Config{})

	resp := postRenderJSON(t, ts, RenderRequest{
		TemplateURL: backend.URL + "/template.docx",
		CVData:      `{"candidate": {"first_name": "Ada"}}`,
	})

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, docxMediaType, resp.Header.Get("Content-Type"))
	assert.Equal(t, `attachment; filename="CV.docx"`, resp.Header.Get("Content-Disposition"))

	// Missing fields render as empty strings, not errors.
	body := documentBody(t, readBody(t, resp))
	assert.Contains(t, body, "[Ada][][]")
}

func TestRenderCV_Base64Source(t *testing.T) {
	template := buildTestDocx(t, `<w:t>{{ target_title }}</w:t>`)
	ts := newTestServer(t, Config{})

	resp := postRenderJSON(t, ts, RenderRequest{
		TemplateB64: base64.StdEncoding.EncodeToString(template),
		CVData:      `{"target_title": "Platform Engineer"}`,
	})

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, documentBody(t, readBody(t, resp)), "Platform Engineer")
}

func TestRenderCV_MultipartUpload(t *testing.T) {
	template := buildTestDocx(t, `<w:t>{{ candidate.first_name }}</w:t>`)
	ts := newTestServer(t, Config{})

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("template_file", "template.docx")
	require.NoError(t, err)
	_, err = part.Write(template)
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("cv_data", `{"candidate": {"first_name": "Grace"}}`))
	require.NoError(t, mw.Close())

	resp, err := http.Post(ts.URL+"/render_cv", mw.FormDataContentType(), &body)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, documentBody(t, readBody(t, resp)), "Grace")
}

func TestRenderCV_MultipartUploadRejectsWrongExtension(t *testing.T) {
	ts := newTestServer(t, Config{})

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("template_file", "template.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("pdf bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("cv_data", `{}`))
	require.NoError(t, mw.Close())

	resp, err := http.Post(ts.URL+"/render_cv", mw.FormDataContentType(), &body)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRenderCV_MissingTemplateSource(t *testing.T) {
	ts := newTestServer(t, Config{})

	resp := postRenderJSON(t, ts, RenderRequest{CVData: `{}`})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRenderCV_BothTemplateSources(t *testing.T) {
	ts := newTestServer(t, Config{})

	resp := postRenderJSON(t, ts, RenderRequest{
		TemplateURL: "http://example.com/t.docx",
		TemplateB64: "AAAA",
		CVData:      `{}`,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRenderCV_InvalidTemplateURL(t *testing.T) {
	ts := newTestServer(t, Config{})

	resp := postRenderJSON(t, ts, RenderRequest{
		TemplateURL: "not a url at all",
		CVData:      `{}`,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRenderCV_TemplateDownload404(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(backend.Close)
	ts := newTestServer(t, Config{})

	resp := postRenderJSON(t, ts, RenderRequest{
		TemplateURL: backend.URL + "/missing.docx",
		CVData:      `{}`,
	})

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(readBody(t, resp)), "404")
}

func TestRenderCV_InvalidCVData(t *testing.T) {
	backend := templateServer(t, buildTestDocx(t, `<w:t>ok</w:t>`))
	ts := newTestServer(t, Config{})

	for _, cvData := range []string{`not json`, `["array"]`, `"scalar"`} {
		resp := postRenderJSON(t, ts, RenderRequest{
			TemplateURL: backend.URL + "/template.docx",
			CVData:      cvData,
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "cv_data %q should be rejected", cvData)
	}
}

func TestRenderCV_InvalidBase64(t *testing.T) {
	ts := newTestServer(t, Config{})

	resp := postRenderJSON(t, ts, RenderRequest{
		TemplateB64: "!!! not base64 !!!",
		CVData:      `{}`,
	})

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(readBody(t, resp)), "invalid encoding")
}

func TestRenderCV_CorruptTemplateIsServerError(t *testing.T) {
	ts := newTestServer(t, Config{})

	resp := postRenderJSON(t, ts, RenderRequest{
		TemplateB64: base64.StdEncoding.EncodeToString([]byte("not a zip archive")),
		CVData:      `{}`,
	})

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestRenderCV_MalformedTagIsServerError(t *testing.T) {
	template := buildTestDocx(t, `<w:t>{% for broken %}</w:t>`)
	ts := newTestServer(t, Config{})

	resp := postRenderJSON(t, ts, RenderRequest{
		TemplateB64: base64.StdEncoding.EncodeToString(template),
		CVData:      `{}`,
	})

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestRenderCV_StrictValidationRejectsWrongShape(t *testing.T) {
	backend := templateServer(t, buildTestDocx(t, `<w:t>ok</w:t>`))
	ts := newTestServer(t, Config{ValidateContext: true})

	resp := postRenderJSON(t, ts, RenderRequest{
		TemplateURL: backend.URL + "/template.docx",
		CVData:      `{"candidate": "Ada Lovelace"}`,
	})

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRenderCV_StrictValidationDisabledRepairsShape(t *testing.T) {
	// Without strict validation, a wrong-shaped candidate is repaired to the
	// default object rather than rejected.
	template := buildTestDocx(t, `<w:t>[{{ candidate.first_name }}]</w:t>`)
	ts := newTestServer(t, Config{})

	resp := postRenderJSON(t, ts, RenderRequest{
		TemplateB64: base64.StdEncoding.EncodeToString(template),
		CVData:      `{"candidate": "Ada Lovelace"}`,
	})

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, documentBody(t, readBody(t, resp)), "[]")
}
