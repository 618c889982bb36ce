package server

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/cv-renderer/internal/acquire"
	"github.com/jonathan/cv-renderer/internal/normalize"
	"github.com/jonathan/cv-renderer/internal/schemas"
)

// docxMediaType is the media type of the rendered document.
const docxMediaType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// outputFilename is the suggested filename in the attachment disposition.
const outputFilename = "CV.docx"

// maxUploadBytes caps the in-memory portion of multipart uploads.
const maxUploadBytes = 32 << 20

// RenderRequest represents the JSON request body for /render_cv.
// Exactly one of TemplateURL and TemplateB64 must be set.
type RenderRequest struct {
	TemplateURL string `json:"template_url,omitempty" validate:"omitempty,url"`
	TemplateB64 string `json:"template_b64,omitempty"`
	CVData      string `json:"cv_data" validate:"required"`
}

// Validate validates the RenderRequest using the validator.
func (r *RenderRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// handleRenderCV merges caller-supplied CV data into a template document and
// returns the rendered .docx. Template acquisition and context normalization
// run in parallel; their results feed the renderer.
func (s *Server) handleRenderCV(w http.ResponseWriter, r *http.Request) {
	src, rawData, err := s.parseRenderRequest(r)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	g, gCtx := errgroup.WithContext(r.Context())

	var templateBytes []byte
	var data normalize.Context

	g.Go(func() error {
		var err error
		templateBytes, err = acquire.Acquire(gCtx, src, s.acquireOpts)
		return err
	})

	g.Go(func() error {
		if s.validateContext {
			if err := schemas.ValidateContext(rawData); err != nil {
				return err
			}
		}
		parsed, err := normalize.Parse(rawData)
		if err != nil {
			return err
		}
		data = normalize.Normalize(parsed)
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Printf("Render request rejected: %v", err)
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	output, err := s.renderer.Render(r.Context(), templateBytes, data)
	if err != nil {
		log.Printf("Rendering error: %v", err)
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	w.Header().Set("Content-Type", docxMediaType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", outputFilename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(output); err != nil {
		log.Printf("Error writing rendered document: %v", err)
	}
}

// parseRenderRequest extracts the template source and the raw cv_data string
// from either a JSON body or a multipart upload.
func (s *Server) parseRenderRequest(r *http.Request) (acquire.Source, string, error) {
	contentType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if contentType == "multipart/form-data" {
		return s.parseMultipartRequest(r)
	}
	return s.parseJSONRequest(r)
}

// parseJSONRequest handles the JSON body form of /render_cv.
func (s *Server) parseJSONRequest(r *http.Request) (acquire.Source, string, error) {
	var req RenderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return acquire.Source{}, "", fmt.Errorf("invalid request body: %w", err)
	}

	if err := req.Validate(); err != nil {
		return acquire.Source{}, "", fmt.Errorf("invalid request: %w", err)
	}

	switch {
	case req.TemplateURL != "" && req.TemplateB64 != "":
		return acquire.Source{}, "", fmt.Errorf("template_url and template_b64 are mutually exclusive")
	case req.TemplateURL != "":
		return acquire.URLSource(req.TemplateURL), req.CVData, nil
	case req.TemplateB64 != "":
		return acquire.Base64Source(req.TemplateB64), req.CVData, nil
	default:
		return acquire.Source{}, "", fmt.Errorf("one of template_url or template_b64 is required")
	}
}

// parseMultipartRequest handles the direct-upload form of /render_cv.
// The template arrives as the template_file part; cv_data as a form field.
func (s *Server) parseMultipartRequest(r *http.Request) (acquire.Source, string, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return acquire.Source{}, "", fmt.Errorf("invalid multipart body: %w", err)
	}

	rawData := r.FormValue("cv_data")
	if strings.TrimSpace(rawData) == "" {
		return acquire.Source{}, "", fmt.Errorf("cv_data is required")
	}

	file, header, err := r.FormFile("template_file")
	if err != nil {
		// The upload form may also carry a URL or base64 source instead
		// of a file part.
		if u := r.FormValue("template_url"); u != "" {
			return acquire.URLSource(u), rawData, nil
		}
		if b64 := r.FormValue("template_b64"); b64 != "" {
			return acquire.Base64Source(b64), rawData, nil
		}
		return acquire.Source{}, "", fmt.Errorf("template_file is required")
	}
	defer func() { _ = file.Close() }()

	content, err := io.ReadAll(file)
	if err != nil {
		return acquire.Source{}, "", fmt.Errorf("failed to read uploaded template: %w", err)
	}

	return acquire.UploadSource(header.Filename, content), rawData, nil
}
