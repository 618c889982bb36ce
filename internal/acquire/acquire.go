// Package acquire obtains raw template bytes from one of the supported
// template sources: a remote URL, an inline base64 payload, or a direct
// file upload.
package acquire

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"
)

// DefaultTimeout is the default timeout for template downloads.
const DefaultTimeout = 20 * time.Second

// DefaultUserAgent is the user agent string for template downloads.
const DefaultUserAgent = "Mozilla/5.0 (compatible; CVRenderer/1.0)"

// MaxTemplateBytes caps the size of a downloaded or uploaded template.
const MaxTemplateBytes = 16 << 20 // 16 MiB

// Kind identifies the acquisition strategy for a template source.
type Kind int

const (
	// KindURL fetches the template over HTTP(S).
	KindURL Kind = iota
	// KindBase64 decodes an inline base64 payload.
	KindBase64
	// KindUpload uses bytes from a direct file upload.
	KindUpload
)

// String returns the source kind name used in error messages.
func (k Kind) String() string {
	switch k {
	case KindURL:
		return "url"
	case KindBase64:
		return "base64"
	case KindUpload:
		return "upload"
	default:
		return "unknown"
	}
}

// Source describes how to obtain template bytes. Exactly one variant is
// populated; the kind determines the acquisition strategy.
type Source struct {
	Kind     Kind
	URL      string
	Payload  string
	Filename string
	Data     []byte
}

// URLSource creates a source that downloads the template from an HTTP(S) URL.
func URLSource(u string) Source {
	return Source{Kind: KindURL, URL: u}
}

// Base64Source creates a source that decodes an inline base64 payload.
func Base64Source(payload string) Source {
	return Source{Kind: KindBase64, Payload: payload}
}

// UploadSource creates a source backed by a directly uploaded file.
func UploadSource(filename string, data []byte) Source {
	return Source{Kind: KindUpload, Filename: filename, Data: data}
}

// Options configures template acquisition.
type Options struct {
	Timeout   time.Duration
	UserAgent string
}

// DefaultOptions returns sensible defaults for acquisition.
func DefaultOptions() *Options {
	return &Options{
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
	}
}

// uploadExtensions lists the Word template family the engine can open.
var uploadExtensions = map[string]bool{
	".docx": true,
	".docm": true,
	".dotx": true,
	".dotm": true,
}

// Acquire obtains template bytes according to the source kind.
// A single failed attempt is terminal; no retries are performed.
func Acquire(ctx context.Context, src Source, opts *Options) ([]byte, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	switch src.Kind {
	case KindURL:
		return fetchURL(ctx, src.URL, opts)
	case KindBase64:
		return decodeBase64(src.Payload)
	case KindUpload:
		return validateUpload(src.Filename, src.Data)
	default:
		return nil, &Error{Source: src.Kind.String(), Message: "unsupported source kind"}
	}
}

// fetchURL downloads the template over HTTP(S), following redirects and
// honoring the configured timeout.
func fetchURL(ctx context.Context, urlStr string, opts *Options) ([]byte, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, &Error{
			Source:  KindURL.String(),
			Message: fmt.Sprintf("invalid url: %s", urlStr),
			Cause:   err,
		}
	}

	// The default http.Client follows redirects.
	client := &http.Client{
		Timeout: opts.Timeout,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, &Error{
			Source:  KindURL.String(),
			Message: "failed to create request",
			Cause:   err,
		}
	}
	req.Header.Set("User-Agent", opts.UserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, &Error{
			Source:  KindURL.String(),
			Message: "template download failed",
			Cause:   err,
		}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &Error{
			Source:     KindURL.String(),
			Message:    fmt.Sprintf("HTTP %d", resp.StatusCode),
			StatusCode: resp.StatusCode,
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxTemplateBytes+1))
	if err != nil {
		return nil, &Error{
			Source:  KindURL.String(),
			Message: "failed to read response body",
			Cause:   err,
		}
	}
	if len(body) > MaxTemplateBytes {
		return nil, &Error{
			Source:  KindURL.String(),
			Message: "template exceeds size limit",
		}
	}

	return body, nil
}

// decodeBase64 decodes an inline base64 template payload.
func decodeBase64(payload string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
	if err != nil {
		return nil, &Error{
			Source:  KindBase64.String(),
			Message: "invalid encoding",
			Cause:   err,
		}
	}
	if len(data) == 0 {
		return nil, &Error{
			Source:  KindBase64.String(),
			Message: "empty template payload",
		}
	}
	return data, nil
}

// validateUpload checks an uploaded template for an empty payload or an
// unrecognized file extension.
func validateUpload(filename string, data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, &Error{
			Source:  KindUpload.String(),
			Message: "invalid template file: empty upload",
		}
	}
	if len(data) > MaxTemplateBytes {
		return nil, &Error{
			Source:  KindUpload.String(),
			Message: "template exceeds size limit",
		}
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if !uploadExtensions[ext] {
		return nil, &Error{
			Source:  KindUpload.String(),
			Message: fmt.Sprintf("invalid template file: unrecognized extension %q", ext),
		}
	}

	return data, nil
}
