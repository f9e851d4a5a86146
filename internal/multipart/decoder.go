// Package multipart decodes multipart/form-data bodies from a raw byte buffer.
//
// The decoder works on the full body in memory and keeps file content as raw
// bytes, so binary uploads survive untouched.
package multipart

import (
	"bytes"
	"fmt"
	"mime"
	"regexp"
	"strings"

	"finlens/internal/domain"
)

var (
	headerSeparator = []byte("\r\n\r\n")
	crlf            = []byte("\r\n")

	nameParam     = regexp.MustCompile(`\bname="([^"]*)"`)
	filenameParam = regexp.MustCompile(`\bfilename="([^"]*)"`)
)

// Decode splits buf on the boundary token and returns the named parts in wire order.
// Parts without a name or without a header/body separator are skipped. A trailing
// part that is not followed by another boundary marker is not returned.
func Decode(buf []byte, boundary string) []domain.RawPart {
	if boundary == "" {
		return nil
	}
	marker := []byte("--" + boundary)

	idx := bytes.Index(buf, marker)
	if idx < 0 {
		return nil
	}

	var parts []domain.RawPart
	for {
		start := idx + len(marker)
		next := bytes.Index(buf[start:], marker)
		if next < 0 {
			break
		}
		end := start + next

		if part, ok := decodePart(buf[start:end]); ok {
			parts = append(parts, part)
		}
		idx = end
	}
	return parts
}

func decodePart(segment []byte) (domain.RawPart, bool) {
	headerEnd := bytes.Index(segment, headerSeparator)
	if headerEnd < 0 {
		return domain.RawPart{}, false
	}
	headers := string(segment[:headerEnd])

	m := nameParam.FindStringSubmatch(headers)
	if m == nil || m[1] == "" {
		return domain.RawPart{}, false
	}

	content := segment[headerEnd+len(headerSeparator):]
	content = bytes.TrimSuffix(content, crlf)

	part := domain.RawPart{
		Name:    m[1],
		Content: append([]byte(nil), content...),
	}
	if fm := filenameParam.FindStringSubmatch(headers); fm != nil {
		part.Filename = fm[1]
	}
	return part, true
}

// BoundaryFromContentType returns the boundary parameter of a multipart Content-Type header.
func BoundaryFromContentType(contentType string) (string, error) {
	if contentType == "" {
		return "", domain.ErrMissingBoundary
	}
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", fmt.Errorf("parsing content type: %w", domain.ErrMissingBoundary)
	}
	if !strings.HasPrefix(mediaType, "multipart/") {
		return "", fmt.Errorf("content type %q: %w", mediaType, domain.ErrMissingBoundary)
	}
	boundary := params["boundary"]
	if boundary == "" {
		return "", domain.ErrMissingBoundary
	}
	return boundary, nil
}

// FindFile returns the first part carrying a filename whose field name is one of names.
func FindFile(parts []domain.RawPart, names ...string) (domain.RawPart, bool) {
	for _, p := range parts {
		if !p.HasFile() {
			continue
		}
		for _, n := range names {
			if p.Name == n {
				return p, true
			}
		}
	}
	return domain.RawPart{}, false
}

// FieldValue returns the trimmed value of the first non-file part named name.
func FieldValue(parts []domain.RawPart, name string) string {
	for _, p := range parts {
		if p.Name == name && !p.HasFile() {
			return strings.TrimSpace(p.Text())
		}
	}
	return ""
}
