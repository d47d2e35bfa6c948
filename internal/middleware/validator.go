package middleware

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"regexp"
	"strings"
)

// Input validation and sanitization utilities

var tenantPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

// ValidateTenantID validates tenant ID format
func ValidateTenantID(tenant string) error {
	if tenant == "" {
		return fmt.Errorf("tenant ID cannot be empty")
	}
	if !tenantPattern.MatchString(tenant) {
		return fmt.Errorf("invalid tenant ID format (alphanumeric, dash, underscore only, max 64 chars)")
	}
	return nil
}

// SanitizeString removes null bytes and control characters except tab and newline.
func SanitizeString(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")

	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}
	return strings.TrimSpace(result.String())
}

// ValidateFilename keeps only the base name of an uploaded file and rejects
// names that are empty after cleaning.
func ValidateFilename(name string) (string, error) {
	name = SanitizeString(name)
	if name == "" {
		return "", nil
	}
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" || base == ".." {
		return "", fmt.Errorf("invalid filename")
	}
	if len(base) > 255 {
		return "", fmt.Errorf("filename too long")
	}
	return base, nil
}

var allowedFileTypes = map[string]bool{
	"csv": true, "tsv": true, "xlsx": true, "xls": true, "json": true, "txt": true,
}

// ValidateFileType normalizes a dataset file type (".CSV", "text/csv" -> "csv").
func ValidateFileType(fileType string) (string, error) {
	t := strings.ToLower(strings.TrimSpace(fileType))
	t = strings.TrimPrefix(t, ".")
	if i := strings.LastIndexAny(t, "/+"); i >= 0 {
		t = t[i+1:]
	}
	switch t {
	case "":
		return "", nil
	case "vnd.openxmlformats-officedocument.spreadsheetml.sheet":
		return "xlsx", nil
	case "vnd.ms-excel":
		return "xls", nil
	case "plain":
		return "txt", nil
	case "tab-separated-values":
		return "tsv", nil
	}
	if !allowedFileTypes[t] {
		return "", fmt.Errorf("unsupported file type: %s (allowed: csv, tsv, xlsx, xls, json, txt)", fileType)
	}
	return t, nil
}

var allowedImageTypes = map[string]bool{
	"image/jpeg": true, "image/png": true, "image/gif": true, "image/webp": true, "image/bmp": true, "image/tiff": true,
}

// ValidateImageUpload checks size and declared content type of an uploaded image.
func ValidateImageUpload(h *multipart.FileHeader, maxBytes int64) error {
	if h.Size == 0 {
		return fmt.Errorf("image is empty")
	}
	if maxBytes > 0 && h.Size > maxBytes {
		return fmt.Errorf("image too large (max %d MB)", maxBytes>>20)
	}
	ct := strings.ToLower(h.Header.Get("Content-Type"))
	if ct != "" && ct != "application/octet-stream" && !allowedImageTypes[ct] {
		return fmt.Errorf("unsupported image type: %s", ct)
	}
	return nil
}

// ValidateLimit validates pagination page size
func ValidateLimit(limit int) int {
	if limit <= 0 {
		return 20 // default
	}
	if limit > 100 {
		return 100 // max limit
	}
	return limit
}

// ValidatePage clamps a 1-based page number
func ValidatePage(page int) int {
	if page <= 0 {
		return 1
	}
	return page
}
