package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Image is an uploaded image file.
type Image interface {
	Name() string
	Open() (io.ReadCloser, error)
}

type fileImage string

// FileImage reads an image from disk.
func FileImage(path string) Image { return fileImage(path) }

func (f fileImage) Name() string                 { return filepath.Base(string(f)) }
func (f fileImage) Open() (io.ReadCloser, error) { return os.Open(string(f)) }

type bytesImage struct {
	name string
	data []byte
}

// BytesImage wraps in-memory image content.
func BytesImage(name string, data []byte) Image { return bytesImage{name: name, data: data} }

func (b bytesImage) Name() string { return b.name }
func (b bytesImage) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(b.data)), nil
}

// ReadImage loads the whole image, giving up early if ctx is done.
func ReadImage(ctx context.Context, img Image) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rc, err := img.Open()
	if err != nil {
		return nil, fmt.Errorf("open image %s: %w", img.Name(), err)
	}
	defer rc.Close()

	data, err := io.ReadAll(ctxReader{ctx: ctx, r: rc})
	if err != nil {
		return nil, fmt.Errorf("read image %s: %w", img.Name(), err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}
	return data, nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

// SniffMIME detects the content type of raw bytes.
func SniffMIME(b []byte) string {
	if len(b) == 0 {
		return "application/octet-stream"
	}
	return http.DetectContentType(b)
}

// MakeDataURL builds a data URL for the given bytes.
func MakeDataURL(mime string, data []byte) string {
	if mime == "" {
		mime = SniffMIME(data)
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// StripDataURLPrefix returns what follows the first comma of a data URL; a
// string without a comma is returned unchanged.
func StripDataURLPrefix(s string) string {
	if i := strings.IndexByte(s, ','); i >= 0 {
		return s[i+1:]
	}
	return s
}
