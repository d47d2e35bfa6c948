package httpserver

import (
	"io"
	"mime/multipart"
)

// uploadedImage adapts a multipart file to ai.Image.
type uploadedImage struct {
	h *multipart.FileHeader
}

func (u uploadedImage) Name() string                 { return u.h.Filename }
func (u uploadedImage) Open() (io.ReadCloser, error) { return u.h.Open() }
