package pipeline

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var ErrInvalidRequest = errors.New("invalid generation request")

// Request starts a run from either a text prompt or an image.
type Request struct {
	Prompt        string
	Image         []byte
	ImageMIMEType string
}

// normalize checks that exactly one input is set and fills in the image
// MIME type when it was not given.
func (r *Request) normalize() error {
	r.Prompt = strings.TrimSpace(r.Prompt)
	hasPrompt, hasImage := r.Prompt != "", len(r.Image) > 0
	switch {
	case hasPrompt && hasImage:
		return fmt.Errorf("%w: provide a prompt or an image, not both", ErrInvalidRequest)
	case !hasPrompt && !hasImage:
		return fmt.Errorf("%w: a prompt or an image is required", ErrInvalidRequest)
	case hasPrompt:
		return nil
	}

	if r.ImageMIMEType == "" {
		r.ImageMIMEType = http.DetectContentType(r.Image)
	}
	if !strings.HasPrefix(r.ImageMIMEType, "image/") {
		return fmt.Errorf("%w: unsupported image type %q", ErrInvalidRequest, r.ImageMIMEType)
	}
	return nil
}
