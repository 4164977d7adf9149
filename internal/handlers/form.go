package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/societyhub/community-server/internal/apperr"
	"github.com/societyhub/community-server/internal/models"
	"github.com/societyhub/community-server/internal/uploads"
)

// formOverhead is room for the text fields around an image part
const formOverhead = 1 << 20

// ImageForm decodes create requests that may carry an image.
type ImageForm struct {
	store    uploads.Store
	maxBytes int64
}

// NewImageForm stores accepted images in store, rejecting any over maxBytes.
func NewImageForm(store uploads.Store, maxBytes int64) ImageForm {
	return ImageForm{store: store, maxBytes: maxBytes}
}

// decode fills dst from a multipart form (or a plain JSON body), validates
// it and returns the optional "image" part. Nothing is stored yet.
func (f ImageForm) decode(w http.ResponseWriter, r *http.Request, dst models.Validator) (*multipart.FileHeader, error) {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return nil, decodeAndValidate(r, dst)
	}

	r.Body = http.MaxBytesReader(w, r.Body, f.maxBytes+formOverhead)
	if err := r.ParseMultipartForm(formOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, apperr.Validation(fmt.Sprintf("Image must be %dMB or smaller", f.maxBytes>>20))
		}
		return nil, apperr.Validation("Invalid form data")
	}

	// Text parts are mapped through the same json tags as a JSON body
	values := make(map[string]string, len(r.MultipartForm.Value))
	for k, v := range r.MultipartForm.Value {
		if len(v) > 0 {
			values[k] = v[0]
		}
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return nil, apperr.Validation("Invalid form data")
	}
	if err := dst.Validate(); err != nil {
		return nil, err
	}

	files := r.MultipartForm.File["image"]
	if len(files) == 0 {
		return nil, nil
	}
	return files[0], nil
}

// save stores the image part and returns its reference; "" when there is none.
func (f ImageForm) save(r *http.Request, header *multipart.FileHeader) (string, error) {
	if header == nil {
		return "", nil
	}
	file, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	return uploads.SaveImage(r.Context(), f.store, file, header, f.maxBytes)
}

// remove deletes a stored image; "" is a no-op.
func (f ImageForm) remove(ctx context.Context, ref string) error {
	if ref == "" {
		return nil
	}
	return f.store.Delete(ctx, ref)
}
