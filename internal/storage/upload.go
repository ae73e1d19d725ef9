package storage

import (
	"bytes"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime/multipart"

	_ "golang.org/x/image/webp"

	apperrors "food-quality-api/internal/errors"
)

// Upload is a decoded image plus the raw bytes as received, which are what
// get forwarded to vision collaborators.
type Upload struct {
	Image    image.Image
	Raw      []byte
	MIMEType string
}

// UploadReader decodes multipart image uploads.
type UploadReader interface {
	ReadUpload(fh *multipart.FileHeader) (*Upload, error)
}

type uploadReader struct {
	maxBytes int64
}

// NewUploadReader creates a reader that rejects payloads above maxBytes
func NewUploadReader(maxBytes int64) UploadReader {
	return &uploadReader{maxBytes: maxBytes}
}

func (u *uploadReader) ReadUpload(fh *multipart.FileHeader) (*Upload, error) {
	if fh == nil {
		return nil, apperrors.NewValidationError("image file is required", nil)
	}
	if u.maxBytes > 0 && fh.Size > u.maxBytes {
		return nil, apperrors.NewValidationError("image exceeds maximum upload size", nil)
	}

	file, err := fh.Open()
	if err != nil {
		return nil, apperrors.NewDecodeError("failed to open uploaded file", err)
	}
	defer file.Close()

	reader := io.Reader(file)
	if u.maxBytes > 0 {
		reader = io.LimitReader(file, u.maxBytes+1)
	}
	raw, err := io.ReadAll(reader)
	if err != nil {
		return nil, apperrors.NewDecodeError("failed to read uploaded file", err)
	}
	if u.maxBytes > 0 && int64(len(raw)) > u.maxBytes {
		return nil, apperrors.NewValidationError("image exceeds maximum upload size", nil)
	}

	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, apperrors.NewDecodeError("unreadable or corrupt image payload", err)
	}

	return &Upload{
		Image:    img,
		Raw:      raw,
		MIMEType: "image/" + format,
	}, nil
}
