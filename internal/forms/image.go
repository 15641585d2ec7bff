package forms

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// MaxImageSize bounds an uploaded post image.
const MaxImageSize = 10 << 20

const (
	msgInvalidImage = "Upload a valid image. The file you uploaded was either not an image or a corrupted image."
	msgImageTooBig  = "The image must not exceed 10 MiB."
)

var imageFormats = map[string]string{
	"gif":  "image/gif",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"webp": "image/webp",
	"bmp":  "image/bmp",
}

// Upload is a validated image file.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// readImage loads and validates the multipart file. It returns the field
// error message, or "" when the upload is acceptable.
func readImage(file multipart.File, header *multipart.FileHeader) (*Upload, string) {
	if header.Size > MaxImageSize {
		return nil, msgImageTooBig
	}
	data, err := io.ReadAll(io.LimitReader(file, MaxImageSize+1))
	if err != nil {
		return nil, msgInvalidImage
	}
	if len(data) > MaxImageSize {
		return nil, msgImageTooBig
	}
	return decodeImage(header.Filename, data)
}

func decodeImage(filename string, data []byte) (*Upload, string) {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, msgInvalidImage
	}
	contentType, ok := imageFormats[format]
	if !ok {
		return nil, msgInvalidImage
	}

	name := filepath.Base(filename)
	if name == "." || name == string(filepath.Separator) || name == "" {
		name = "image"
	}
	name = strings.TrimSuffix(name, filepath.Ext(name)) + "." + format

	return &Upload{
		Filename:    name,
		ContentType: contentType,
		Data:        data,
	}, ""
}
