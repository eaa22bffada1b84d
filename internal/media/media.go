// Package media stores user-supplied images in a Firebase Storage bucket.
package media

import (
	"context"
	"encoding/base64"
	"errors"
	"net/url"
	"path"
	"strings"
)

// MaxImageBytes bounds a decoded upload.
const MaxImageBytes = 10 << 20

var (
	ErrInvalidDataURI = errors.New("invalid image data")
	ErrTooLarge       = errors.New("image too large")
)

// Store uploads images and deletes them by the URL Upload returned.
type Store interface {
	Upload(ctx context.Context, dataURI string) (string, error)
	Delete(ctx context.Context, assetURL string) error
}

// Image is a decoded data URI payload.
type Image struct {
	ContentType string
	Data        []byte
}

var extensions = map[string]string{
	"image/png":     ".png",
	"image/jpeg":    ".jpg",
	"image/gif":     ".gif",
	"image/webp":    ".webp",
	"image/svg+xml": ".svg",
}

// Extension returns the file extension for the image content type.
func (i Image) Extension() string {
	if ext, ok := extensions[i.ContentType]; ok {
		return ext
	}
	return ""
}

// ParseDataURI decodes a base64 "data:image/...;base64,..." payload.
func ParseDataURI(s string) (Image, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return Image{}, ErrInvalidDataURI
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return Image{}, ErrInvalidDataURI
	}
	params := strings.Split(header, ";")
	contentType := strings.ToLower(strings.TrimSpace(params[0]))
	if !strings.HasPrefix(contentType, "image/") {
		return Image{}, ErrInvalidDataURI
	}
	if params[len(params)-1] != "base64" {
		return Image{}, ErrInvalidDataURI
	}
	if base64.StdEncoding.DecodedLen(len(payload)) > MaxImageBytes+3 {
		return Image{}, ErrTooLarge
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil || len(data) == 0 {
		return Image{}, ErrInvalidDataURI
	}
	if len(data) > MaxImageBytes {
		return Image{}, ErrTooLarge
	}
	return Image{ContentType: contentType, Data: data}, nil
}

// AssetID returns the last path segment of assetURL, unescaped. For Firebase
// download URLs that segment is the full object name.
func AssetID(assetURL string) string {
	u, err := url.Parse(assetURL)
	if err != nil {
		return ""
	}
	segment := path.Base(u.EscapedPath())
	if segment == "/" || segment == "." {
		return ""
	}
	id, err := url.PathUnescape(segment)
	if err != nil {
		return ""
	}
	return id
}

// ErrUnavailable is returned by DisabledStore uploads.
var ErrUnavailable = errors.New("image storage not configured")

// DisabledStore is used when no bucket is configured. Uploads fail after the
// data URI is validated; deletes are no-ops.
type DisabledStore struct{}

func (DisabledStore) Upload(_ context.Context, dataURI string) (string, error) {
	if _, err := ParseDataURI(dataURI); err != nil {
		return "", err
	}
	return "", ErrUnavailable
}

func (DisabledStore) Delete(context.Context, string) error {
	return nil
}
