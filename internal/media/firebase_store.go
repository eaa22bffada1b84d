package media

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/anonto42/nano-social/backend/internal/metrics"
	"github.com/google/uuid"
)

const objectPrefix = "images/"

// FirebaseStore keeps images in a Firebase Storage bucket and hands out
// token-protected download URLs.
type FirebaseStore struct {
	bucket     *storage.BucketHandle
	bucketName string
	logger     *slog.Logger
}

// NewFirebaseStore creates a FirebaseStore over bucket.
func NewFirebaseStore(bucket *storage.BucketHandle, bucketName string, logger *slog.Logger) *FirebaseStore {
	return &FirebaseStore{bucket: bucket, bucketName: bucketName, logger: logger}
}

// Upload decodes dataURI, writes it under a fresh object name and returns its download URL.
func (s *FirebaseStore) Upload(ctx context.Context, dataURI string) (string, error) {
	img, err := ParseDataURI(dataURI)
	if err != nil {
		return "", err
	}

	name := objectPrefix + uuid.NewString() + img.Extension()
	token := uuid.NewString()

	w := s.bucket.Object(name).NewWriter(ctx)
	w.ContentType = img.ContentType
	w.Metadata = map[string]string{"firebaseStorageDownloadTokens": token}
	if _, err := w.Write(img.Data); err != nil {
		_ = w.Close()
		metrics.MediaOperations.WithLabelValues("upload", "error").Inc()
		return "", fmt.Errorf("write object %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		metrics.MediaOperations.WithLabelValues("upload", "error").Inc()
		return "", fmt.Errorf("close object %s: %w", name, err)
	}
	metrics.MediaOperations.WithLabelValues("upload", "ok").Inc()

	return DownloadURL(s.bucketName, name, token), nil
}

// Delete removes the object behind assetURL. URLs that do not point into this
// bucket, and objects that are already gone, are ignored.
func (s *FirebaseStore) Delete(ctx context.Context, assetURL string) error {
	if !s.owns(assetURL) {
		return nil
	}
	name := AssetID(assetURL)
	if name == "" {
		return nil
	}
	err := s.bucket.Object(name).Delete(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		s.logger.WarnContext(ctx, "media object already deleted", "object", name)
		err = nil
	}
	metrics.MediaOperations.WithLabelValues("delete", metrics.Outcome(err)).Inc()
	if err != nil {
		return fmt.Errorf("delete object %s: %w", name, err)
	}
	return nil
}

func (s *FirebaseStore) owns(assetURL string) bool {
	return strings.HasPrefix(assetURL, downloadBase(s.bucketName))
}

func downloadBase(bucketName string) string {
	return "https://firebasestorage.googleapis.com/v0/b/" + bucketName + "/o/"
}

// DownloadURL builds the Firebase download URL for an object.
func DownloadURL(bucketName, object, token string) string {
	return downloadBase(bucketName) + url.PathEscape(object) + "?alt=media&token=" + token
}
