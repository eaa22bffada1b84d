package media

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDataURI(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("png-bytes"))

	img, err := ParseDataURI("data:image/png;base64," + payload)
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.ContentType)
	assert.Equal(t, []byte("png-bytes"), img.Data)
	assert.Equal(t, ".png", img.Extension())
}

func TestParseDataURIRejects(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("x"))
	for name, in := range map[string]string{
		"plain url":   "https://example.com/a.png",
		"no comma":    "data:image/png;base64",
		"not image":   "data:text/plain;base64," + payload,
		"not base64":  "data:image/png," + payload,
		"bad payload": "data:image/png;base64,@@@",
		"empty":       "data:image/png;base64,",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseDataURI(in)
			assert.ErrorIs(t, err, ErrInvalidDataURI)
		})
	}
}

func TestParseDataURITooLarge(t *testing.T) {
	big := strings.Repeat("A", (MaxImageBytes/3+2)*4)
	_, err := ParseDataURI("data:image/png;base64," + big)
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestAssetID(t *testing.T) {
	assert.Equal(t, "abc123", AssetID("https://res.example.com/demo/image/upload/v1/abc123"))
	assert.Equal(t, "abc123.png", AssetID("https://res.example.com/x/abc123.png?v=2"))

	u := DownloadURL("nano.appspot.com", "images/9f1c.png", "tok")
	assert.Equal(t, "https://firebasestorage.googleapis.com/v0/b/nano.appspot.com/o/images%2F9f1c.png?alt=media&token=tok", u)
	assert.Equal(t, "images/9f1c.png", AssetID(u))

	assert.Empty(t, AssetID("https://example.com/"))
	assert.Empty(t, AssetID(""))
}

func TestFirebaseStoreOwns(t *testing.T) {
	s := &FirebaseStore{bucketName: "nano.appspot.com"}
	assert.True(t, s.owns(DownloadURL("nano.appspot.com", "images/a.png", "t")))
	assert.False(t, s.owns(DownloadURL("other.appspot.com", "images/a.png", "t")))
	assert.False(t, s.owns("https://res.example.com/abc"))
}

func TestDisabledStore(t *testing.T) {
	var store Store = DisabledStore{}

	_, err := store.Upload(context.Background(), "not a data uri")
	assert.ErrorIs(t, err, ErrInvalidDataURI)

	_, err = store.Upload(context.Background(), "data:image/png;base64,iVBORw0KGgo=")
	assert.ErrorIs(t, err, ErrUnavailable)

	assert.NoError(t, store.Delete(context.Background(), "https://example.com/x.png"))
}
