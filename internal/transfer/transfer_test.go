package transfer

import (
	"context"
	"crypto/md5"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-media-migrate/internal/links"
	"github.com/tendant/simple-media-migrate/internal/storage"
	"github.com/tendant/simple-media-migrate/pkg/imageset"
)

// fakeObjectStore records puts, reading each body so the stream position is
// exercised the way a real client would.
type fakeObjectStore struct {
	puts   []storage.PutRequest
	bodies [][]byte
	err    error
}

func (f *fakeObjectStore) Put(ctx context.Context, req storage.PutRequest) error {
	if f.err != nil {
		return f.err
	}
	body, err := io.ReadAll(req.Body)
	if err != nil {
		return err
	}
	f.puts = append(f.puts, req)
	f.bodies = append(f.bodies, body)
	return nil
}

// writeSourceFile places content into the sharded layout and returns its hex
// digest.
func writeSourceFile(t *testing.T, root string, content []byte, fileType string) string {
	t.Helper()
	sum := sha256.Sum256(content)
	digest := hex.EncodeToString(sum[:])

	dir := filepath.Join(root, digest[0:2], digest[2:4], digest[4:6])
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, digest+"."+fileType), content, 0o644))
	return digest
}

func testItem(t *testing.T, digest, fileType string) links.Item {
	t.Helper()
	ct, err := imageset.ContentTypeForFileType(fileType)
	require.NoError(t, err)
	key, err := imageset.RandomKey()
	require.NoError(t, err)
	rep, err := imageset.NewRepresentation(ct, key, 800, 600)
	require.NoError(t, err)

	return links.Item{MediaID: 1, SHA256: digest, FileType: fileType, Rep: rep}
}

func TestUploadVerifiedTransfer(t *testing.T) {
	root := t.TempDir()
	content := []byte("not actually a png, but the transfer never decodes pixels")
	digest := writeSourceFile(t, root, content, "png")

	source, err := storage.NewSourceStore(root)
	require.NoError(t, err)
	dest := &fakeObjectStore{}

	item := testItem(t, digest, "png")
	n, err := NewUploader(source, dest).Upload(context.Background(), item)
	require.NoError(t, err)
	assert.Equal(t, int64(len(content)), n)

	require.Len(t, dest.puts, 1)
	put := dest.puts[0]

	assert.Equal(t, DestinationKey(item.Rep), put.Key)
	assert.Equal(t, "image/png", put.ContentType)
	assert.Equal(t, int64(len(content)), put.ContentLength)
	assert.Equal(t, "public, max-age=31536000, immutable", put.CacheControl)

	md5Sum := md5.Sum(content)
	assert.Equal(t, base64.StdEncoding.EncodeToString(md5Sum[:]), put.ContentMD5)
	assert.Equal(t, content, dest.bodies[0])
}

func TestUploadDigestMismatchNeverReachesStore(t *testing.T) {
	root := t.TempDir()
	digest := writeSourceFile(t, root, []byte("original bytes"), "jpg")

	// Corrupt the stored file after the digest was computed.
	path := filepath.Join(root, digest[0:2], digest[2:4], digest[4:6], digest+".jpg")
	require.NoError(t, os.WriteFile(path, []byte("tampered bytes"), 0o644))

	source, err := storage.NewSourceStore(root)
	require.NoError(t, err)
	dest := &fakeObjectStore{}

	_, err = NewUploader(source, dest).Upload(context.Background(), testItem(t, digest, "jpg"))
	require.ErrorIs(t, err, ErrIntegrity)
	assert.Contains(t, err.Error(), digest)
	assert.Empty(t, dest.puts, "a mismatched stream must not be uploaded")
}

func TestUploadMissingSourceFile(t *testing.T) {
	source, err := storage.NewSourceStore(t.TempDir())
	require.NoError(t, err)
	dest := &fakeObjectStore{}

	sum := sha256.Sum256([]byte("never written"))
	_, err = NewUploader(source, dest).Upload(context.Background(), testItem(t, hex.EncodeToString(sum[:]), "png"))
	require.Error(t, err)
	assert.Empty(t, dest.puts)
}

func TestUploadStoreFailure(t *testing.T) {
	root := t.TempDir()
	digest := writeSourceFile(t, root, []byte("payload"), "gif")

	source, err := storage.NewSourceStore(root)
	require.NoError(t, err)
	storeErr := errors.New("bucket unavailable")
	dest := &fakeObjectStore{err: storeErr}

	_, err = NewUploader(source, dest).Upload(context.Background(), testItem(t, digest, "gif"))
	require.ErrorIs(t, err, ErrTransfer)
	require.ErrorIs(t, err, storeErr)
}

func TestDestinationKey(t *testing.T) {
	key := make([]byte, imageset.KeyLength)
	for i := range key {
		key[i] = byte(i)
	}
	rep, err := imageset.NewRepresentation(imageset.WEBPStatic, key, 10, 10)
	require.NoError(t, err)

	got := DestinationKey(rep)
	assert.Equal(t, base64.RawURLEncoding.EncodeToString(key)+".webp", got)
	assert.NotContains(t, got, "=", "destination keys are unpadded")
	assert.Len(t, got, 22+len(".webp"))
}
