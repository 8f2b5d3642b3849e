package upload

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
)

type fakeStore struct {
	objects map[string]string
	puts    int
	failPut error
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string]string{}}
}

func (f *fakeStore) Put(_ context.Context, key, _ string, body io.Reader, _ int64) (string, error) {
	f.puts++
	if f.failPut != nil {
		return "", f.failPut
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	f.objects[key] = string(b)
	return "https://files.example.com/" + key, nil
}

func (f *fakeStore) List(context.Context) ([]string, error) {
	keys := make([]string, 0, len(f.objects))
	for k := range f.objects {
		keys = append(keys, k)
	}
	return keys, nil
}

func (f *fakeStore) Delete(_ context.Context, key string) error {
	delete(f.objects, key)
	return nil
}

func (f *fakeStore) PresignPut(_ context.Context, key, _ string, ttl time.Duration) (string, error) {
	return "https://files.example.com/" + key + "?expires=" + ttl.String(), nil
}

func testConfig() Config {
	return Config{MaxFileSize: 10, AllowedTypes: []string{"image/png", "application/pdf"}}
}

func file(name, contentType, body string) File {
	return File{Name: name, ContentType: contentType, Size: int64(len(body)), Body: strings.NewReader(body)}
}

func TestUploadForwardsAllowedFile(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, testConfig(), nil)

	res, err := svc.Upload(context.Background(), file("scan.pdf", "application/pdf", "%PDF"))
	require.NoError(t, err)
	assert.Equal(t, "scan.pdf", res.Key)
	assert.Equal(t, "https://files.example.com/scan.pdf", res.URL)
	assert.Equal(t, "%PDF", store.objects["scan.pdf"])
}

func TestUploadRejectsBeforeStorage(t *testing.T) {
	tests := []struct {
		name string
		file File
		code apperrors.ErrorCode
	}{
		{"disallowed type", file("a.exe", "application/x-msdownload", "MZ"), apperrors.ErrBadRequest},
		{"too large", file("a.png", "image/png", "01234567890"), apperrors.ErrBadRequest},
		{"empty name", file("", "image/png", "x"), apperrors.ErrBadRequest},
		{"path traversal", file("../etc/passwd", "image/png", "x"), apperrors.ErrBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			svc := NewService(store, testConfig(), nil)

			_, err := svc.Upload(context.Background(), tt.file)
			assert.Equal(t, tt.code, apperrors.CodeOf(err))
			assert.Zero(t, store.puts)
		})
	}
}

func TestUploadStripsDirectories(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, testConfig(), nil)

	res, err := svc.Upload(context.Background(), file("C:\\scans\\x.png", "IMAGE/PNG", "png"))
	require.NoError(t, err)
	assert.Equal(t, "x.png", res.Key)
}

func TestUploadReportsStorageFailure(t *testing.T) {
	store := newFakeStore()
	store.failPut = errors.New("access denied")
	svc := NewService(store, testConfig(), nil)

	_, err := svc.Upload(context.Background(), file("a.png", "image/png", "png"))
	assert.Equal(t, apperrors.ErrUpstream, apperrors.CodeOf(err))
}

func TestDeleteIsIdempotent(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, testConfig(), nil)

	_, err := svc.Upload(context.Background(), file("a.png", "image/png", "png"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), "a.png"))
	require.NoError(t, svc.Delete(context.Background(), "a.png"))

	keys, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestDeleteUsesFullKey(t *testing.T) {
	store := newFakeStore()
	store.objects["avatars/a.png"] = "nested"
	store.objects["a.png"] = "root"
	svc := NewService(store, testConfig(), nil)

	require.NoError(t, svc.Delete(context.Background(), "avatars/a.png"))

	assert.NotContains(t, store.objects, "avatars/a.png")
	assert.Equal(t, "root", store.objects["a.png"])
}

func TestDeleteRejectsInvalidKeys(t *testing.T) {
	store := newFakeStore()
	store.objects["a.png"] = "root"
	svc := NewService(store, testConfig(), nil)

	for _, name := range []string{"", "/", "avatars/../a.png", "..\\a.png"} {
		err := svc.Delete(context.Background(), name)
		assert.Equal(t, apperrors.ErrBadRequest, apperrors.CodeOf(err), name)
	}
	assert.Contains(t, store.objects, "a.png")
}

func TestDoubleDotInsideNameIsAllowed(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, testConfig(), nil)

	res, err := svc.Upload(context.Background(), file("scan..v2.pdf", "application/pdf", "%PDF"))
	require.NoError(t, err)
	assert.Equal(t, "scan..v2.pdf", res.Key)

	require.NoError(t, svc.Delete(context.Background(), "scan..v2.pdf"))
	assert.Empty(t, store.objects)
}

func TestPresignAppliesAllowList(t *testing.T) {
	svc := NewService(newFakeStore(), testConfig(), nil)

	_, err := svc.Presign(context.Background(), "a.gif", "image/gif")
	assert.Equal(t, apperrors.ErrBadRequest, apperrors.CodeOf(err))

	res, err := svc.Presign(context.Background(), "a.png", "image/png")
	require.NoError(t, err)
	assert.Equal(t, "a.png", res.Key)
	assert.Contains(t, res.URL, "expires=15m0s")
	assert.True(t, res.ExpiresAt.After(time.Now()))
}

func TestUnconfiguredStorage(t *testing.T) {
	svc := NewService(nil, testConfig(), nil)

	_, err := svc.Upload(context.Background(), file("a.png", "image/png", "png"))
	assert.Equal(t, apperrors.ErrUpstream, apperrors.CodeOf(err))

	_, err = svc.List(context.Background())
	assert.Equal(t, apperrors.ErrUpstream, apperrors.CodeOf(err))
}
