package filestorage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_SaveAndDelete(t *testing.T) {
	root := t.TempDir()
	storage, err := NewLocalStorage(root, "http://localhost:8080/uploads/")
	require.NoError(t, err)

	url, err := storage.Save(context.Background(), Object{
		Dir:      "resumes",
		FileName: "CV.PDF",
		Body:     strings.NewReader("%PDF-1.4"),
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://localhost:8080/uploads/resumes/"))
	assert.True(t, strings.HasSuffix(url, ".pdf"))

	full := storage.GetFullPath(url)
	assert.Equal(t, filepath.Join(root, "resumes"), filepath.Dir(full))
	content, err := os.ReadFile(full)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(content))

	require.NoError(t, storage.Delete(context.Background(), url))
	_, err = os.Stat(full)
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, storage.Delete(context.Background(), url))
}

func TestLocalStorage_DirCannotEscapeRoot(t *testing.T) {
	root := t.TempDir()
	storage, err := NewLocalStorage(root, "")
	require.NoError(t, err)

	url, err := storage.Save(context.Background(), Object{Dir: "../../etc", FileName: "x.png", Body: strings.NewReader("x")})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(storage.GetFullPath(url), root))
}

type fakeS3 struct {
	put    *s3.PutObjectInput
	body   string
	delKey string
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.put = in
	b, _ := io.ReadAll(in.Body)
	f.body = string(b)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.delKey = *in.Key
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3Storage_SaveAndDelete(t *testing.T) {
	client := &fakeS3{}
	storage := NewS3Storage(client, "placement-files", "ap-south-1", "portal", "")

	url, err := storage.Save(context.Background(), Object{
		Dir:         "logos",
		FileName:    "acme.png",
		ContentType: "image/png",
		Size:        4,
		Body:        strings.NewReader("logo"),
	})
	require.NoError(t, err)

	assert.Equal(t, "placement-files", *client.put.Bucket)
	assert.True(t, strings.HasPrefix(*client.put.Key, "portal/logos/"))
	assert.Equal(t, "image/png", *client.put.ContentType)
	assert.Equal(t, "logo", client.body)
	assert.Equal(t, "https://placement-files.s3.ap-south-1.amazonaws.com/"+*client.put.Key, url)

	require.NoError(t, storage.Delete(context.Background(), url))
	assert.Equal(t, *client.put.Key, client.delKey)
}
