package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	getBody    []byte
	getErr     error
	lastBucket string
	lastKey    string
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	f.lastBucket = aws.ToString(in.Bucket)
	f.lastKey = aws.ToString(in.Key)
	cl := int64(len(f.getBody))
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(f.getBody)), ContentLength: &cl}, nil
}

func withFakeS3(t *testing.T, f *fakeS3) {
	t.Helper()
	old := newS3Client
	newS3Client = func(ctx context.Context, _ AWSOptions) (s3iface, error) { return f, nil }
	t.Cleanup(func() { newS3Client = old })
}

func TestS3Read(t *testing.T) {
	f := &fakeS3{getBody: []byte("id,score\n1,2.5\n")}
	withFakeS3(t, f)
	s, err := NewS3(context.Background(), AWSOptions{Region: "us-east-1"})
	require.NoError(t, err)

	b, err := s.Read(context.Background(), "uploads", "dir/data.csv")
	require.NoError(t, err)
	assert.Equal(t, f.getBody, b)
	assert.Equal(t, "uploads", f.lastBucket)
	assert.Equal(t, "dir/data.csv", f.lastKey)
}

func TestS3ReadError(t *testing.T) {
	boom := errors.New("access denied")
	withFakeS3(t, &fakeS3{getErr: boom})
	s, err := NewS3(context.Background(), AWSOptions{})
	require.NoError(t, err)

	_, err = s.Read(context.Background(), "b", "k")
	assert.ErrorIs(t, err, boom)
	_, err = s.Read(context.Background(), "", "k")
	assert.ErrorIs(t, err, ErrInvalidLocation)
}

func TestDirStoreRead(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "bucket"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bucket", "x.csv"), []byte("a\n1\n"), 0o644))

	b, err := DirStore{Root: dir}.Read(context.Background(), "bucket", "x.csv")
	require.NoError(t, err)
	assert.Equal(t, "a\n1\n", string(b))

	_, err = DirStore{Root: dir}.Read(context.Background(), "bucket", "missing.csv")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseLocation(t *testing.T) {
	cases := []struct {
		in   string
		want Location
		err  error
	}{
		{in: "s3://bucket/dir/key.csv", want: Location{Scheme: "s3", Bucket: "bucket", Key: "dir/key.csv"}},
		{in: "file:///tmp/x.csv", want: Location{Scheme: "file", Key: "/tmp/x.csv"}},
		{in: "data/x.csv", want: Location{Scheme: "file", Key: "data/x.csv"}},
		{in: "s3://bucket/", err: ErrInvalidLocation},
		{in: "gs://bucket/key", err: ErrUnsupportedScheme},
		{in: "", err: ErrInvalidLocation},
	}
	for _, tc := range cases {
		got, err := ParseLocation(tc.in)
		if tc.err != nil {
			assert.ErrorIs(t, err, tc.err, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got)
	}
	assert.Equal(t, "s3://b/k", Location{Scheme: "s3", Bucket: "b", Key: "k"}.String())
}
