package s3

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	elxstate "github.com/harness/elx/state"
)

type fakeClient struct {
	objects map[string][]byte

	lastGetInput *s3.GetObjectInput
	lastPutInput *s3.PutObjectInput
}

func (f *fakeClient) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.lastGetInput = in
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeClient) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.lastPutInput = in
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	if f.objects == nil {
		f.objects = map[string][]byte{}
	}
	f.objects[aws.ToString(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func TestReadMissingReturnsErrNotFound(t *testing.T) {
	fc := &fakeClient{}
	b := &Backend{Client: fc, Bucket: "bucket", Prefix: "elx"}
	_, err := b.Read(context.Background(), "tap-foo-target-bar.json")
	assert.ErrorIs(t, err, elxstate.ErrNotFound)
}

func TestWriteThenReadRoundTrips(t *testing.T) {
	fc := &fakeClient{}
	b := &Backend{Client: fc, Bucket: "bucket", Prefix: "elx"}

	require.NoError(t, b.Write(context.Background(), "state.json", []byte(`{"bookmarks":{}}`)))
	got, err := b.Read(context.Background(), "state.json")
	require.NoError(t, err)
	assert.Equal(t, `{"bookmarks":{}}`, string(got))
}

func TestKeyPrefixesWithPrefix(t *testing.T) {
	fc := &fakeClient{}
	b := &Backend{Client: fc, Bucket: "bucket", Prefix: "elx/"}
	require.NoError(t, b.Write(context.Background(), "state.json", []byte("x")))
	assert.Equal(t, "elx/state.json", aws.ToString(fc.lastPutInput.Key))
}

func TestKeyWithoutPrefix(t *testing.T) {
	fc := &fakeClient{}
	b := &Backend{Client: fc, Bucket: "bucket"}
	require.NoError(t, b.Write(context.Background(), "state.json", []byte("x")))
	assert.Equal(t, "state.json", aws.ToString(fc.lastPutInput.Key))
}
