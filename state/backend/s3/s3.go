// Package s3 implements state.Backend against AWS S3, the "s3://" scheme of
// spec.md §6, credentialed from the environment via the default AWS config
// chain.
//
// Grounded on the aws-sdk-go-v2 stack pulled in alongside the teacher's own
// dependencies (github.com/aws/aws-sdk-go-v2/{config,service/s3}).
package s3

import (
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/pkg/errors"

	elxstate "github.com/harness/elx/state"
)

// Client is the subset of *s3.Client this package calls, so tests can
// substitute a fake.
type Client interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Backend is a state.Backend rooted at a bucket and key prefix.
type Backend struct {
	Client Client
	Bucket string
	Prefix string
}

// New builds a Backend for "s3://bucket/prefix" using the default AWS
// credential chain (environment variables, shared config, instance role).
func New(ctx context.Context, bucket, prefix string) (*Backend, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load aws config")
	}
	return &Backend{Client: s3.NewFromConfig(cfg), Bucket: bucket, Prefix: prefix}, nil
}

func (b *Backend) key(name string) string {
	if b.Prefix == "" {
		return name
	}
	return strings.TrimSuffix(b.Prefix, "/") + "/" + name
}

func (b *Backend) Read(ctx context.Context, name string) ([]byte, error) {
	out, err := b.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.Bucket),
		Key:    aws.String(b.key(name)),
	})
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return nil, elxstate.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	defer out.Body.Close()
	return io.ReadAll(out.Body)
}

func (b *Backend) Write(ctx context.Context, name string, data []byte) error {
	_, err := b.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(b.Bucket),
		Key:    aws.String(b.key(name)),
		Body:   bytes.NewReader(data),
	})
	return err
}
