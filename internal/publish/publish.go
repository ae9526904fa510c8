// Package publish uploads run outputs to S3.
package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

// PutObjectAPI is the subset of the S3 client used for uploads.
type PutObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Publisher uploads files under a key prefix of one bucket.
type Publisher struct {
	client PutObjectAPI
	bucket string
	prefix string
}

// New creates a Publisher over an existing client.
func New(client PutObjectAPI, bucket, prefix string) *Publisher {
	return &Publisher{client: client, bucket: bucket, prefix: prefix}
}

// NewS3 creates a Publisher using the default AWS credential chain.
func NewS3(ctx context.Context, bucket, region, prefix string) (*Publisher, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	return New(s3.NewFromConfig(cfg), bucket, prefix), nil
}

// Key returns the object key for a local file.
func (p *Publisher) Key(file string) string {
	return path.Join(p.prefix, filepath.Base(file))
}

// UploadFile uploads one local file and returns its key.
func (p *Publisher) UploadFile(ctx context.Context, file string) (string, error) {
	f, err := os.Open(file)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", file, err)
	}
	defer f.Close()

	key := p.Key(file)
	_, err = p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String("application/vnd.apache.parquet"),
	})
	if err != nil {
		return "", fmt.Errorf("put s3://%s/%s: %w", p.bucket, key, err)
	}
	return key, nil
}

// UploadJSON marshals v and uploads it under name.
func (p *Publisher) UploadJSON(ctx context.Context, name string, v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling %s: %w", name, err)
	}

	key := path.Join(p.prefix, name)
	_, err = p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("put s3://%s/%s: %w", p.bucket, key, err)
	}
	return key, nil
}

// Result lists the uploaded keys.
type Result struct {
	Keys     []string
	Duration time.Duration
}

// Publish uploads files in order, then the manifest as manifest.json.
func (p *Publisher) Publish(ctx context.Context, log zerolog.Logger, files []string, manifest any) (*Result, error) {
	start := time.Now()
	res := &Result{}

	for _, file := range files {
		key, err := p.UploadFile(ctx, file)
		if err != nil {
			return nil, err
		}
		log.Debug().Str("key", key).Msg("uploaded")
		res.Keys = append(res.Keys, key)
	}

	if manifest != nil {
		key, err := p.UploadJSON(ctx, "manifest.json", manifest)
		if err != nil {
			return nil, err
		}
		res.Keys = append(res.Keys, key)
	}

	res.Duration = time.Since(start)
	log.Info().
		Str("bucket", p.bucket).
		Str("prefix", p.prefix).
		Int("objects", len(res.Keys)).
		Str("duration", res.Duration.String()).
		Msg("outputs published")
	return res, nil
}
