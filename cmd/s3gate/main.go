// Command s3gate demonstrates the signing transport and multipart
// engine against a configured S3-compatible endpoint.
//
// Grounded on eteran-silo/cmd/example/main.go's getenv-driven
// configuration and its Run(ctx, client) sequencing of a handful of
// representative operations.
package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/haltia-io/s3gate/credentials"
	"github.com/haltia-io/s3gate/log"
	"github.com/haltia-io/s3gate/s3client"
	"github.com/haltia-io/s3gate/transport"
)

func getenv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func run(ctx context.Context) error {
	endpoint := getenv("S3GATE_ENDPOINT", "https://s3.us-east-1.amazonaws.com")
	region := getenv("S3GATE_REGION", "us-east-1")
	bucket := getenv("S3GATE_BUCKET", "example-bucket")
	key := getenv("S3GATE_KEY", "example.txt")

	middleware, err := transport.NewMiddleware(transport.Config{
		Region:              region,
		CredentialsProvider: credentials.NewEnvProvider(),
	})
	if err != nil {
		return fmt.Errorf("build signing middleware: %w", err)
	}

	client := s3client.New(&http.Client{Transport: middleware}, endpoint+"/"+bucket)

	etag, err := client.Put(ctx, key, []byte("hello from s3gate\n"))
	if err != nil {
		return fmt.Errorf("put object: %w", err)
	}
	log.Info().Str("bucket", bucket).Str("key", key).Str("etag", etag).Msg("uploaded object")

	obj, err := client.Head(ctx, key)
	if err != nil {
		return fmt.Errorf("head object: %w", err)
	}
	log.Info().Int64("content_length", obj.ContentLength).Msg("head object")

	entries, err := client.List(ctx, "")
	if err != nil {
		return fmt.Errorf("list objects: %w", err)
	}
	for _, entry := range entries {
		log.Info().Str("key", entry.Key).Int64("size", entry.Size).Msg("listed object")
	}

	multipartEtag, err := client.PutMultipart(ctx, "large-"+key, bytes.NewReader(make([]byte, 32*1024*1024)))
	if err != nil {
		return fmt.Errorf("put multipart: %w", err)
	}
	log.Info().Str("etag", multipartEtag).Msg("completed multipart upload")

	return nil
}

func main() {
	ctx := context.Background()
	if err := run(ctx); err != nil {
		log.Error().Err(err).Msg("s3gate demo failed")
		os.Exit(1)
	}
}
