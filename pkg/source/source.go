// Package source opens the byte streams that csv readers consume.
//
// A source is named by a URI:
//
//	data.csv, file:///var/data.csv   local files
//	http://…, https://…              HTTP GET
//	s3://bucket/key                  Amazon S3
//	gs://bucket/object               Google Cloud Storage
//
// Compressed inputs are decoded on the fly, chosen by file extension or by
// WithDecompression.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"go.uber.org/zap"
)

// ErrUnsupportedScheme is returned for URIs with a scheme Open cannot read.
var ErrUnsupportedScheme = errors.New("source: unsupported scheme")

type config struct {
	codec           Codec
	httpClient      *http.Client
	s3Client        S3API
	region          string
	gcsClient       *storage.Client
	credentialsFile string
	logger          *zap.Logger
}

// Option configures Open.
type Option func(*config)

// WithDecompression forces a codec instead of detecting it from the extension.
func WithDecompression(c Codec) Option {
	return func(cfg *config) { cfg.codec = c }
}

// WithHTTPClient sets the client used for http and https URIs.
func WithHTTPClient(c *http.Client) Option {
	return func(cfg *config) { cfg.httpClient = c }
}

// WithS3Client sets the client used for s3 URIs. By default a client is
// built from the default AWS credential chain.
func WithS3Client(c S3API) Option {
	return func(cfg *config) { cfg.s3Client = c }
}

// WithRegion sets the AWS region used when no S3 client is given.
func WithRegion(region string) Option {
	return func(cfg *config) { cfg.region = region }
}

// WithGCSClient sets the client used for gs URIs.
func WithGCSClient(c *storage.Client) Option {
	return func(cfg *config) { cfg.gcsClient = c }
}

// WithCredentialsFile sets a service account file used when no GCS client
// is given.
func WithCredentialsFile(path string) Option {
	return func(cfg *config) { cfg.credentialsFile = path }
}

// WithLogger sets the logger for open events.
func WithLogger(l *zap.Logger) Option {
	return func(cfg *config) { cfg.logger = l }
}

// Open returns a reader over the (decompressed) bytes named by uri. The
// caller must close it.
func Open(ctx context.Context, uri string, opts ...Option) (io.ReadCloser, error) {
	cfg := config{
		codec:      Auto,
		httpClient: http.DefaultClient,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	raw, name, err := openRaw(ctx, uri, &cfg)
	if err != nil {
		return nil, err
	}

	codec := cfg.codec
	if codec == Auto {
		codec = DetectCodec(name)
	}
	cfg.logger.Debug("opened source",
		zap.String("uri", uri),
		zap.String("codec", string(codec)))

	rc, err := decompress(raw, codec)
	if err != nil {
		raw.Close()
		return nil, fmt.Errorf("source: %s: %w", uri, err)
	}
	return rc, nil
}

// openRaw returns the undecoded stream and the name used for codec detection.
func openRaw(ctx context.Context, uri string, cfg *config) (io.ReadCloser, string, error) {
	scheme, rest, ok := strings.Cut(uri, "://")
	if !ok {
		f, err := os.Open(uri)
		return f, uri, err
	}

	switch strings.ToLower(scheme) {
	case "file":
		u, err := url.Parse(uri)
		if err != nil {
			return nil, "", fmt.Errorf("source: %w", err)
		}
		f, err := os.Open(u.Path)
		return f, u.Path, err

	case "http", "https":
		u, err := url.Parse(uri)
		if err != nil {
			return nil, "", fmt.Errorf("source: %w", err)
		}
		rc, err := openHTTP(ctx, cfg.httpClient, u)
		return rc, u.Path, err

	case "s3":
		bucket, key, err := splitObject(rest)
		if err != nil {
			return nil, "", err
		}
		rc, err := openS3(ctx, cfg, bucket, key)
		return rc, key, err

	case "gs":
		bucket, object, err := splitObject(rest)
		if err != nil {
			return nil, "", err
		}
		rc, err := openGCS(ctx, cfg, bucket, object)
		return rc, object, err
	}
	return nil, "", fmt.Errorf("%w: %q", ErrUnsupportedScheme, scheme)
}

// splitObject splits "bucket/key/with/slashes".
func splitObject(s string) (bucket, key string, err error) {
	bucket, key, ok := strings.Cut(s, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("source: %q: want bucket/object", s)
	}
	return bucket, key, nil
}
