package source

import (
	"context"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

func openGCS(ctx context.Context, cfg *config, bucket, object string) (io.ReadCloser, error) {
	client := cfg.gcsClient
	owned := false
	if client == nil {
		var opts []option.ClientOption
		if cfg.credentialsFile != "" {
			opts = append(opts, option.WithCredentialsFile(cfg.credentialsFile))
		}
		var err error
		client, err = storage.NewClient(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("source: create GCS client: %w", err)
		}
		owned = true
	}

	r, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		if owned {
			client.Close()
		}
		return nil, fmt.Errorf("source: gs://%s/%s: %w", bucket, object, err)
	}
	if !owned {
		return r, nil
	}
	return &multiCloser{Reader: r, closers: []io.Closer{r, client}}, nil
}
