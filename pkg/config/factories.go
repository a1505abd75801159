package config

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/marmos91/afile/internal/logger"
	"github.com/marmos91/afile/internal/ratelimiter"
	"github.com/marmos91/afile/pkg/backend"
	"github.com/marmos91/afile/pkg/backend/pool"
	"github.com/marmos91/afile/pkg/backend/remote"
	"github.com/mitchellh/mapstructure"
)

// PoolOptions are the options of the blocking-pool backend.
type PoolOptions struct {
	Workers     int `mapstructure:"workers"`
	QueueSize   int `mapstructure:"queue_size"`
	MaxReadSize int `mapstructure:"max_read_size"`
}

// RemoteOptions are the options of the remote-fetch backend.
type RemoteOptions struct {
	Origin            string        `mapstructure:"origin"`
	Timeout           time.Duration `mapstructure:"timeout"`
	UserAgent         string        `mapstructure:"user_agent"`
	RequestsPerSecond uint          `mapstructure:"requests_per_second"`
	Burst             uint          `mapstructure:"burst"`
	S3                S3Options     `mapstructure:"s3"`
}

// S3Options configure the client used for s3:// origins.
type S3Options struct {
	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	MaxRetries      int    `mapstructure:"max_retries"`
}

// CreateBackend creates a backend based on configuration.
//
// This factory function uses the Type field to determine which backend to
// create, then decodes the type-specific options map and passes it to the
// backend's constructor.
//
// Supported types:
//   - "pool": pkg/backend/pool (local files on a worker pool)
//   - "remote": pkg/backend/remote (http, https and s3 origins)
//
// Parameters:
//   - ctx: Context for initialization (AWS config loading)
//   - cfg: Backend configuration
//   - m: Metrics for the backend, nil for none
func CreateBackend(ctx context.Context, cfg *BackendConfig, m backend.Metrics) (backend.Backend, error) {
	switch cfg.Type {
	case "pool":
		return createPoolBackend(cfg.Pool, m)
	case "remote":
		return createRemoteBackend(ctx, cfg.Remote, m)
	default:
		return nil, fmt.Errorf("unknown backend type: %q", cfg.Type)
	}
}

func createPoolBackend(options map[string]any, m backend.Metrics) (backend.Backend, error) {
	var opts PoolOptions
	if err := decode(options, &opts); err != nil {
		return nil, fmt.Errorf("failed to decode pool backend config: %w", err)
	}
	if opts.Workers < 0 || opts.QueueSize < 0 || opts.MaxReadSize < 0 {
		return nil, fmt.Errorf("pool backend: workers, queue_size and max_read_size must not be negative")
	}

	logger.Debug("Pool backend: workers=%d queue_size=%d", opts.Workers, opts.QueueSize)
	return pool.New(pool.Config{
		Workers:     opts.Workers,
		QueueSize:   opts.QueueSize,
		MaxReadSize: opts.MaxReadSize,
		Metrics:     m,
	}), nil
}

func createRemoteBackend(ctx context.Context, options map[string]any, m backend.Metrics) (backend.Backend, error) {
	var opts RemoteOptions
	if err := decode(options, &opts); err != nil {
		return nil, fmt.Errorf("failed to decode remote backend config: %w", err)
	}

	cfg := remote.Config{
		Origin:     remote.NewOrigin(opts.Origin),
		HTTPClient: &http.Client{},
		Timeout:    opts.Timeout,
		UserAgent:  opts.UserAgent,
		Metrics:    m,
	}
	if opts.RequestsPerSecond > 0 {
		cfg.Limiter = ratelimiter.New(opts.RequestsPerSecond, opts.Burst)
	}

	if strings.HasPrefix(opts.Origin, "s3://") || opts.S3.Endpoint != "" {
		client, err := createS3Client(ctx, opts.S3)
		if err != nil {
			return nil, err
		}
		cfg.S3 = client
	}

	return remote.New(cfg), nil
}

// createS3Client builds the client used for s3:// origins.
func createS3Client(ctx context.Context, opts S3Options) (*s3.Client, error) {
	if opts.Region == "" {
		return nil, fmt.Errorf("remote backend: s3.region is required")
	}

	var configOptions []func(*awsConfig.LoadOptions) error
	configOptions = append(configOptions, awsConfig.WithRegion(opts.Region))

	// Static credentials if provided, otherwise the default credential chain
	if opts.AccessKeyID != "" && opts.SecretAccessKey != "" {
		configOptions = append(configOptions, awsConfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}

	// No automatic retries by default: retrying is the caller's decision.
	maxRetries := opts.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 1
	}
	configOptions = append(configOptions, awsConfig.WithRetryer(func() aws.Retryer {
		return retry.NewStandard(func(o *retry.StandardOptions) {
			o.MaxAttempts = maxRetries
		})
	}))

	awsCfg, err := awsConfig.LoadDefaultConfig(ctx, configOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		// Custom endpoints (MinIO, Localstack) need path-style addressing
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	logger.Info("S3 client initialized: region=%s endpoint=%q", opts.Region, opts.Endpoint)
	return client, nil
}

// decode maps an options section onto a struct. Inputs are weakly typed
// because environment variables and YAML scalars may arrive as strings.
func decode(input map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}
