package s3

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	s3aws "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/dmitrymomot/qrgen/core/replicate"
)

// Compile-time check that Provider satisfies the replication contract.
var _ replicate.Provider = (*Provider)(nil)

// DefaultURLTTL is the presigned URL validity window.
const DefaultURLTTL = time.Hour

// Client defines the S3 operations used by Provider. Satisfied by
// *s3aws.Client; narrow enough to mock in tests.
type Client interface {
	PutObject(ctx context.Context, params *s3aws.PutObjectInput, optFns ...func(*s3aws.Options)) (*s3aws.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3aws.DeleteObjectInput, optFns ...func(*s3aws.Options)) (*s3aws.DeleteObjectOutput, error)
	HeadBucket(ctx context.Context, params *s3aws.HeadBucketInput, optFns ...func(*s3aws.Options)) (*s3aws.HeadBucketOutput, error)
	CreateBucket(ctx context.Context, params *s3aws.CreateBucketInput, optFns ...func(*s3aws.Options)) (*s3aws.CreateBucketOutput, error)
}

// Presigner generates time-limited GET URLs. Satisfied by
// *s3aws.PresignClient.
type Presigner interface {
	PresignGetObject(ctx context.Context, params *s3aws.GetObjectInput, optFns ...func(*s3aws.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// Config contains provider configuration, loaded with an env prefix per
// provider instance (STORAGE_PRIMARY_*, STORAGE_SECONDARY_*).
type Config struct {
	Enabled        bool          `env:"ENABLED" envDefault:"true"`
	Bucket         string        `env:"BUCKET" envDefault:"qr-codes-bucket"`
	Region         string        `env:"REGION" envDefault:"us-east-1"`
	AccessKeyID    string        `env:"ACCESS_KEY_ID"`
	SecretKey      string        `env:"SECRET_KEY"`
	Endpoint       string        `env:"ENDPOINT"`
	ForcePathStyle bool          `env:"FORCE_PATH_STYLE"`
	URLTTL         time.Duration `env:"URL_TTL" envDefault:"1h"`
	UploadTimeout  time.Duration `env:"UPLOAD_TIMEOUT" envDefault:"0"`
}

// Provider is one S3-backed replication target. The enabled flag is set by
// Init probing and read-only afterwards; Provider is otherwise stateless
// and safe for concurrent use.
type Provider struct {
	name          string
	bucket        string
	region        string
	client        Client
	presigner     Presigner
	urlTTL        time.Duration
	uploadTimeout time.Duration
	enabled       bool
	log           *slog.Logger
}

// Option configures a Provider.
type Option func(*options)

type options struct {
	client        Client
	presigner     Presigner
	httpClient    *http.Client
	log           *slog.Logger
	uploadTimeout time.Duration
}

// WithClient sets a pre-configured S3 client. Primarily for tests.
func WithClient(client Client) Option {
	return func(o *options) {
		o.client = client
	}
}

// WithPresigner sets a custom presigner. Required alongside WithClient
// when the client is not a real *s3aws.Client.
func WithPresigner(p Presigner) Option {
	return func(o *options) {
		o.presigner = p
	}
}

// WithHTTPClient sets the HTTP client for S3 requests.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithLogger sets the provider logger.
func WithLogger(log *slog.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

// WithUploadTimeout bounds each PutObject call. Zero keeps uploads on the
// caller's context alone.
func WithUploadTimeout(d time.Duration) Option {
	return func(o *options) {
		o.uploadTimeout = d
	}
}

// New creates a Provider named name from cfg. The provider starts disabled;
// call Init to probe connectivity and enable it. cfg.Enabled == false skips
// probing entirely, leaving the provider permanently disabled.
func New(ctx context.Context, name string, cfg Config, opts ...Option) (*Provider, error) {
	if cfg.Bucket == "" || cfg.Region == "" {
		return nil, ErrInvalidConfig
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.log == nil {
		o.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	p := &Provider{
		name:          name,
		bucket:        cfg.Bucket,
		region:        cfg.Region,
		urlTTL:        cfg.URLTTL,
		uploadTimeout: cfg.UploadTimeout,
		log:           o.log.With(slog.String("provider", name)),
	}
	if o.uploadTimeout > 0 {
		p.uploadTimeout = o.uploadTimeout
	}
	if p.urlTTL <= 0 {
		p.urlTTL = DefaultURLTTL
	}

	if !cfg.Enabled {
		return p, nil
	}

	if o.client != nil {
		p.client = o.client
		p.presigner = o.presigner
		return p, nil
	}

	awsOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	// Static credentials when provided; otherwise the default chain
	// (env vars, shared config, IAM roles).
	if cfg.AccessKeyID != "" && cfg.SecretKey != "" {
		awsOpts = append(awsOpts,
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
				cfg.AccessKeyID,
				cfg.SecretKey,
				"",
			)),
		)
	}
	if o.httpClient != nil {
		awsOpts = append(awsOpts, awsconfig.WithHTTPClient(o.httpClient))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsOpts...)
	if err != nil {
		return nil, classifyError(err, "load config")
	}

	client := s3aws.NewFromConfig(awsCfg, func(so *s3aws.Options) {
		if cfg.Endpoint != "" {
			so.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		so.UsePathStyle = cfg.ForcePathStyle
	})
	p.client = client
	p.presigner = s3aws.NewPresignClient(client)

	return p, nil
}

// Init probes the bucket and sets the enabled flag for the process
// lifetime. A missing bucket is created; any unrecoverable failure leaves
// the provider disabled and is logged, never returned, so storage
// unavailability cannot fail startup.
func (p *Provider) Init(ctx context.Context) {
	if p.client == nil {
		p.log.WarnContext(ctx, "storage provider disabled by configuration")
		return
	}

	if err := p.probeBucket(ctx); err != nil {
		p.log.WarnContext(ctx, "storage provider initialization failed, continuing without it",
			slog.Any("error", err))
		return
	}

	p.enabled = true
	p.log.InfoContext(ctx, "storage provider initialized",
		slog.String("bucket", p.bucket))
}

func (p *Provider) probeBucket(ctx context.Context) error {
	_, err := p.client.HeadBucket(ctx, &s3aws.HeadBucketInput{
		Bucket: aws.String(p.bucket),
	})
	if err == nil {
		return nil
	}
	if !isBucketMissing(err) {
		return classifyError(err, "probe bucket")
	}

	input := &s3aws.CreateBucketInput{
		Bucket: aws.String(p.bucket),
	}
	// us-east-1 rejects an explicit location constraint.
	if p.region != "us-east-1" {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(p.region),
		}
	}
	if _, err := p.client.CreateBucket(ctx, input); err != nil {
		return classifyError(err, "create bucket")
	}

	p.log.InfoContext(ctx, "bucket created", slog.String("bucket", p.bucket))
	return nil
}

// Name returns the provider name used in outcome maps and metrics labels.
func (p *Provider) Name() string {
	return p.name
}

// Enabled reports whether initialization probing succeeded.
func (p *Provider) Enabled() bool {
	return p.enabled
}

// Upload stores the object and returns a presigned GET URL valid for the
// configured TTL.
func (p *Provider) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if !p.enabled {
		return "", replicate.ErrProviderDisabled
	}
	if p.uploadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.uploadTimeout)
		defer cancel()
	}

	key = sanitizeKey(key)
	if key == "" {
		return "", ErrInvalidKey
	}

	_, err := p.client.PutObject(ctx, &s3aws.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
		Metadata: map[string]string{
			"generated-at": time.Now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return "", classifyError(err, "upload object")
	}

	return p.signedURL(ctx, key)
}

func (p *Provider) signedURL(ctx context.Context, key string) (string, error) {
	if p.presigner == nil {
		return "", ErrPresignerMissing
	}

	req, err := p.presigner.PresignGetObject(ctx, &s3aws.GetObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	}, s3aws.WithPresignExpires(p.urlTTL))
	if err != nil {
		return "", classifyError(err, "presign url")
	}
	return req.URL, nil
}

// Delete removes the object.
func (p *Provider) Delete(ctx context.Context, key string) error {
	if !p.enabled {
		return replicate.ErrProviderDisabled
	}

	key = sanitizeKey(key)
	if key == "" {
		return ErrInvalidKey
	}

	_, err := p.client.DeleteObject(ctx, &s3aws.DeleteObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return classifyError(err, "delete object")
	}
	return nil
}

// Healthcheck verifies bucket reachability for readiness probing.
func (p *Provider) Healthcheck(ctx context.Context) error {
	if !p.enabled {
		return replicate.ErrProviderDisabled
	}

	_, err := p.client.HeadBucket(ctx, &s3aws.HeadBucketInput{
		Bucket: aws.String(p.bucket),
	})
	if err != nil {
		return classifyError(err, "probe bucket")
	}
	return nil
}

// sanitizeKey rejects path traversal in object keys.
func sanitizeKey(key string) string {
	key = strings.TrimPrefix(key, "/")
	if strings.Contains(key, "..") {
		return ""
	}
	return key
}
