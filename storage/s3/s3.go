package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/kbukum/asrgate/logger"
	"github.com/kbukum/asrgate/storage"
)

func init() {
	storage.RegisterFactory(storage.ProviderS3, func(_ storage.Config, providerCfg any, log *logger.Logger) (storage.Storage, error) {
		c, ok := providerCfg.(*Config)
		if !ok || c == nil {
			return nil, fmt.Errorf("s3: expected *s3.Config, got %T", providerCfg)
		}
		c.ApplyDefaults()
		if err := c.Validate(); err != nil {
			return nil, err
		}
		s, err := NewStorage(context.Background(), c)
		if err != nil {
			return nil, err
		}
		log.Info("object store ready", logger.Fields(
			"bucket", c.Bucket, "region", c.Region, logger.FieldSecretID, logger.MaskSecret(c.SecretID)))
		return s, nil
	})
}

// Storage implements storage.Storage and storage.SignedURLProvider on an
// S3-compatible API.
type Storage struct {
	client  *awss3.Client
	presign *awss3.PresignClient
	cfg     Config
}

var (
	_ storage.Storage           = (*Storage)(nil)
	_ storage.SignedURLProvider = (*Storage)(nil)
)

// NewStorage creates a client for cfg. No network call is made.
func NewStorage(ctx context.Context, cfg *Config) (*Storage, error) {
	if !cfg.Configured() {
		return nil, fmt.Errorf("s3: bucket and credentials are required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.SecretID, cfg.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("s3: load aws config: %w", err)
	}

	client := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		o.BaseEndpoint = aws.String(cfg.APIEndpoint())
		o.UsePathStyle = cfg.ForcePathStyle || cfg.Endpoint != ""
		// COS rejects the flexible checksum headers newer SDKs send by default.
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		o.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
	})
	return &Storage{client: client, presign: awss3.NewPresignClient(client), cfg: *cfg}, nil
}

// Put uploads the object and returns its public URL.
func (s *Storage) Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	in := &awss3.PutObjectInput{
		Bucket:      aws.String(s.cfg.Bucket),
		Key:         aws.String(key),
		Body:        r,
		ContentType: aws.String(contentType),
	}
	if s.cfg.ACL != "" {
		in.ACL = types.ObjectCannedACL(s.cfg.ACL)
	}
	if s.cfg.StorageClass != "" {
		in.StorageClass = types.StorageClass(s.cfg.StorageClass)
	}
	if _, err := s.client.PutObject(ctx, in); err != nil {
		return "", fmt.Errorf("storage: s3 put: %w", err)
	}
	return s.cfg.ObjectURL(key), nil
}

// Delete removes an object. Returns nil if the object does not exist.
func (s *Storage) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &awss3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("storage: s3 delete: %w", err)
	}
	return nil
}

// Exists checks whether an object exists.
func (s *Storage) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &awss3.HeadObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, fmt.Errorf("storage: s3 head: %w", err)
}

// URL returns the public URL of the object.
func (s *Storage) URL(_ context.Context, key string) (string, error) {
	return s.cfg.ObjectURL(key), nil
}

// SignedURL returns a presigned GET URL valid for ttl. It is computed
// locally; no request is sent.
func (s *Storage) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = s.cfg.SignedURLTTL
	}
	req, err := s.presign.PresignGetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	}, awss3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("storage: s3 presign: %w", err)
	}
	return req.URL, nil
}

// SignedURLs reports whether staging should prefer presigned URLs.
func (s *Storage) SignedURLs() (bool, time.Duration) {
	return s.cfg.SignedURLs, s.cfg.SignedURLTTL
}

func isNotFound(err error) bool {
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var re *awshttp.ResponseError
	return errors.As(err, &re) && re.HTTPStatusCode() == http.StatusNotFound
}
