package output

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	s3manager "github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
	"github.com/cenkalti/backoff/v4"

	"github.com/spangle/simplebackup/internal/config"
)

const (
	uploadAttempts = 5
	uploadBackoff  = 20 * time.Second
	uploadTimeout  = 10 * time.Minute
)

type versioningAPI interface {
	GetBucketVersioning(ctx context.Context, params *s3.GetBucketVersioningInput, optFns ...func(*s3.Options)) (*s3.GetBucketVersioningOutput, error)
	PutBucketVersioning(ctx context.Context, params *s3.PutBucketVersioningInput, optFns ...func(*s3.Options)) (*s3.PutBucketVersioningOutput, error)
}

type uploaderAPI interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error)
}

// S3 delivers artifacts to a versioned bucket, keyed by their local
// path. Transient connectivity failures are retried on a fixed backoff;
// authorization and not-found failures are not.
type S3 struct {
	client   versioningAPI
	uploader uploaderAPI
	bucket   string

	attempts uint64
	interval time.Duration
	timeout  time.Duration
}

func NewS3(cfg *config.OutputConfig) (*S3, error) {
	ctx := context.Background()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg)
	out := &S3{
		client:   client,
		uploader: s3manager.NewUploader(client),
		bucket:   cfg.Bucket,
		attempts: uploadAttempts,
		interval: uploadBackoff,
		timeout:  uploadTimeout,
	}

	if err := out.ensureVersioning(ctx); err != nil {
		return nil, err
	}
	return out, nil
}

func (o *S3) Type() string { return "s3" }

// ensureVersioning resolves the bucket and enables object versioning if
// it is not already on. Already-versioned buckets are left untouched.
func (o *S3) ensureVersioning(ctx context.Context) error {
	current, err := o.client.GetBucketVersioning(ctx, &s3.GetBucketVersioningInput{
		Bucket: aws.String(o.bucket),
	})
	if err != nil {
		return fmt.Errorf("failed to resolve bucket %s: %w", o.bucket, err)
	}
	if current.Status == types.BucketVersioningStatusEnabled {
		return nil
	}

	_, err = o.client.PutBucketVersioning(ctx, &s3.PutBucketVersioningInput{
		Bucket: aws.String(o.bucket),
		VersioningConfiguration: &types.VersioningConfiguration{
			Status: types.BucketVersioningStatusEnabled,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to enable versioning on %s: %w", o.bucket, err)
	}
	return nil
}

// Send uploads the artifact under a key equal to its local path. Each
// attempt gets a bounded timeout; the last transient error is returned
// as-is once attempts are exhausted.
func (o *S3) Send(ctx context.Context, artifactPath string) error {
	upload := func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, o.timeout)
		defer cancel()

		file, err := os.Open(artifactPath)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to open artifact: %w", err))
		}
		defer file.Close()

		_, err = o.uploader.Upload(attemptCtx, &s3.PutObjectInput{
			Bucket: aws.String(o.bucket),
			Key:    aws.String(filepath.ToSlash(artifactPath)),
			Body:   file,
		})
		if err != nil && isPermanent(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	policy := backoff.WithMaxRetries(backoff.NewConstantBackOff(o.interval), o.attempts-1)
	return backoff.Retry(upload, backoff.WithContext(policy, ctx))
}

// isPermanent reports failures that retrying cannot fix: authorization
// and not-found classes. Everything else is treated as transient
// connectivity trouble.
func isPermanent(err error) bool {
	var respErr *smithyhttp.ResponseError
	if errors.As(err, &respErr) {
		switch respErr.HTTPStatusCode() {
		case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
			return true
		}
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch",
			"NoSuchBucket", "NotFound":
			return true
		}
	}

	return false
}
