package gallery

import (
	"context"
	"io"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

// Storage stores the image files of gallery items.
type Storage interface {
	// Upload stores a file under the given key and returns its URL.
	Upload(ctx context.Context, f io.Reader, key, contentType string) (string, error)
	// Remove removes the file with the given key.
	Remove(ctx context.Context, key string) error
}

// S3Bucket is a Storage backed by an AWS S3 bucket.
// Credentials and region are read by the aws session, usually from the
// AWS_REGION, AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY env vars.
type S3Bucket struct {
	// s3 clients are safe to use concurrently.
	svc      *s3.S3
	uploader *s3manager.Uploader
	bucket   string
}

// NewS3Bucket initializes a new S3Bucket using the given session.
func NewS3Bucket(sess *session.Session, bucket string) *S3Bucket {
	svc := s3.New(sess)
	return &S3Bucket{
		svc:      svc,
		uploader: s3manager.NewUploaderWithClient(svc),
		bucket:   bucket,
	}
}

// Bucket returns the name of the bucket.
func (s3b *S3Bucket) Bucket() string {
	return s3b.bucket
}

// EnsureBucket creates the bucket if needed.
func (s3b *S3Bucket) EnsureBucket(ctx context.Context) error {
	_, err := s3b.svc.CreateBucketWithContext(ctx, &s3.CreateBucketInput{Bucket: aws.String(s3b.bucket)})
	if err != nil {
		aerr, ok := err.(awserr.Error)
		if !ok {
			return err
		}
		if aerr.Code() != s3.ErrCodeBucketAlreadyExists && aerr.Code() != s3.ErrCodeBucketAlreadyOwnedByYou {
			return err
		}
	}
	return s3b.svc.WaitUntilBucketExistsWithContext(ctx, &s3.HeadBucketInput{Bucket: aws.String(s3b.bucket)})
}

// Upload uploads a file to the bucket. Returns the URL where the object was
// uploaded to.
func (s3b *S3Bucket) Upload(ctx context.Context, f io.Reader, key, contentType string) (string, error) {
	input := &s3manager.UploadInput{
		Body:   f,
		Bucket: aws.String(s3b.bucket),
		Key:    aws.String(key),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	result, err := s3b.uploader.UploadWithContext(ctx, input)
	if err != nil {
		return "", err
	}
	return result.Location, nil
}

// Remove removes a file from the bucket.
func (s3b *S3Bucket) Remove(ctx context.Context, key string) error {
	_, err := s3b.svc.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s3b.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return err
	}
	return s3b.svc.WaitUntilObjectNotExistsWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s3b.bucket),
		Key:    aws.String(key),
	})
}
