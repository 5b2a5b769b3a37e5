package storage

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Seams over the AWS SDK so tests can substitute fakes without a live
// endpoint.
var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPostObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignPostOptions)) (*s3.PresignedPostRequest, error) {
		return pc.PresignPostObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
	headObject = func(c *s3.Client, ctx context.Context, in *s3.HeadObjectInput) (*s3.HeadObjectOutput, error) {
		return c.HeadObject(ctx, in)
	}
	deleteObject = func(c *s3.Client, ctx context.Context, in *s3.DeleteObjectInput) (*s3.DeleteObjectOutput, error) {
		return c.DeleteObject(ctx, in)
	}
)

// Config holds the object-store settings.
type Config struct {
	Bucket          string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	// BaseEndpoint overrides the AWS endpoint, e.g. for MinIO.
	BaseEndpoint string
	// CDNDomain, when set, is used for resolved public URLs instead of the
	// virtual-hosted bucket URL.
	CDNDomain string
}

// Client wraps the S3 SDK with presign, stat, and delete operations scoped
// to a single bucket.
type Client struct {
	cfg     Config
	s3      *s3.Client
	presign *s3.PresignClient
}

// NewClient builds an S3 client from cfg. Static credentials are used when
// provided; otherwise the default AWS credential chain applies.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}

	awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	return &Client{cfg: cfg, s3: client, presign: newS3PresignClient(client)}, nil
}

// PresignedUpload is a time-boxed authorization for a direct form POST to
// the store. Fields must be sent verbatim alongside the file.
type PresignedUpload struct {
	URL    string
	Fields map[string]string
}

// PresignUpload issues a constrained upload grant for key: the POST policy
// pins the exact key and content type and rejects bodies outside
// [1, maxSize] bytes. The store enforces the constraints at upload time.
func (c *Client) PresignUpload(ctx context.Context, key, contentType string, maxSize int64, expires time.Duration) (*PresignedUpload, error) {
	req, err := presignPostObject(c.presign, ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.cfg.Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, func(o *s3.PresignPostOptions) {
		o.Expires = expires
		o.Conditions = []interface{}{
			[]interface{}{"content-length-range", 1, maxSize},
		}
	})
	if err != nil {
		return nil, fmt.Errorf("presign upload: %w", err)
	}
	return &PresignedUpload{URL: req.URL, Fields: req.Values}, nil
}

// PresignDownload issues a time-boxed GET URL for key. The signed response
// headers carry contentDisposition so the browser sees the friendly name.
func (c *Client) PresignDownload(ctx context.Context, key, contentDisposition string, expires time.Duration) (string, error) {
	req, err := presignGetObject(c.presign, ctx, &s3.GetObjectInput{
		Bucket:                     aws.String(c.cfg.Bucket),
		Key:                        aws.String(key),
		ResponseContentDisposition: aws.String(contentDisposition),
	}, s3.WithPresignExpires(expires))
	if err != nil {
		return "", fmt.Errorf("presign download: %w", err)
	}
	return req.URL, nil
}

// ObjectStat is what the store reports about an object.
type ObjectStat struct {
	Size        int64
	ContentType string
}

// StatObject queries the store directly for an object's size and content
// type. This is the trust boundary of the upload path: client claims about
// an upload are never taken at face value.
func (c *Client) StatObject(ctx context.Context, key string) (*ObjectStat, error) {
	out, err := headObject(c.s3, ctx, &s3.HeadObjectInput{
		Bucket: aws.String(c.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("head object %q: %w", key, err)
	}

	var size int64
	if out.ContentLength != nil {
		size = *out.ContentLength
	}
	return &ObjectStat{
		Size:        size,
		ContentType: strings.ToLower(aws.ToString(out.ContentType)),
	}, nil
}

// DeleteObject removes key from the store.
func (c *Client) DeleteObject(ctx context.Context, key string) error {
	_, err := deleteObject(c.s3, ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete object %q: %w", key, err)
	}
	return nil
}

// PublicURL resolves key to its public URL: the CDN domain when configured,
// else the provider's virtual-hosted form.
func (c *Client) PublicURL(key string) string {
	if c.cfg.CDNDomain != "" {
		return fmt.Sprintf("https://%s/%s", c.cfg.CDNDomain, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", c.cfg.Bucket, c.cfg.Region, key)
}

// KeyFromURL extracts the object key from a public URL in either the
// CDN-prefixed or virtual-hosted form. Returns "" when rawURL is not a URL.
func KeyFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Path, "/")
}
