package filestore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/alwitt/goutils"
	"github.com/apex/log"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3API the subset of the S3 client used by the S3 file store
type S3API interface {
	PutObject(
		ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options),
	) (*s3.PutObjectOutput, error)
	GetObject(
		ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options),
	) (*s3.GetObjectOutput, error)
	DeleteObject(
		ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options),
	) (*s3.DeleteObjectOutput, error)
}

// S3StoreParams S3 file store parameters
type S3StoreParams struct {
	// Bucket target bucket
	Bucket string `validate:"required"`
	// Prefix object key prefix
	Prefix string
	// Region S3 region
	Region string `validate:"required"`
	// Endpoint custom endpoint, i.e. for MinIO
	Endpoint string `validate:"omitempty,url"`
	// AccessKeyID static credential access key. Leave empty to use the default chain.
	AccessKeyID string
	// SecretAccessKey static credential secret
	SecretAccessKey string
	// UsePathStyle address buckets by path instead of sub-domain
	UsePathStyle bool
}

// s3Store implements FileStore against an S3 bucket
type s3Store struct {
	goutils.Component
	client S3API
	bucket string
	prefix string
	now    func() time.Time
}

/*
NewS3Client define a S3 client

	@param ctx context.Context - execution context
	@param params S3StoreParams - connection parameters
	@returns the client
*/
func NewS3Client(ctx context.Context, params S3StoreParams) (*s3.Client, error) {
	options := []func(*awsConfig.LoadOptions) error{awsConfig.WithRegion(params.Region)}
	if params.AccessKeyID != "" {
		options = append(options, awsConfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(params.AccessKeyID, params.SecretAccessKey, ""),
		))
	}

	cfg, err := awsConfig.LoadDefaultConfig(ctx, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config [%w]", err)
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if params.Endpoint != "" {
			o.BaseEndpoint = aws.String(params.Endpoint)
		}
		o.UsePathStyle = params.UsePathStyle
	}), nil
}

/*
NewS3Store define a file store backed by a S3 bucket

	@param client S3API - S3 client
	@param bucket string - target bucket
	@param prefix string - object key prefix
	@returns the file store
*/
func NewS3Store(client S3API, bucket string, prefix string) (FileStore, error) {
	logTags := log.Fields{
		"package": "bluelight", "module": "filestore", "component": "s3", "bucket": bucket,
	}

	if client == nil {
		return nil, fmt.Errorf("no S3 client provided")
	}
	if bucket == "" {
		return nil, fmt.Errorf("no S3 bucket provided")
	}

	return &s3Store{
		Component: goutils.Component{
			LogTags: logTags,
			LogTagModifiers: []goutils.LogMetadataModifier{
				goutils.ModifyLogMetadataByRestRequestParam,
			},
		},
		client: client,
		bucket: bucket,
		prefix: prefix,
		now:    time.Now,
	}, nil
}

func (s *s3Store) objectKey(location string) string {
	if s.prefix == "" {
		return location
	}
	return path.Join(s.prefix, location)
}

/*
Store persist content

	@param ctx context.Context - execution context
	@param storageName string - unique name of the content
	@param content []byte - the content
	@returns the location the content is stored at
*/
func (s *s3Store) Store(ctx context.Context, storageName string, content []byte) (string, error) {
	logTags := s.GetLogTagsForContext(ctx)

	location := path.Join(datePartition(s.now()), storageName)
	if err := validateLocation(location); err != nil {
		return "", err
	}

	if _, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.objectKey(location)),
		Body:          bytes.NewReader(content),
		ContentLength: aws.Int64(int64(len(content))),
	}); err != nil {
		log.WithError(err).WithFields(logTags).WithField("location", location).
			Error("S3 object upload failed")
		return "", fmt.Errorf("failed to upload '%s' [%w]", location, err)
	}

	return location, nil
}

/*
Load read back content

	@param ctx context.Context - execution context
	@param location string - location returned by Store
	@returns the content
*/
func (s *s3Store) Load(ctx context.Context, location string) ([]byte, error) {
	if err := validateLocation(location); err != nil {
		return nil, err
	}

	resp, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(location)),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, fmt.Errorf("%w: '%s'", ErrNotFound, location)
		}
		return nil, fmt.Errorf("failed to download '%s' [%w]", location, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read '%s' [%w]", location, err)
	}
	return content, nil
}

/*
Delete remove content

	@param ctx context.Context - execution context
	@param location string - location returned by Store
*/
func (s *s3Store) Delete(ctx context.Context, location string) error {
	if err := validateLocation(location); err != nil {
		return err
	}

	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(location)),
	}); err != nil {
		return fmt.Errorf("failed to delete '%s' [%w]", location, err)
	}
	return nil
}
