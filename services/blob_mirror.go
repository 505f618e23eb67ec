package services

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	appconfig "filevault-manager/config"
	"filevault-manager/models"
)

// BlobMirror 将删除台账中的 recovery blob 镜像到 S3。
// 可选功能，未配置 S3 时不创建。镜像失败不影响删除流程
type BlobMirror struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewBlobMirror 根据存储配置创建 S3 镜像客户端
func NewBlobMirror(cfg *appconfig.StorageConfig) (*BlobMirror, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ctx := context.TODO()

	var awsCfg aws.Config
	var err error

	if cfg.S3Endpoint != "" {
		// 自定义endpoint（如MinIO）
		customResolver := aws.EndpointResolverWithOptionsFunc(
			func(service, region string, options ...interface{}) (aws.Endpoint, error) {
				return aws.Endpoint{
					URL:           cfg.S3Endpoint,
					SigningRegion: cfg.S3Region,
				}, nil
			})

		awsCfg, err = config.LoadDefaultConfig(ctx,
			config.WithRegion(cfg.S3Region),
			config.WithEndpointResolverWithOptions(customResolver),
			config.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(
					cfg.S3AccessKey,
					cfg.S3SecretKey,
					"",
				),
			),
		)
	} else {
		// 标准AWS S3
		awsCfg, err = config.LoadDefaultConfig(ctx,
			config.WithRegion(cfg.S3Region),
			config.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(
					cfg.S3AccessKey,
					cfg.S3SecretKey,
					"",
				),
			),
		)
	}

	if err != nil {
		return nil, fmt.Errorf("unable to load AWS config: %w", err)
	}

	return &BlobMirror{
		client: s3.NewFromConfig(awsCfg),
		bucket: cfg.S3Bucket,
		prefix: cfg.S3Prefix,
	}, nil
}

// ObjectKey 生成镜像对象键：<prefix>/<uuid><原扩展名>
func (m *BlobMirror) ObjectKey(filename string) string {
	ext := filepath.Ext(filename)
	return fmt.Sprintf("%s/%s%s", m.prefix, uuid.New().String(), ext)
}

// MirrorBlob 把一条台账记录的 blob 上传到 S3，返回对象键。
// blob 为空时不上传
func (m *BlobMirror) MirrorBlob(ctx context.Context, entry *models.DeletedFile) (string, error) {
	if len(entry.RecoveryBlob) == 0 {
		return "", nil
	}

	key := m.ObjectKey(entry.FileName)
	_, err := m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(m.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(entry.RecoveryBlob),
		ContentType:   aws.String("application/octet-stream"),
		ContentLength: aws.Int64(int64(len(entry.RecoveryBlob))),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload blob to S3: %w", err)
	}
	return key, nil
}
