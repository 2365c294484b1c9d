// Package storage 는 공연 이미지의 오브젝트 스토리지 연동을 제공한다.
// Cloudflare R2 를 S3 호환 API 로 사용하며, 바이너리 본체는 여기에 두고
// DB 에는 키와 속성만 보관한다.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// ObjectStorage 는 오브젝트 스토리지 기능의 인터페이스를 정의한다.
type ObjectStorage interface {
	// Upload 는 키에 바이너리를 업로드한다.
	Upload(ctx context.Context, key, contentType string, body []byte) error

	// Delete 는 키의 오브젝트를 삭제한다. 존재하지 않는 키도 에러가 아니다.
	Delete(ctx context.Context, key string) error

	// Exists 는 키의 오브젝트 존재 여부를 반환한다.
	Exists(ctx context.Context, key string) (bool, error)

	// PresignGet 은 다운로드용 서명 URL 을 발급한다.
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// R2Config 는 R2Storage 의 생성 설정.
type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
}

// R2Storage 는 Cloudflare R2 의 ObjectStorage 구현.
type R2Storage struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
}

// NewR2Storage 는 R2Storage 를 생성한다.
// R2 는 리전 개념이 없으므로 리전은 "auto", 엔드포인트는 계정별 URL 을 쓴다.
func NewR2Storage(ctx context.Context, cfg R2Config) (*R2Storage, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("R2 클라이언트 설정에 실패했습니다: %w", err)
	}

	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID)
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
	})

	return &R2Storage{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  cfg.Bucket,
	}, nil
}

// Upload 는 키에 바이너리를 업로드한다.
func (s *R2Storage) Upload(ctx context.Context, key, contentType string, body []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("오브젝트 업로드에 실패했습니다: %w", err)
	}
	return nil
}

// Delete 는 키의 오브젝트를 삭제한다.
func (s *R2Storage) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("오브젝트 삭제에 실패했습니다: %w", err)
	}
	return nil
}

// Exists 는 키의 오브젝트 존재 여부를 반환한다.
func (s *R2Storage) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, fmt.Errorf("오브젝트 존재 확인에 실패했습니다: %w", err)
	}
	return true, nil
}

// PresignGet 은 다운로드용 서명 URL 을 발급한다.
func (s *R2Storage) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("서명 URL 발급에 실패했습니다: %w", err)
	}
	return req.URL, nil
}

// compile-time interface check
var _ ObjectStorage = (*R2Storage)(nil)
