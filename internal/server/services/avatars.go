package services

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/huntplanur/internal/common"
	"github.com/dmitrijs2005/huntplanur/internal/dbx"
	"github.com/dmitrijs2005/huntplanur/internal/logging"
	sc "github.com/dmitrijs2005/huntplanur/internal/server/config"
	"github.com/dmitrijs2005/huntplanur/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

const avatarURLTTL = 15 * time.Minute

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
	deleteObject = func(c *s3.Client, ctx context.Context, in *s3.DeleteObjectInput) error {
		_, err := c.DeleteObject(ctx, in)
		return err
	}
)

// AvatarService hands out presigned URLs for profile pictures kept in S3
// compatible storage. The server never sees the image bytes.
type AvatarService struct {
	deps
	config *sc.Config
}

func NewAvatarService(tx dbx.TxRunner, rm repomanager.RepositoryManager, cfg *sc.Config, log logging.Logger) *AvatarService {
	return &AvatarService{deps: newDeps(tx, rm, nil, log), config: cfg}
}

func (s *AvatarService) Enabled() bool {
	return s.config.S3Bucket != ""
}

func avatarKey(userID string) string {
	return fmt.Sprintf("avatars/%s/%v", userID, uuid.New())
}

func (s *AvatarService) getClient(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	}), nil
}

// BeginUpload stores a fresh object key on the profile and returns a
// presigned PUT URL for it. The previous picture is deleted best-effort.
func (s *AvatarService) BeginUpload(ctx context.Context, userID string) (string, error) {
	if !s.Enabled() {
		return "", common.ErrorStorageNotAvailable
	}
	client, err := s.getClient(ctx)
	if err != nil {
		return "", err
	}

	bucket := s.config.S3Bucket
	key := avatarKey(userID)
	req, err := presignPutObject(newS3PresignClient(client), ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(avatarURLTTL))
	if err != nil {
		return "", err
	}

	old, err := s.swapKey(ctx, userID, key)
	if err != nil {
		return "", err
	}
	s.deleteBestEffort(ctx, client, old)
	return req.URL, nil
}

// Remove clears the profile picture.
func (s *AvatarService) Remove(ctx context.Context, userID string) error {
	old, err := s.swapKey(ctx, userID, "")
	if err != nil {
		return err
	}
	if old == "" || !s.Enabled() {
		return nil
	}
	client, err := s.getClient(ctx)
	if err != nil {
		s.log.Warn(ctx, "avatar storage unavailable", "error", err)
		return nil
	}
	s.deleteBestEffort(ctx, client, old)
	return nil
}

// URL presigns a GET for key; an empty key or disabled storage yields "".
func (s *AvatarService) URL(ctx context.Context, key string) (string, error) {
	if key == "" || !s.Enabled() {
		return "", nil
	}
	client, err := s.getClient(ctx)
	if err != nil {
		return "", err
	}
	bucket := s.config.S3Bucket
	req, err := presignGetObject(newS3PresignClient(client), ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(avatarURLTTL))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}

func (s *AvatarService) swapKey(ctx context.Context, userID, key string) (string, error) {
	var old string
	err := s.tx.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.rm.Users(tx)
		u, err := repo.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		old = u.AvatarKey
		return repo.UpdateAvatar(ctx, userID, key)
	})
	return old, err
}

func (s *AvatarService) deleteBestEffort(ctx context.Context, client *s3.Client, key string) {
	if key == "" {
		return
	}
	bucket := s.config.S3Bucket
	if err := deleteObject(client, ctx, &s3.DeleteObjectInput{Bucket: &bucket, Key: &key}); err != nil {
		s.log.Warn(ctx, "avatar delete failed", "key", key, "error", err)
	}
}
