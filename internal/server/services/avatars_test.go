package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/huntplanur/internal/common"
	"github.com/dmitrijs2005/huntplanur/internal/logging"
	sc "github.com/dmitrijs2005/huntplanur/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type s3Stub struct {
	putKeys    []string
	deleted    []string
	deleteErr  error
	presignErr error
	endpoint   string
	region     string
}

// stubS3 swaps the AWS seams for the duration of the test.
func stubS3(t *testing.T) *s3Stub {
	t.Helper()
	st := &s3Stub{}

	origLoad, origNew, origPre := loadDefaultAWSConfig, newS3ClientFromConfig, newS3PresignClient
	origPut, origGet, origDel := presignPutObject, presignGetObject, deleteObject
	t.Cleanup(func() {
		loadDefaultAWSConfig, newS3ClientFromConfig, newS3PresignClient = origLoad, origNew, origPre
		presignPutObject, presignGetObject, deleteObject = origPut, origGet, origDel
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			if err := fn(&lo); err != nil {
				return aws.Config{}, err
			}
		}
		st.region = lo.Region
		return aws.Config{}, nil
	}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		var o s3.Options
		for _, fn := range optFns {
			fn(&o)
		}
		st.endpoint = aws.ToString(o.BaseEndpoint)
		return &s3.Client{}
	}
	newS3PresignClient = func(c *s3.Client) *s3.PresignClient { return &s3.PresignClient{} }
	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		if st.presignErr != nil {
			return nil, st.presignErr
		}
		st.putKeys = append(st.putKeys, aws.ToString(in.Key))
		return &v4.PresignedHTTPRequest{URL: "https://s3.test/put/" + aws.ToString(in.Key)}, nil
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return &v4.PresignedHTTPRequest{URL: "https://s3.test/get/" + aws.ToString(in.Key)}, nil
	}
	deleteObject = func(c *s3.Client, ctx context.Context, in *s3.DeleteObjectInput) error {
		st.deleted = append(st.deleted, aws.ToString(in.Key))
		return st.deleteErr
	}
	return st
}

func newAvatarFixture(t *testing.T, bucket string) (*fixture, *AvatarService) {
	t.Helper()
	f := newFixture(t)
	cfg := &sc.Config{
		S3Region:       "eu-north-1",
		S3RootUser:     "minioadmin",
		S3RootPassword: "minioadmin",
		S3BaseEndpoint: "http://127.0.0.1:9000",
		S3Bucket:       bucket,
	}
	return f, NewAvatarService(f.store, f.store, cfg, logging.Nop{})
}

func TestAvatar_UploadReplaceRemove(t *testing.T) {
	st := stubS3(t)
	f, svc := newAvatarFixture(t, "avatars")
	ctx := context.Background()
	alice := f.register(t, "alice")

	url, err := svc.BeginUpload(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, st.putKeys, 1)
	first := st.putKeys[0]
	assert.True(t, strings.HasPrefix(first, "avatars/"+alice.ID+"/"))
	assert.Equal(t, "https://s3.test/put/"+first, url)
	assert.Equal(t, "eu-north-1", st.region)
	assert.Equal(t, "http://127.0.0.1:9000", st.endpoint)
	assert.Empty(t, st.deleted)

	u, err := f.users.Profile(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, first, u.AvatarKey)

	view, err := svc.URL(ctx, u.AvatarKey)
	require.NoError(t, err)
	assert.Equal(t, "https://s3.test/get/"+first, view)

	_, err = svc.BeginUpload(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{first}, st.deleted, "replaced picture is deleted")

	st.deleteErr = errors.New("gone")
	require.NoError(t, svc.Remove(ctx, alice.ID), "delete failures are not fatal")
	u, err = f.users.Profile(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, u.AvatarKey)
}

func TestAvatar_Disabled(t *testing.T) {
	stubS3(t)
	f, svc := newAvatarFixture(t, "")
	ctx := context.Background()
	alice := f.register(t, "alice")

	_, err := svc.BeginUpload(ctx, alice.ID)
	assert.ErrorIs(t, err, common.ErrorStorageNotAvailable)

	url, err := svc.URL(ctx, "avatars/x")
	require.NoError(t, err)
	assert.Empty(t, url)

	assert.NoError(t, svc.Remove(ctx, alice.ID))
}

func TestAvatar_Errors(t *testing.T) {
	st := stubS3(t)
	f, svc := newAvatarFixture(t, "avatars")
	ctx := context.Background()
	alice := f.register(t, "alice")

	st.presignErr = errors.New("presign-fail")
	_, err := svc.BeginUpload(ctx, alice.ID)
	assert.EqualError(t, err, "presign-fail")
	u, err := f.users.Profile(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, u.AvatarKey, "a failed presign leaves the profile alone")

	st.presignErr = nil
	_, err = svc.BeginUpload(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("load-fail")
	}
	_, err = svc.URL(ctx, "k")
	assert.EqualError(t, err, "load-fail")
}
