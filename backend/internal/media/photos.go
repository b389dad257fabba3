// Package media presigns direct-to-bucket uploads of profile photos on any
// S3-compatible store.
package media

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	apperrors "growth-graph/backend/pkg/errors"
)

var loadDefaultAWSConfig = config.LoadDefaultConfig

// contentTypes maps accepted photo types to the key extension.
var contentTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// Options configures the bucket
type Options struct {
	Bucket    string
	Region    string
	Endpoint  string // empty for AWS itself
	AccessKey string
	SecretKey string
	PublicURL string // base URL objects are served from, if not the endpoint
	Expiry    time.Duration
}

// Upload tells the client where to PUT the photo and what to store as its
// profile_photo afterwards.
type Upload struct {
	Key         string    `json:"key"`
	Method      string    `json:"method"`
	UploadURL   string    `json:"upload_url"`
	ContentType string    `json:"content_type"`
	PhotoURL    string    `json:"photo_url"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Photos presigns profile photo uploads
type Photos struct {
	presign *s3.PresignClient
	opts    Options
	now     func() time.Time
}

// NewPhotos builds the presigner. No request is sent to the bucket.
func NewPhotos(ctx context.Context, opts Options) (*Photos, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(opts.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, "")),
	)
	if err != nil {
		return nil, apperrors.NewConfigValidationFailed("S3", err.Error())
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &Photos{presign: s3.NewPresignClient(client), opts: opts, now: time.Now}, nil
}

// PresignUpload returns a presigned PUT for a new photo owned by userID.
func (p *Photos) PresignUpload(ctx context.Context, userID, contentType string) (*Upload, error) {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	ext, ok := contentTypes[contentType]
	if !ok {
		return nil, apperrors.NewValidation("content_type", "must be image/jpeg, image/png, image/webp or image/gif")
	}

	key := fmt.Sprintf("profiles/%s/%s%s", userID, uuid.NewString(), ext)
	req, err := p.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.opts.Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(p.opts.Expiry))
	if err != nil {
		return nil, apperrors.NewStoreFailed("presign photo upload", err)
	}

	return &Upload{
		Key:         key,
		Method:      req.Method,
		UploadURL:   req.URL,
		ContentType: contentType,
		PhotoURL:    p.objectURL(key),
		ExpiresAt:   p.now().UTC().Add(p.opts.Expiry),
	}, nil
}

func (p *Photos) objectURL(key string) string {
	switch {
	case p.opts.PublicURL != "":
		return strings.TrimRight(p.opts.PublicURL, "/") + "/" + key
	case p.opts.Endpoint != "":
		return strings.TrimRight(p.opts.Endpoint, "/") + "/" + p.opts.Bucket + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", p.opts.Bucket, p.opts.Region, key)
}
