package external

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"sitewizard/internal/types"
)

// S3PutClient is the slice of the S3 API the uploader needs.
type S3PutClient interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// allowedImageTypes maps accepted content types to the extension used in the
// object key. SVG is refused because it can carry script.
var allowedImageTypes = map[string]string{
	"image/jpeg":               ".jpg",
	"image/png":                ".png",
	"image/gif":                ".gif",
	"image/webp":               ".webp",
	"image/avif":               ".avif",
	"image/x-icon":             ".ico",
	"image/vnd.microsoft.icon": ".ico",
}

// S3Uploader stores wizard images in a bucket served from a public base URL.
type S3Uploader struct {
	client     S3PutClient
	bucket     string
	publicBase string
	maxBytes   int64
	logger     *slog.Logger
}

// NewS3Uploader returns an uploader for bucket. publicBase is the URL prefix
// the bucket (or its CDN) is reachable under.
func NewS3Uploader(client S3PutClient, bucket, publicBase string, logger *slog.Logger) *S3Uploader {
	if logger == nil {
		logger = slog.Default()
	}
	return &S3Uploader{
		client:     client,
		bucket:     bucket,
		publicBase: strings.TrimRight(publicBase, "/"),
		maxBytes:   types.MaxUploadBytes,
		logger:     logger,
	}
}

// Upload validates body by size and sniffed type, then writes it under
// uploads/<key>-<uuid><ext>. The filename only contributes object metadata;
// the stored type always comes from the content.
func (u *S3Uploader) Upload(ctx context.Context, key, filename string, body io.Reader) (*types.UploadResult, error) {
	data, err := io.ReadAll(io.LimitReader(body, u.maxBytes+1))
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeValidationInvalidUpload, "failed to read upload", err)
	}
	if int64(len(data)) > u.maxBytes {
		return nil, types.NewAppErrorWithDetails(types.ErrCodeValidationUploadTooLarge,
			fmt.Sprintf("upload exceeds %d bytes", u.maxBytes), nil, map[string]any{"max_bytes": u.maxBytes})
	}
	if len(data) == 0 {
		return nil, types.NewAppError(types.ErrCodeValidationInvalidUpload, "upload is empty", nil)
	}

	mt := mimetype.Detect(data)
	contentType, _, _ := strings.Cut(mt.String(), ";")
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		return nil, types.NewAppErrorWithDetails(types.ErrCodeValidationInvalidUpload,
			"unsupported file type", nil, map[string]any{"content_type": contentType})
	}

	objectKey := path.Join("uploads", key) + "-" + uuid.NewString() + ext
	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(objectKey),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
		CacheControl:  aws.String("public, max-age=31536000, immutable"),
		Metadata: map[string]string{
			"original-filename": path.Base(filename),
		},
	})
	if err != nil {
		u.logger.ErrorContext(ctx, "s3 put failed", "bucket", u.bucket, "key", objectKey, "error", err)
		return nil, types.NewAppError(types.ErrCodeUpstreamStorage, "failed to store upload", err)
	}

	return &types.UploadResult{
		URL:         u.publicBase + "/" + objectKey,
		ContentType: contentType,
		Size:        int64(len(data)),
	}, nil
}
