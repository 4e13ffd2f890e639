// Package publish uploads built archives to S3 with a CRC-32 full-object checksum.
package publish

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/nguyengg/szip/zip/crc"
	"github.com/ulikunitz/xz"
)

// XZContentType is the content type of xz-compressed uploads.
const XZContentType = "application/x-xz"

// Input contains the parameters of Upload.
type Input struct {
	Bucket string
	// Prefix is prepended to Key as-is; include the trailing slash if one is desired.
	Prefix              string
	Key                 string
	ExpectedBucketOwner *string
	StorageClass        types.StorageClass
	ContentType         string

	// Archive is the archive to upload.
	Archive []byte

	// XZ compresses Archive with xz before upload and appends ".xz" to the key.
	XZ bool

	// Concurrency is the maximum number of parts uploaded in parallel.
	//
	// Default to manager.DefaultUploadConcurrency.
	Concurrency int

	// Logger, if given, logs the progress of multipart uploads.
	Logger *log.Logger
}

// Output describes a completed upload.
type Output struct {
	Bucket   string
	Key      string
	Location string
	// Size is the number of bytes uploaded, which differs from len(Input.Archive) if Input.XZ is true.
	Size int64
	// ChecksumCRC32 is the base64-encoded big-endian CRC-32 of the uploaded bytes, as S3 reports it.
	ChecksumCRC32 string
}

// Upload puts the archive to S3 using manager.Uploader.
//
// If the body fits in one part, the full-object CRC-32 is computed locally and sent as ChecksumCRC32 so that S3
// rejects a corrupted upload; larger bodies only request CRC-32 checksums and let the uploader compute them per part.
func Upload(ctx context.Context, client manager.UploadAPIClient, input Input) (*Output, error) {
	if input.Bucket == "" {
		return nil, errors.New("bucket is required")
	}
	if input.Key == "" {
		return nil, errors.New("key is required")
	}

	body, key, contentType := input.Archive, input.Prefix+input.Key, input.ContentType
	if input.XZ {
		buf := &bytes.Buffer{}
		w, err := xz.NewWriter(buf)
		if err != nil {
			return nil, fmt.Errorf("create xz writer error: %w", err)
		}
		if _, err = w.Write(body); err != nil {
			return nil, fmt.Errorf("xz compress error: %w", err)
		}
		if err = w.Close(); err != nil {
			return nil, fmt.Errorf("xz compress error: %w", err)
		}

		body, key, contentType = buf.Bytes(), key+".xz", XZContentType
	}

	h := crc.New()
	_, _ = h.Write(body)
	checksum := base64.StdEncoding.EncodeToString(h.Sum(nil))

	if input.Logger != nil && int64(len(body)) >= manager.DefaultUploadPartSize {
		client = newPartLogger(client, input.Logger, int64(len(body)))
	}

	uploader := manager.NewUploader(client, func(u *manager.Uploader) {
		if input.Concurrency > 0 {
			u.Concurrency = input.Concurrency
		}
	})

	params := &s3.PutObjectInput{
		Bucket:              aws.String(input.Bucket),
		Key:                 aws.String(key),
		Body:                bytes.NewReader(body),
		ChecksumAlgorithm:   types.ChecksumAlgorithmCrc32,
		ExpectedBucketOwner: input.ExpectedBucketOwner,
		StorageClass:        input.StorageClass,
	}
	if contentType != "" {
		params.ContentType = aws.String(contentType)
	}
	if int64(len(body)) < uploader.PartSize {
		params.ChecksumCRC32 = aws.String(checksum)
	}

	out, err := uploader.Upload(ctx, params)
	if err != nil {
		return nil, fmt.Errorf(`upload to "s3://%s/%s" error: %w`, input.Bucket, key, err)
	}

	return &Output{
		Bucket:        input.Bucket,
		Key:           key,
		Location:      out.Location,
		Size:          int64(len(body)),
		ChecksumCRC32: checksum,
	}, nil
}
