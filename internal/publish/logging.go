package publish

import (
	"context"
	"log"
	"sync/atomic"

	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// partLogger logs every part that manager.Uploader uploads successfully.
//
// UploadPart may be called from any of the uploader's goroutines so the tally is atomic. The tally may exceed
// partCount if parts are retried.
type partLogger struct {
	manager.UploadAPIClient
	logger    *log.Logger
	partCount int32
	n         atomic.Int32
}

func newPartLogger(client manager.UploadAPIClient, logger *log.Logger, size int64) *partLogger {
	return &partLogger{
		UploadAPIClient: client,
		logger:          logger,
		partCount:       int32((size + manager.DefaultUploadPartSize - 1) / manager.DefaultUploadPartSize),
	}
}

func (c *partLogger) UploadPart(ctx context.Context, input *s3.UploadPartInput, optFns ...func(*s3.Options)) (*s3.UploadPartOutput, error) {
	out, err := c.UploadAPIClient.UploadPart(ctx, input, optFns...)
	if err != nil {
		return out, err
	}

	if v := c.n.Add(1); v == c.partCount {
		c.logger.Printf("uploaded %d/%d parts", v, c.partCount)
	} else {
		c.logger.Printf("uploaded %d/%d parts so far", v, c.partCount)
	}

	return out, nil
}

var _ manager.UploadAPIClient = &partLogger{}
