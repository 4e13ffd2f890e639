package publish

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"io"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/nguyengg/szip/zip/stored"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"
)

// fakeClient implements manager.UploadAPIClient by recording PutObject calls.
type fakeClient struct {
	mu     sync.Mutex
	puts   []*s3.PutObjectInput
	bodies [][]byte
	err    error
}

func (c *fakeClient) PutObject(ctx context.Context, input *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(input.Body)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.puts = append(c.puts, input)
	c.bodies = append(c.bodies, data)
	if c.err != nil {
		return nil, c.err
	}

	return &s3.PutObjectOutput{ChecksumCRC32: input.ChecksumCRC32}, nil
}

func (c *fakeClient) UploadPart(context.Context, *s3.UploadPartInput, ...func(*s3.Options)) (*s3.UploadPartOutput, error) {
	return nil, errors.New("unexpected UploadPart")
}

func (c *fakeClient) CreateMultipartUpload(context.Context, *s3.CreateMultipartUploadInput, ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error) {
	return nil, errors.New("unexpected CreateMultipartUpload")
}

func (c *fakeClient) CompleteMultipartUpload(context.Context, *s3.CompleteMultipartUploadInput, ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error) {
	return nil, errors.New("unexpected CompleteMultipartUpload")
}

func (c *fakeClient) AbortMultipartUpload(context.Context, *s3.AbortMultipartUploadInput, ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error) {
	return nil, errors.New("unexpected AbortMultipartUpload")
}

func expectedChecksum(data []byte) string {
	return base64.StdEncoding.EncodeToString(binary.BigEndian.AppendUint32(nil, crc32.ChecksumIEEE(data)))
}

func testArchive(t *testing.T) []byte {
	t.Helper()

	archive, err := stored.Build([]stored.Entry{
		{Name: "AndroidManifest.xml", Content: []byte("<manifest/>")},
		{Name: "classes.dex", Content: bytes.Repeat([]byte("dex\n035\x00"), 100)},
	})
	require.NoError(t, err)
	return archive
}

func TestUpload(t *testing.T) {
	archive := testArchive(t)
	client := &fakeClient{}

	out, err := Upload(context.Background(), client, Input{
		Bucket:              "my-bucket",
		Prefix:              "releases/",
		Key:                 "demo-v1.apk",
		ExpectedBucketOwner: aws.String("123456789012"),
		StorageClass:        types.StorageClassStandardIa,
		ContentType:         "application/vnd.android.package-archive",
		Archive:             archive,
	})
	require.NoErrorf(t, err, "Upload() error = %v", err)

	assert.Equal(t, "my-bucket", out.Bucket)
	assert.Equal(t, "releases/demo-v1.apk", out.Key)
	assert.Equal(t, int64(len(archive)), out.Size)
	assert.Equal(t, expectedChecksum(archive), out.ChecksumCRC32)

	require.Len(t, client.puts, 1)
	put := client.puts[0]
	assert.Equal(t, "my-bucket", aws.ToString(put.Bucket))
	assert.Equal(t, "releases/demo-v1.apk", aws.ToString(put.Key))
	assert.Equal(t, "application/vnd.android.package-archive", aws.ToString(put.ContentType))
	assert.Equal(t, "123456789012", aws.ToString(put.ExpectedBucketOwner))
	assert.Equal(t, types.StorageClassStandardIa, put.StorageClass)
	assert.Equal(t, types.ChecksumAlgorithmCrc32, put.ChecksumAlgorithm)
	assert.Equal(t, expectedChecksum(archive), aws.ToString(put.ChecksumCRC32))
	assert.Equal(t, archive, client.bodies[0])
}

func TestUpload_XZ(t *testing.T) {
	archive := testArchive(t)
	client := &fakeClient{}

	out, err := Upload(context.Background(), client, Input{
		Bucket:  "my-bucket",
		Key:     "demo.zip",
		Archive: archive,
		XZ:      true,
	})
	require.NoError(t, err)
	assert.Equal(t, "demo.zip.xz", out.Key)

	require.Len(t, client.bodies, 1)
	body := client.bodies[0]
	assert.Equal(t, int64(len(body)), out.Size)
	assert.Equal(t, expectedChecksum(body), out.ChecksumCRC32)
	assert.Equal(t, XZContentType, aws.ToString(client.puts[0].ContentType))

	r, err := xz.NewReader(bytes.NewReader(body))
	require.NoError(t, err)
	decoded, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, archive, decoded)
}

func TestUpload_Errors(t *testing.T) {
	archive := testArchive(t)

	_, err := Upload(context.Background(), &fakeClient{}, Input{Key: "a.zip", Archive: archive})
	assert.EqualError(t, err, "bucket is required")

	_, err = Upload(context.Background(), &fakeClient{}, Input{Bucket: "b", Archive: archive})
	assert.EqualError(t, err, "key is required")

	cause := errors.New("access denied")
	_, err = Upload(context.Background(), &fakeClient{err: cause}, Input{Bucket: "b", Key: "a.zip", Archive: archive})
	assert.ErrorIs(t, err, cause)
}
