package config

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// ArchiveConfig contains the naming of built archives.
type ArchiveConfig struct {
	Name        string
	Version     string
	Ext         string
	ContentType string
}

// ForArchive returns configuration from the [archive] section.
func (l *Loader) ForArchive() (c ArchiveConfig) {
	sec := l.section("archive")
	if sec == nil {
		return c
	}

	c.Name = sec.Key("name").String()
	c.Version = sec.Key("version").String()
	c.Ext = sec.Key("ext").String()
	c.ContentType = sec.Key("content-type").String()

	return
}

// ForArchive calls Loader.ForArchive on the DefaultLoader instance.
func ForArchive() ArchiveConfig {
	return DefaultLoader.ForArchive()
}

// UploadConfig contains upload configurations.
type UploadConfig struct {
	Bucket string
	Prefix string
	XZ     bool
}

// ForUpload returns configuration from the [upload] section.
func (l *Loader) ForUpload() (c UploadConfig) {
	sec := l.section("upload")
	if sec == nil {
		return c
	}

	c.Bucket = sec.Key("bucket").String()
	c.Prefix = sec.Key("prefix").String()
	c.XZ = sec.Key("xz").MustBool(false)

	return
}

// ForUpload calls Loader.ForUpload on the DefaultLoader instance.
func ForUpload() UploadConfig {
	return DefaultLoader.ForUpload()
}

// ServeConfig contains configuration for the download server.
type ServeConfig struct {
	Addr string
}

// ForServe returns configuration from the [serve] section.
func (l *Loader) ForServe() (c ServeConfig) {
	sec := l.section("serve")
	if sec == nil {
		return c
	}

	c.Addr = sec.Key("addr").String()
	return
}

// ForServe calls Loader.ForServe on the DefaultLoader instance.
func ForServe() ServeConfig {
	return DefaultLoader.ForServe()
}

// BucketConfig contains configuration settings for a specific bucket.
type BucketConfig struct {
	Bucket              string
	AWSProfile          string
	ExpectedBucketOwner *string
	StorageClass        types.StorageClass
}

// ForBucket returns configuration from the [s3://bucket] section.
func (l *Loader) ForBucket(bucket string) (c BucketConfig) {
	c.Bucket = bucket

	sec := l.section("s3://" + bucket)
	if sec == nil {
		return c
	}

	c.AWSProfile = sec.Key("aws-profile").String()

	if sec.HasKey("expected-bucket-owner") {
		c.ExpectedBucketOwner = aws.String(sec.Key("expected-bucket-owner").String())
	}
	if sec.HasKey("storage-class") {
		c.StorageClass = types.StorageClass(sec.Key("storage-class").String())
	}

	return
}

// ForBucket calls Loader.ForBucket on the DefaultLoader instance.
func ForBucket(bucket string) BucketConfig {
	return DefaultLoader.ForBucket(bucket)
}
