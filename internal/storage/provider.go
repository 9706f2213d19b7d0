package storage

import (
	"io"
	"time"
)

// Provider is any backend that can hold backup archives.
type Provider interface {
	List(bucket, prefix string) ([]string, error)
	Get(bucket, key string) (*FileObject, error)
	Put(bucket, key string, body io.ReadSeeker, contentType string) error
}

// FileObject is the provider-agnostic representation of a stored archive.
type FileObject struct {
	Body          io.ReadCloser
	ContentLength int64
	ContentType   string
	LastModified  time.Time
}
