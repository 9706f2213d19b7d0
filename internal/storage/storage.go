package storage

import (
	"io"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"

	"github.com/kd5jp/ChurchBell/internal/config"
)

// Client mirrors backup archives to an offsite provider. Returns nil when
// backup.provider is "none" — callers treat a nil client as "no mirror".
type Client struct {
	backend Provider
	bucket  string
}

func New(cfg *config.Config) *Client {
	switch cfg.Backup.Provider {
	case "local":
		return &Client{
			backend: NewLocalProvider(cfg.Backup.LocalRoot),
			bucket:  "churchbell",
		}
	case "s3":
		s3Config := &aws.Config{
			Credentials:      credentials.NewStaticCredentials(cfg.Backup.KeyID, cfg.Backup.AppKey, ""),
			Endpoint:         aws.String(cfg.Backup.Endpoint),
			Region:           aws.String(cfg.Backup.Region),
			S3ForcePathStyle: aws.Bool(true),
		}
		sess := session.Must(session.NewSession(s3Config))
		return &Client{
			backend: NewS3Provider(sess),
			bucket:  cfg.Backup.Bucket,
		}
	default:
		return nil
	}
}

func (c *Client) UploadArchive(key string, body io.ReadSeeker) error {
	return c.backend.Put(c.bucket, key, body, "application/zip")
}

func (c *Client) ListArchives() ([]string, error) {
	return c.backend.List(c.bucket, "")
}

func (c *Client) DownloadArchive(key string) (*FileObject, error) {
	return c.backend.Get(c.bucket, key)
}
