package storage

import (
	"context"
	"io"
	"log"
	"os"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

var (
	Blob       *minio.Client
	BlobBucket string
)

// InitializeBlob connects to the S3-compatible attachment store and makes sure
// the bucket exists. Attachments are addressed by object path only; the server
// never reads their contents back.
func InitializeBlob() {
	endpoint := os.Getenv("BLOB_ENDPOINT")
	accessKey := os.Getenv("BLOB_ACCESS_KEY")
	secretKey := os.Getenv("BLOB_SECRET_KEY")
	BlobBucket = os.Getenv("BLOB_BUCKET")
	if BlobBucket == "" {
		BlobBucket = "chat-attachments"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: os.Getenv("BLOB_USE_SSL") == "true",
	})
	if err != nil {
		log.Panic("error connecting to blob store: " + err.Error())
	}

	ctx := context.Background()
	if err := client.MakeBucket(ctx, BlobBucket, minio.MakeBucketOptions{}); err != nil {
		exists, errBucketExists := client.BucketExists(ctx, BlobBucket)
		if errBucketExists != nil || !exists {
			log.Panic("error creating blob bucket: " + err.Error())
		}
	}

	Blob = client
}

// SaveAttachment streams one file into the bucket and returns its storage path.
func SaveAttachment(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (string, error) {
	_, err := Blob.PutObject(ctx, BlobBucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	return BlobBucket + "/" + objectName, nil
}
