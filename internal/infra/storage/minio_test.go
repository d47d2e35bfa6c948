package storage

import (
	"testing"

	"github.com/minio/minio-go/v7"
)

func TestObjectURL(t *testing.T) {
	cli, err := minio.New("minio.local:9000", &minio.Options{Secure: false})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	s := &Store{client: cli, bucketName: "images"}

	if got := s.ObjectURL("acme/2025/01/02/x.jpg"); got != "http://minio.local:9000/images/acme/2025/01/02/x.jpg" {
		t.Fatalf("unexpected url %s", got)
	}
}
