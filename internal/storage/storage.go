package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
)

// Store uploads avatar images either to S3 (optionally fronted by
// CloudFront) or to a local directory. Which backend is used is fixed at
// construction.
type Store struct {
	sess          *session.Session
	bucket        string
	cloudFrontURL string
	localDir      string
}

func NewLocal(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %v", dir, err)
	}
	return &Store{localDir: dir}, nil
}

func NewS3(bucket, region, cloudFrontURL string) (*Store, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, err
	}
	return &Store{sess: sess, bucket: bucket, cloudFrontURL: cloudFrontURL}, nil
}

// Upload stores the file under a fresh key and returns its public URL.
func (s *Store) Upload(file *multipart.FileHeader, prefix string) (string, error) {
	key := fmt.Sprintf("%s/%s%s", prefix, uuid.New().String(), filepath.Ext(file.Filename))
	if s.sess == nil {
		return s.uploadLocal(file, key)
	}
	return s.uploadS3(file, key)
}

func (s *Store) uploadS3(file *multipart.FileHeader, key string) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	svc := s3.New(s.sess)
	_, err = svc.PutObject(&s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        src,
		ContentType: aws.String(file.Header.Get("Content-Type")),
		ACL:         aws.String("public-read"),
	})
	if err != nil {
		return "", err
	}

	if s.cloudFrontURL != "" {
		return fmt.Sprintf("%s/%s", strings.TrimSuffix(s.cloudFrontURL, "/"), key), nil
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.bucket, key), nil
}

func (s *Store) uploadLocal(file *multipart.FileHeader, key string) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %v", err)
	}
	defer src.Close()

	fullPath := filepath.Join(s.localDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %v", err)
	}
	dst, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %v", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("failed to save file: %v", err)
	}

	return "/" + strings.TrimPrefix(filepath.ToSlash(fullPath), "./"), nil
}
