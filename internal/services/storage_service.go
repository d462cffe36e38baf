// internal/services/storage_service.go
package services

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"github.com/chainmarket/backend/internal/config"
	"github.com/chainmarket/backend/internal/utils"
)

// StorageService stores review and product images content-addressed: the
// object key is the hex sha256 of the bytes, so uploads are idempotent and
// the hash stored on a review or product always resolves to the same bytes.
type StorageService struct {
	s3Client *s3.S3
	config   *config.Config
	localDir string
}

type UploadResult struct {
	Hash     string `json:"hash"`
	URL      string `json:"url"`
	Size     int64  `json:"size"`
	MimeType string `json:"mime_type"`
}

const maxImageSize = 10 * 1024 * 1024 // 10MB

func NewStorageService(config *config.Config) (*StorageService, error) {
	if config.AWS.AccessKeyID == "" {
		// No credentials; fall back to local storage for development.
		return &StorageService{config: config, localDir: "./uploads"}, nil
	}

	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(config.AWS.Region),
		Credentials: credentials.NewStaticCredentials(
			config.AWS.AccessKeyID,
			config.AWS.SecretAccessKey,
			"",
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &StorageService{
		s3Client: s3.New(sess),
		config:   config,
	}, nil
}

// UploadImage validates the file as an image and stores it under
// images/<sha256>. Re-uploading identical bytes overwrites the same key.
func (s *StorageService) UploadImage(file multipart.File, header *multipart.FileHeader) (*UploadResult, error) {
	if header.Size > maxImageSize {
		return nil, fmt.Errorf("file size %d bytes exceeds maximum allowed size %d bytes", header.Size, int64(maxImageSize))
	}

	fileBytes, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if !isValidImageType(fileBytes) {
		return nil, fmt.Errorf("invalid image file")
	}

	hash := utils.ContentHash(fileBytes)
	key := fmt.Sprintf("images/%s", hash)
	contentType := header.Header.Get("Content-Type")

	if s.s3Client != nil {
		return s.uploadToS3(fileBytes, hash, key, contentType)
	}
	return s.uploadToLocal(fileBytes, hash, contentType)
}

func (s *StorageService) uploadToS3(fileBytes []byte, hash, key, contentType string) (*UploadResult, error) {
	_, err := s.s3Client.PutObject(&s3.PutObjectInput{
		Bucket:        aws.String(s.config.AWS.S3Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(fileBytes),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(fileBytes))),
		ACL:           aws.String("public-read"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload to S3: %w", err)
	}

	return &UploadResult{
		Hash:     hash,
		URL:      s.getS3URL(key),
		Size:     int64(len(fileBytes)),
		MimeType: contentType,
	}, nil
}

func (s *StorageService) uploadToLocal(fileBytes []byte, hash, contentType string) (*UploadResult, error) {
	dir := filepath.Join(s.localDir, "images")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	path := filepath.Join(dir, hash)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.WriteFile(path, fileBytes, 0o644); err != nil {
			return nil, fmt.Errorf("failed to write file: %w", err)
		}
	}

	return &UploadResult{
		Hash:     hash,
		URL:      fmt.Sprintf("http://%s:%s/uploads/images/%s", s.config.Server.Host, s.config.Server.Port, hash),
		Size:     int64(len(fileBytes)),
		MimeType: contentType,
	}, nil
}

// ResolveURL maps a stored content hash to a fetchable URL.
func (s *StorageService) ResolveURL(hash string) string {
	if hash == "" {
		return ""
	}
	key := fmt.Sprintf("images/%s", hash)
	if s.s3Client != nil {
		return s.getS3URL(key)
	}
	return fmt.Sprintf("http://%s:%s/uploads/%s", s.config.Server.Host, s.config.Server.Port, key)
}

func (s *StorageService) getS3URL(key string) string {
	if s.config.AWS.CloudFrontURL != "" {
		return fmt.Sprintf("%s/%s", s.config.AWS.CloudFrontURL, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s",
		s.config.AWS.S3Bucket, s.config.AWS.Region, key)
}

func isValidImageType(buffer []byte) bool {
	// JPEG
	if len(buffer) >= 3 && buffer[0] == 0xFF && buffer[1] == 0xD8 && buffer[2] == 0xFF {
		return true
	}
	// PNG
	if len(buffer) >= 8 && buffer[0] == 0x89 && buffer[1] == 0x50 && buffer[2] == 0x4E && buffer[3] == 0x47 {
		return true
	}
	// GIF
	if len(buffer) >= 6 && (string(buffer[0:6]) == "GIF87a" || string(buffer[0:6]) == "GIF89a") {
		return true
	}
	return false
}
