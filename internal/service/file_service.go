package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"transquote/internal/config"
	"transquote/internal/domain"
	"transquote/internal/port"
)

// FileUploadInput is the DTO for batch file upload requests.
type FileUploadInput struct {
	BatchID uuid.UUID
	File    multipart.File
	Header  *multipart.FileHeader
}

// FileService manages the scanned files attached to a batch.
type FileService interface {
	Upload(ctx context.Context, input FileUploadInput) (*domain.BatchFile, error)
	ListByBatch(ctx context.Context, batchID uuid.UUID) ([]domain.BatchFile, error)
	GetDownloadURL(ctx context.Context, batchID, fileID uuid.UUID) (string, error)
	Delete(ctx context.Context, batchID, fileID uuid.UUID) error
}

type fileService struct {
	fileRepo  port.BatchFileRepository
	batchRepo port.BatchRepository
	storage   port.ObjectStorage
	cfg       *config.S3Config
}

// NewFileService creates a new FileService implementation.
func NewFileService(
	fileRepo port.BatchFileRepository,
	batchRepo port.BatchRepository,
	storage port.ObjectStorage,
	cfg *config.S3Config,
) FileService {
	return &fileService{
		fileRepo:  fileRepo,
		batchRepo: batchRepo,
		storage:   storage,
		cfg:       cfg,
	}
}

func (s *fileService) Upload(ctx context.Context, input FileUploadInput) (*domain.BatchFile, error) {
	if _, err := s.batchRepo.GetByID(ctx, input.BatchID); err != nil {
		return nil, err
	}

	// Validate file extension
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(input.Header.Filename), "."))
	fileType, ok := domain.AllowedExtensions[ext]
	if !ok {
		return nil, domain.ErrUnsupportedFileType
	}

	// Validate file size
	maxBytes := s.cfg.MaxFileSizeMB * 1024 * 1024
	if input.Header.Size > maxBytes {
		return nil, domain.ErrFileTooLarge
	}

	// Read first 512 bytes for magic-byte content type detection
	buf := make([]byte, 512)
	n, err := input.File.Read(buf)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("reading file header: %w", err)
	}
	detectedType := http.DetectContentType(buf[:n])

	if _, validContent := domain.AllowedContentTypes[detectedType]; !validContent {
		return nil, domain.ErrUnsupportedFileType
	}

	// Seek back to beginning for upload
	if _, err := input.File.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seeking file: %w", err)
	}

	fileID := uuid.New()
	s3Key := fmt.Sprintf("batches/%s/files/%s/%s", input.BatchID, fileID, input.Header.Filename)

	file := &domain.BatchFile{
		ID:          fileID,
		BatchID:     input.BatchID,
		FileName:    input.Header.Filename,
		FileType:    fileType,
		FileSize:    input.Header.Size,
		S3Bucket:    s.cfg.Bucket,
		S3Key:       s3Key,
		ContentType: detectedType,
	}

	log.Printf("fileService.Upload: uploading %s (%s, %d bytes) into batch %s",
		input.Header.Filename, detectedType, input.Header.Size, input.BatchID)

	if err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.cfg.Bucket,
		Key:         s3Key,
		Body:        input.File,
		ContentType: detectedType,
	}); err != nil {
		log.Printf("fileService.Upload: storage upload failed for %s: %v", input.Header.Filename, err)
		return nil, domain.ErrUploadFailed
	}

	if err := s.fileRepo.Create(ctx, file); err != nil {
		return nil, fmt.Errorf("creating file record: %w", err)
	}

	return file, nil
}

func (s *fileService) ListByBatch(ctx context.Context, batchID uuid.UUID) ([]domain.BatchFile, error) {
	if _, err := s.batchRepo.GetByID(ctx, batchID); err != nil {
		return nil, err
	}
	return s.fileRepo.ListByBatch(ctx, batchID)
}

func (s *fileService) GetDownloadURL(ctx context.Context, batchID, fileID uuid.UUID) (string, error) {
	file, err := s.fileRepo.GetByID(ctx, batchID, fileID)
	if err != nil {
		return "", err
	}
	return s.storage.GetPresignedURL(ctx, file.S3Bucket, file.S3Key, s.cfg.PresignExpiry)
}

func (s *fileService) Delete(ctx context.Context, batchID, fileID uuid.UUID) error {
	file, err := s.fileRepo.GetByID(ctx, batchID, fileID)
	if err != nil {
		return err
	}
	if err := s.storage.Delete(ctx, file.S3Bucket, file.S3Key); err != nil {
		log.Printf("fileService.Delete: storage delete failed for %s, removing record anyway: %v", file.S3Key, err)
	}
	return s.fileRepo.Delete(ctx, batchID, fileID)
}
