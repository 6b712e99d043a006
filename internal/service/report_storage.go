package services

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ReportStorage archiva en S3 los reportes PDF generados por el backend de
// IA y retorna la URL pública del objeto.
type ReportStorage struct {
	BucketName string
	Client     *s3.Client
}

// NewReportStorage initializes the S3-backed report storage
func NewReportStorage(region string) (*ReportStorage, error) {
	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %v", err)
	}

	bucketName := os.Getenv("S3_BUCKET_NAME")
	if bucketName == "" {
		return nil, fmt.Errorf("bucket name is not set in environment variables")
	}

	return &ReportStorage{
		BucketName: bucketName,
		Client:     s3.NewFromConfig(cfg),
	}, nil
}

// UploadReport sube el PDF de un usuario y retorna su URL pública
func (s *ReportStorage) UploadReport(ctx context.Context, userID int, pdf []byte) (string, error) {
	key := fmt.Sprintf("reportes/%d_informe_%d.pdf", userID, time.Now().Unix())

	_, err := s.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(pdf),
		ContentType: aws.String("application/pdf"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload report to S3: %v", err)
	}

	url := fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.BucketName, key)
	return url, nil
}
