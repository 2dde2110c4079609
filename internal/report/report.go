// Package report loads stored job reports and renders them for viewing or download.
package report

import (
	"context"
	"log/slog"

	"github.com/cuongbtq/fieldservice-be/internal/model"
)

// Store loads report metadata
type Store interface {
	GetReport(ctx context.Context, organizationID, reportID string) (*model.Report, error)
}

// File is a report ready to be written to the response
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Service resolves reports of the caller's organization to file contents
type Service struct {
	store  Store
	blobs  BlobStore
	logger *slog.Logger
}

func NewService(store Store, blobs BlobStore, logger *slog.Logger) *Service {
	return &Service{store: store, blobs: blobs, logger: logger}
}

// PDF returns the report as a PDF, converting stored images on the fly
func (s *Service) PDF(ctx context.Context, organizationID, reportID string) (*File, error) {
	r, data, err := s.load(ctx, organizationID, reportID)
	if err != nil {
		return nil, err
	}

	pdf, err := ToPDF(data, r.MimeType)
	if err != nil {
		s.logger.Error("Failed to render report as pdf",
			slog.String("report_id", r.ID),
			slog.String("mime_type", r.MimeType),
			slog.Any("error", err),
		)
		return nil, err
	}
	return &File{Name: PDFFileName(r.FileName), ContentType: mimePDF, Data: pdf}, nil
}

func (s *Service) load(ctx context.Context, organizationID, reportID string) (*model.Report, []byte, error) {
	r, err := s.store.GetReport(ctx, organizationID, reportID)
	if err != nil {
		return nil, nil, err
	}

	data, err := s.blobs.Read(r.StoragePath)
	if err != nil {
		return nil, nil, err
	}
	return r, data, nil
}
