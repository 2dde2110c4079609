package report

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuongbtq/fieldservice-be/internal/domain"
	"github.com/cuongbtq/fieldservice-be/internal/model"
	"github.com/cuongbtq/fieldservice-be/shared/logger"
)

func samplePNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for x := 0; x < 16; x++ {
		img.Set(x, x, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestToPDF(t *testing.T) {
	pdf := []byte("%PDF-1.7\n%stub")

	out, err := ToPDF(pdf, "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, pdf, out, "pdf passes through")

	out, err = ToPDF(samplePNG(t), "image/png")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))

	_, err = ToPDF([]byte("plain text"), "text/plain")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = ToPDF([]byte("not an image"), "image/jpeg")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = ToPDF(nil, "application/pdf")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPDFFileName(t *testing.T) {
	assert.Equal(t, "site-visit.pdf", PDFFileName("site-visit.png"))
	assert.Equal(t, "report.pdf", PDFFileName(""))
	assert.Equal(t, "scan.pdf", PDFFileName("uploads/scan.webp"))
}

func TestConvertibleMime(t *testing.T) {
	assert.True(t, ConvertibleMime("IMAGE/WEBP"))
	assert.True(t, ConvertibleMime("application/pdf; charset=binary"))
	assert.False(t, ConvertibleMime("image/gif"))
}

func TestDirStore_Read(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "org-1"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "org-1", "r.pdf"), []byte("%PDF"), 0o644))

	s := NewDirStore(root)

	data, err := s.Read("org-1/r.pdf")
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF"), data)

	_, err = s.Read("org-1/missing.pdf")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = s.Read("../etc/passwd")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = s.Read("/etc/passwd")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

type fakeReports struct {
	report *model.Report
}

func (f *fakeReports) GetReport(_ context.Context, organizationID, _ string) (*model.Report, error) {
	if f.report == nil || f.report.OrganizationID != organizationID {
		return nil, domain.ErrNotFound
	}
	return f.report, nil
}

type mapBlobs map[string][]byte

func (m mapBlobs) Read(path string) ([]byte, error) {
	if b, ok := m[path]; ok {
		return b, nil
	}
	return nil, domain.ErrNotFound
}

func TestService(t *testing.T) {
	raw := samplePNG(t)
	store := &fakeReports{report: &model.Report{
		ID:             "r-1",
		OrganizationID: "org-1",
		FileName:       "boiler.png",
		MimeType:       "image/png",
		StoragePath:    "org-1/boiler.png",
	}}
	s := NewService(store, mapBlobs{"org-1/boiler.png": raw}, logger.NewNop())
	ctx := context.Background()

	f, err := s.PDF(ctx, "org-1", "r-1")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", f.ContentType)
	assert.Equal(t, "boiler.pdf", f.Name)
	assert.True(t, bytes.HasPrefix(f.Data, []byte("%PDF")))

	assert.NotEqual(t, raw, f.Data)

	_, err = s.PDF(ctx, "org-2", "r-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
