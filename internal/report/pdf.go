package report

import (
	"bytes"
	"image"
	_ "image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pkg/errors"
	"golang.org/x/image/webp"

	"github.com/cuongbtq/fieldservice-be/internal/domain"
)

const mimePDF = "application/pdf"

func init() {
	// keep pdfcpu from writing its config under the user's home directory
	api.DisableConfigDir()
}

// ConvertibleMime reports whether ToPDF accepts the content type
func ConvertibleMime(mime string) bool {
	switch normalizeMime(mime) {
	case mimePDF, "image/png", "image/jpeg", "image/webp":
		return true
	}
	return false
}

// ToPDF returns data as a PDF. PDFs pass through, images become a single page.
func ToPDF(data []byte, mime string) ([]byte, error) {
	if len(data) == 0 {
		return nil, errors.Wrap(domain.ErrInvalidInput, "report file is empty")
	}

	mime = normalizeMime(mime)
	if mime == mimePDF {
		return data, nil
	}
	if !ConvertibleMime(mime) {
		return nil, errors.Wrapf(domain.ErrInvalidInput, "cannot convert %s to pdf", mime)
	}

	img, err := decodeImage(data)
	if err != nil {
		return nil, err
	}

	// pdfcpu imports png and jpeg only, so every image is re-encoded as png
	var staged bytes.Buffer
	if err := png.Encode(&staged, img); err != nil {
		return nil, errors.Wrap(err, "failed to stage image")
	}

	var out bytes.Buffer
	if err := api.ImportImages(nil, &out, []io.Reader{&staged}, pdfcpu.DefaultImportConfig(), nil); err != nil {
		return nil, errors.Wrap(err, "failed to convert image to pdf")
	}
	return out.Bytes(), nil
}

// PDFFileName swaps the extension of name for .pdf
func PDFFileName(name string) string {
	base := strings.TrimSpace(filepath.Base(name))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." || base == string(filepath.Separator) {
		base = "report"
	}
	return base + ".pdf"
}

func decodeImage(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err == nil {
		return img, nil
	}
	if decoded, webpErr := webp.Decode(bytes.NewReader(data)); webpErr == nil {
		return decoded, nil
	}
	return nil, errors.Wrap(domain.ErrInvalidInput, "unable to decode report image")
}

func normalizeMime(mime string) string {
	mime = strings.ToLower(strings.TrimSpace(mime))
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	return mime
}
