package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/traqcheck/intake-client/internal/domain"
)

// Sample payloads detected as application/pdf and image/png.
var (
	SamplePDF = []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n")
	SamplePNG = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")
)

// WriteTempFile writes data to name inside a per-test directory and returns
// the path. The directory is removed when the test ends.
func WriteTempFile(t testing.TB, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

// PDFFile returns an in-memory resume named name.
func PDFFile(name string) domain.File {
	return domain.File{Name: name, ContentType: "application/pdf", Data: SamplePDF}
}

// PNGFile returns an in-memory image named name.
func PNGFile(name string) domain.File {
	return domain.File{Name: name, ContentType: "image/png", Data: SamplePNG}
}
