package domain

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFile_Validate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, File{Name: "cv.pdf", ContentType: "application/pdf", Data: []byte("%PDF")}.Validate())
	assert.ErrorIs(t, File{Name: "cv.pdf", ContentType: "application/pdf"}.Validate(), ErrEmptyFile)
	assert.ErrorIs(t, File{Name: "cv.pdf", Data: []byte("x")}.Validate(), ErrMissingMediaType)
	assert.ErrorIs(t, File{}.Validate(), ErrValidation)
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	t.Run("detects pdf", func(t *testing.T) {
		path := filepath.Join(dir, "resume.pdf")
		require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n"), 0o600))

		f, err := LoadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "resume.pdf", f.Name)
		assert.Equal(t, "application/pdf", f.ContentType)
		assert.EqualValues(t, len("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n"), f.Size())
	})

	t.Run("empty file is rejected", func(t *testing.T) {
		path := filepath.Join(dir, "empty.pdf")
		require.NoError(t, os.WriteFile(path, nil, 0o600))

		_, err := LoadFile(path)
		assert.ErrorIs(t, err, ErrEmptyFile)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(dir, "nope.pdf"))
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrValidation)
	})
}

func TestDocumentFiles_Validate(t *testing.T) {
	t.Parallel()

	pan := &File{Name: "pan.png", ContentType: "image/png", Data: []byte{0x89}}

	assert.True(t, DocumentFiles{}.Empty())
	assert.ErrorIs(t, DocumentFiles{}.Validate(), ErrNoDocuments)
	assert.NoError(t, DocumentFiles{PAN: pan}.Validate())
	assert.ErrorIs(t, DocumentFiles{Aadhaar: &File{Name: "a.png"}}.Validate(), ErrEmptyFile)
}
