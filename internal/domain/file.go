package domain

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
)

// File is a binary payload with a declared media type, ready to be sent as
// one multipart part.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Size returns the payload length in bytes.
func (f File) Size() int64 {
	return int64(len(f.Data))
}

// Validate checks that the file has a payload and a media type.
func (f File) Validate() error {
	if len(f.Data) == 0 {
		return ErrEmptyFile
	}
	if f.ContentType == "" {
		return ErrMissingMediaType
	}
	return nil
}

// LoadFile reads path and detects its media type from the content.
func LoadFile(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	f := File{
		Name:        filepath.Base(path),
		ContentType: mimetype.Detect(data).String(),
		Data:        data,
	}
	if err := f.Validate(); err != nil {
		return File{}, err
	}
	return f, nil
}

// DocumentFiles holds the optional identity documents for one submission.
type DocumentFiles struct {
	PAN     *File
	Aadhaar *File
}

// Empty reports whether neither document is attached.
func (d DocumentFiles) Empty() bool {
	return d.PAN == nil && d.Aadhaar == nil
}

// Validate requires at least one document and checks every attached file.
func (d DocumentFiles) Validate() error {
	if d.Empty() {
		return ErrNoDocuments
	}
	for _, f := range []*File{d.PAN, d.Aadhaar} {
		if f == nil {
			continue
		}
		if err := f.Validate(); err != nil {
			return err
		}
	}
	return nil
}
