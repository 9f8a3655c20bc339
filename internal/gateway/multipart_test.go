package gateway

import (
	"io"
	"mime"
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/traqcheck/intake-client/internal/domain"
)

func TestEncodeMultipart(t *testing.T) {
	t.Parallel()

	pan := &domain.File{Name: `pan "front".png`, ContentType: "image/png", Data: []byte("png-bytes")}
	body, contentType, err := encodeMultipart(
		formPart{field: "pan", file: pan},
		formPart{field: "aadhaar", file: nil},
	)
	require.NoError(t, err)

	mediaType, params, err := mime.ParseMediaType(contentType)
	require.NoError(t, err)
	assert.Equal(t, "multipart/form-data", mediaType)

	reader := multipart.NewReader(body, params["boundary"])
	part, err := reader.NextPart()
	require.NoError(t, err)
	assert.Equal(t, "pan", part.FormName())
	assert.Equal(t, `pan "front".png`, part.FileName())
	assert.Equal(t, "image/png", part.Header.Get("Content-Type"))
	data, err := io.ReadAll(part)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	_, err = reader.NextPart()
	assert.ErrorIs(t, err, io.EOF, "nil files are skipped")
}
