package batch

import "errors"

// ErrNoFiles is returned by Run when there is nothing to upload.
var ErrNoFiles = errors.New("no files to upload")
