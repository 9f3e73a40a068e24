package uploader

import "context"

// Uploader hands a locally buffered file to the external asset store and
// returns a durable URL. Callers own the local file and must remove it
// whether the upload succeeds or fails.
type Uploader interface {
	Upload(ctx context.Context, localPath string) (string, error)
}
