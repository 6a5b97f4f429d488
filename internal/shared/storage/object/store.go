package object

import (
	"context"
	"io"
	"path"

	"smartcareer-backend/internal/shared/util"
)

// ObjectStore defines the contract for saving and retrieving binary objects.
type ObjectStore interface {
	Put(ctx context.Context, storageKey string, contentType string, r io.Reader) (sizeBytes int64, err error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
	// Delete removes an object. Deleting a missing object is not an error.
	Delete(ctx context.Context, storageKey string) error
}

// ResumeKey is the storage key of one uploaded resume file. Keys live under
// the user's namespace and are derived from the content, so a resume row
// always points at the exact bytes it was extracted from.
func ResumeKey(userID string, data []byte) string {
	return path.Join(util.HashUserKey(userID), "resumes", util.ContentHash(data)+".pdf")
}
