package object

import (
	"context"
	"crypto/rand"
	"io"
	"path"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/oklog/ulid/v2"

	"cv-generator/internal/shared/util"
)

// ObjectStore saves and retrieves archived documents.
type ObjectStore interface {
	Save(ctx context.Context, ownerID string, fileName string, r io.Reader) (storageKey string, sizeBytes int64, mimeType string, err error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
}

// SniffLen is how many leading bytes are read to detect the content type.
const SniffLen = 3072

// BuildKey returns "<hashed owner>/<ulid>_<name>". Keys sort by creation time within an owner.
func BuildKey(ownerID, fileName string) (string, error) {
	safe, err := util.SanitizeFileName(fileName)
	if err != nil {
		return "", err
	}
	id, err := ulid.New(ulid.Timestamp(time.Now()), ulid.Monotonic(rand.Reader, 0))
	if err != nil {
		return "", err
	}
	return path.Join(util.HashKey(ownerID), id.String()+"_"+safe), nil
}

// DetectType returns the bare MIME type of a sniffed prefix.
func DetectType(head []byte) string {
	mtype := mimetype.Detect(head).String()
	return strings.TrimSpace(strings.Split(mtype, ";")[0])
}
