// Package imagestore wraps the Cloud Storage buckets that hold uploaded
// images.
package imagestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
)

type Store struct {
	gcsClient *storage.Client
}

func New(gcsClient *storage.Client) *Store {
	return &Store{
		gcsClient: gcsClient,
	}
}

// Upload writes the object from r.  The write is conditional on the object
// not existing: object names carry a millisecond timestamp to avoid
// collisions, and a collision is a failure rather than an overwrite.
func (s *Store) Upload(ctx context.Context, bucket, object string, r io.Reader) error {
	w := s.gcsClient.Bucket(bucket).Object(object).If(storage.Conditions{DoesNotExist: true}).NewWriter(ctx)
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return fmt.Errorf("while writing object %s/%s: %w", bucket, object, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("while finalizing object %s/%s: %w", bucket, object, err)
	}
	return nil
}

// Remove deletes the named objects.  Objects that don't exist are treated as
// already removed.  Callers log other failures but don't let them block the
// dependent database mutation.
func (s *Store) Remove(ctx context.Context, bucket string, objects ...string) error {
	for _, object := range objects {
		err := s.gcsClient.Bucket(bucket).Object(object).Delete(ctx)
		if errors.Is(err, storage.ErrObjectNotExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("while deleting object %s/%s: %w", bucket, object, err)
		}
	}
	return nil
}

// PublicURL returns the public URL for an object.  The buckets are assumed to
// be publicly readable; there is no signed-URL support.
func (s *Store) PublicURL(bucket, object string) string {
	return "https://storage.googleapis.com/" + bucket + "/" + object
}

// ObjectFromURL recovers an object name from a public URL by splitting on the
// bucket path segment.  This mirrors how the URLs are produced by PublicURL;
// it breaks if the storage provider changes its URL scheme.
func ObjectFromURL(url, bucket string) (string, bool) {
	parts := strings.SplitN(url, "/"+bucket+"/", 2)
	if len(parts) != 2 || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// FoodObjectName builds the object name for a food image:
// {ownerID}_{currentTimeMillis}{ext}.
func FoodObjectName(ownerID, filename string) string {
	return fmt.Sprintf("%s_%d%s", ownerID, time.Now().UnixNano()/int64(time.Millisecond), path.Ext(filename))
}

// ProfileObjectName builds the object name for a profile image uploaded from
// the profile screen: {ownerID}-{currentTimeMillis}{ext}.
func ProfileObjectName(ownerID, filename string) string {
	return fmt.Sprintf("%s-%d%s", ownerID, time.Now().UnixNano()/int64(time.Millisecond), path.Ext(filename))
}

// RegisterObjectName builds the object name for a profile image uploaded
// during registration, before a user ID exists: {currentTimeMillis}_{name}.
func RegisterObjectName(filename string) string {
	return fmt.Sprintf("%d_%s", time.Now().UnixNano()/int64(time.Millisecond), path.Base(filename))
}
