// Package poller implements the background sweeper.
//
// The web screens update the document store and the image buckets with no
// transaction across the two: an upload followed by a failed record write
// leaves an orphaned object behind, and expired session documents are never
// touched by the screens at all.  The poller cleans up both on a fixed
// period.
package poller

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"foodtracker/dbtypes"
	"foodtracker/imagestore"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

const (
	userCollection    = "user"
	foodCollection    = "food"
	sessionCollection = "session"
)

// orphanGrace is how old a storage object must be before an unreferenced
// object is considered an orphan rather than an upload whose record write is
// still in flight.
const orphanGrace = 1 * time.Hour

type Poller struct {
	firestoreClient *firestore.Client
	gcsClient       *storage.Client

	userImageBucket string
	foodImageBucket string

	recheckPeriod time.Duration
}

func New(firestoreClient *firestore.Client, gcsClient *storage.Client, userImageBucket, foodImageBucket string, recheckPeriod time.Duration) *Poller {
	return &Poller{
		firestoreClient: firestoreClient,
		gcsClient:       gcsClient,
		userImageBucket: userImageBucket,
		foodImageBucket: foodImageBucket,
		recheckPeriod:   recheckPeriod,
	}
}

func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.recheckPeriod)
	defer ticker.Stop()

	// Sweep once right away --- ticker doesn't fire until the tick period
	// has elapsed.
	if err := p.sweep(ctx); err != nil {
		slog.ErrorContext(ctx, "Error during sweeper pass", slog.Any("err", err))
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		if err := p.sweep(ctx); err != nil {
			slog.ErrorContext(ctx, "Error during sweeper pass", slog.Any("err", err))
		}
	}
}

func (p *Poller) sweep(ctx context.Context) error {
	slog.InfoContext(ctx, "Starting sweeper pass")
	defer func() {
		slog.InfoContext(ctx, "Finished sweeper pass")
	}()

	if err := p.sweepSessions(ctx); err != nil {
		return fmt.Errorf("while sweeping sessions: %w", err)
	}

	if err := p.sweepBucket(ctx, p.userImageBucket); err != nil {
		return fmt.Errorf("while sweeping bucket %s: %w", p.userImageBucket, err)
	}

	if err := p.sweepBucket(ctx, p.foodImageBucket); err != nil {
		return fmt.Errorf("while sweeping bucket %s: %w", p.foodImageBucket, err)
	}

	return nil
}

// sweepSessions deletes session documents that have expired.
func (p *Poller) sweepSessions(ctx context.Context) error {
	sessionIter := p.firestoreClient.Collection(sessionCollection).Where("expires", "<", time.Now()).Documents(ctx)
	defer sessionIter.Stop()
	for {
		sessionSnapshot, err := sessionIter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return fmt.Errorf("while iterating expired sessions: %w", err)
		}

		if _, err := sessionSnapshot.Ref.Delete(ctx); err != nil {
			return fmt.Errorf("while deleting session %s: %w", sessionSnapshot.Ref.ID, err)
		}

		slog.InfoContext(ctx, "Deleted expired session", slog.String("session", sessionSnapshot.Ref.ID))
	}

	return nil
}

// sweepBucket deletes objects in bucket that are no longer referenced by any
// user or food document and are old enough that no record write can still be
// in flight for them.
func (p *Poller) sweepBucket(ctx context.Context, bucket string) error {
	referenced, err := p.referencedObjects(ctx, bucket)
	if err != nil {
		return fmt.Errorf("while collecting referenced objects: %w", err)
	}

	stored := map[string]time.Time{}
	objectIter := p.gcsClient.Bucket(bucket).Objects(ctx, nil)
	for {
		attrs, err := objectIter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return fmt.Errorf("while iterating objects: %w", err)
		}
		stored[attrs.Name] = attrs.Created
	}

	for _, object := range orphans(stored, referenced, time.Now(), orphanGrace) {
		if err := p.gcsClient.Bucket(bucket).Object(object).Delete(ctx); err != nil {
			return fmt.Errorf("while deleting orphaned object %s: %w", object, err)
		}
		slog.InfoContext(ctx, "Deleted orphaned object",
			slog.String("bucket", bucket),
			slog.String("object", object))
	}

	return nil
}

// referencedObjects collects the object names that user and food documents
// still point at within the given bucket.
func (p *Poller) referencedObjects(ctx context.Context, bucket string) (map[string]bool, error) {
	referenced := map[string]bool{}

	userIter := p.firestoreClient.Collection(userCollection).Documents(ctx)
	defer userIter.Stop()
	for {
		userSnapshot, err := userIter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("while iterating users: %w", err)
		}

		user := &dbtypes.User{}
		if err := userSnapshot.DataTo(user); err != nil {
			return nil, fmt.Errorf("while unmarshaling user %s: %w", userSnapshot.Ref.ID, err)
		}

		if object, ok := imagestore.ObjectFromURL(user.ImageURL, bucket); ok {
			referenced[object] = true
		}
	}

	foodIter := p.firestoreClient.Collection(foodCollection).Documents(ctx)
	defer foodIter.Stop()
	for {
		foodSnapshot, err := foodIter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("while iterating foods: %w", err)
		}

		food := &dbtypes.Food{}
		if err := foodSnapshot.DataTo(food); err != nil {
			return nil, fmt.Errorf("while unmarshaling food %s: %w", foodSnapshot.Ref.ID, err)
		}

		if object, ok := imagestore.ObjectFromURL(food.ImageURL, bucket); ok {
			referenced[object] = true
		}
	}

	return referenced, nil
}

// orphans returns the stored objects that are unreferenced and older than
// grace, sorted by name.
func orphans(stored map[string]time.Time, referenced map[string]bool, now time.Time, grace time.Duration) []string {
	var out []string
	for object, created := range stored {
		if referenced[object] {
			continue
		}
		if now.Sub(created) < grace {
			continue
		}
		out = append(out, object)
	}
	sort.Strings(out)
	return out
}
