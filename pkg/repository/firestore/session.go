package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/fredboard/pkg/domain/interfaces"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const sessionsCollection = "sessions"

type sessionRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

var _ interfaces.SessionRepository = &sessionRepository{}

func newSessionRepository(client *firestore.Client) *sessionRepository {
	return &sessionRepository{
		client: client,
	}
}

// sessionDoc is the Firestore persistence model. The blob is kept as a
// string so it stays readable in the console.
type sessionDoc struct {
	Blob      string    `firestore:"blob"`
	UpdatedAt time.Time `firestore:"updated_at"`
}

func (r *sessionRepository) collection() *firestore.CollectionRef {
	if r.collectionPrefix != "" {
		return r.client.Collection(r.collectionPrefix + "_" + sessionsCollection)
	}
	return r.client.Collection(sessionsCollection)
}

func (r *sessionRepository) Get(ctx context.Context, sessionID string) ([]byte, error) {
	snap, err := r.collection().Doc(sessionID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get session", goerr.V("session_id", sessionID))
	}

	var doc sessionDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal session", goerr.V("session_id", sessionID))
	}

	return []byte(doc.Blob), nil
}

func (r *sessionRepository) Put(ctx context.Context, sessionID string, blob []byte) error {
	doc := &sessionDoc{
		Blob:      string(blob),
		UpdatedAt: time.Now().UTC(),
	}
	if _, err := r.collection().Doc(sessionID).Set(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to save session", goerr.V("session_id", sessionID))
	}
	return nil
}

func (r *sessionRepository) Delete(ctx context.Context, sessionID string) error {
	if _, err := r.collection().Doc(sessionID).Delete(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return nil
		}
		return goerr.Wrap(err, "failed to delete session", goerr.V("session_id", sessionID))
	}
	return nil
}

// DeleteIdle removes sessions whose updated_at is older than before
func (r *sessionRepository) DeleteIdle(ctx context.Context, before time.Time) (int, error) {
	iter := r.collection().Where("updated_at", "<", before.UTC()).Documents(ctx)
	defer iter.Stop()

	var refs []*firestore.DocumentRef
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return 0, goerr.Wrap(err, "failed to iterate idle sessions")
		}
		refs = append(refs, snap.Ref)
	}

	if len(refs) == 0 {
		return 0, nil
	}

	// BulkWriter handles the batch size limit
	bulkWriter := r.client.BulkWriter(ctx)
	jobs := make([]*firestore.BulkWriterJob, 0, len(refs))
	for _, ref := range refs {
		job, err := bulkWriter.Delete(ref)
		if err != nil {
			bulkWriter.End()
			return 0, goerr.Wrap(err, "failed to add Delete operation to bulk writer", goerr.V("session_id", ref.ID))
		}
		jobs = append(jobs, job)
	}
	bulkWriter.End()

	deleted := 0
	for idx, job := range jobs {
		if _, err := job.Results(); err != nil {
			return deleted, goerr.Wrap(err, "failed to delete idle session", goerr.V("session_id", refs[idx].ID))
		}
		deleted++
	}

	return deleted, nil
}
