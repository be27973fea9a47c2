package screening

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Nishanth-cyber/Job-search/internal/blob"
	"github.com/Nishanth-cyber/Job-search/internal/logger"
)

// blobLease own a resume blob for the duration of one scoring call.
// Release may be called any number of times, only the first deletes.
// Deletion failure is logged and never returned.
type blobLease struct {
	ID     uuid.UUID
	Object blob.Object

	store blob.Store
	log   *zap.Logger
	once  sync.Once
}

func acquireLease(ctx context.Context, store blob.Store, obj blob.Object, ownerID uuid.UUID, log *zap.Logger) (*blobLease, error) {
	id, err := store.Store(ctx, obj, ownerID)
	if err != nil {
		return nil, err
	}
	return &blobLease{ID: id, Object: obj, store: store, log: logger.OrNop(log)}, nil
}

func (l *blobLease) Release(ctx context.Context) {
	if l == nil {
		return
	}
	l.once.Do(func() {
		// request may already be cancelled, cleanup still has to run
		ctx = context.WithoutCancel(ctx)
		if err := l.store.Delete(ctx, l.ID); err != nil {
			l.log.Warn("failed to delete resume blob after scoring",
				zap.String(logger.FieldBlobID, l.ID.String()),
				zap.Error(err),
			)
		}
	})
}
