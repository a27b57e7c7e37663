package update

import (
	"time"

	ftserrors "github.com/gcbaptista/ftscore/errors"
	"github.com/gcbaptista/ftscore/kv"
	"github.com/gcbaptista/ftscore/store"
)

// findNextEnqueued locates the smallest update id present in Updates but
// absent from UpdatesResults — the processor's unit of work.
func findNextEnqueued(tx kv.Tx) (id uint64, data Data, enqueuedAt time.Time, found bool, err error) {
	resultsBucket, err := tx.Bucket(store.BucketUpdatesResults)
	if err != nil {
		return 0, Data{}, time.Time{}, false, ftserrors.NewStoreError(err)
	}
	updatesBucket, err := tx.Bucket(store.BucketUpdates)
	if err != nil {
		return 0, Data{}, time.Time{}, false, ftserrors.NewStoreError(err)
	}
	results := store.UpdatesResults{Bucket: resultsBucket}
	updates := store.Updates{Bucket: updatesBucket}

	lastResultID, hasResult := results.Last()
	from := uint64(0)
	if hasResult {
		from = lastResultID + 1
	}

	var (
		foundID     uint64
		foundRecord []byte
		ok          bool
	)
	updates.ForEachFrom(from, func(uid uint64, record []byte) bool {
		foundID, foundRecord, ok = uid, record, true
		return false
	})
	if !ok {
		return 0, Data{}, time.Time{}, false, nil
	}
	u, err := decodeUpdate(foundRecord)
	if err != nil {
		return 0, Data{}, time.Time{}, false, err
	}
	return foundID, u.Data, u.EnqueuedAt, true, nil
}

// recordResult writes a ProcessedUpdateResult into UpdatesResults. The
// original Update record is left untouched in Updates: status is derived
// from presence/absence across the two stores (SPEC_FULL invariant 5).
func recordResult(tx kv.Tx, result ProcessedUpdateResult) error {
	bucket, err := tx.Bucket(store.BucketUpdatesResults)
	if err != nil {
		return ftserrors.NewStoreError(err)
	}
	results := store.UpdatesResults{Bucket: bucket}
	record, err := encodeResult(result)
	if err != nil {
		return err
	}
	return ftserrors.NewStoreError(results.Put(result.UpdateID, record))
}
