package update

import (
	"bytes"
	"encoding/gob"
	"time"

	ftserrors "github.com/gcbaptista/ftscore/errors"
	"github.com/gcbaptista/ftscore/kv"
	"github.com/gcbaptista/ftscore/store"
)

func init() {
	gob.Register(Data{})
	gob.Register(Update{})
	gob.Register(ProcessedUpdateResult{})
}

func encodeUpdate(u Update) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(u); err != nil {
		return nil, ftserrors.NewBinarySerdeError(err)
	}
	return buf.Bytes(), nil
}

func decodeUpdate(b []byte) (Update, error) {
	var u Update
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&u); err != nil {
		return Update{}, ftserrors.NewBinarySerdeError(err)
	}
	return u, nil
}

func encodeResult(r ProcessedUpdateResult) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(r); err != nil {
		return nil, ftserrors.NewBinarySerdeError(err)
	}
	return buf.Bytes(), nil
}

func decodeResult(b []byte) (ProcessedUpdateResult, error) {
	var r ProcessedUpdateResult
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&r); err != nil {
		return ProcessedUpdateResult{}, ftserrors.NewBinarySerdeError(err)
	}
	return r, nil
}

// NextUpdateID computes max(last(Updates), last(UpdatesResults)) + 1,
// defaulting to 0 when both stores are empty (SPEC_FULL invariant 4).
func NextUpdateID(updates store.Updates, results store.UpdatesResults) uint64 {
	lastUpdate, hasUpdate := updates.Last()
	lastResult, hasResult := results.Last()
	switch {
	case !hasUpdate && !hasResult:
		return 0
	case hasUpdate && !hasResult:
		return lastUpdate + 1
	case !hasUpdate && hasResult:
		return lastResult + 1
	default:
		if lastUpdate > lastResult {
			return lastUpdate + 1
		}
		return lastResult + 1
	}
}

// Push allocates the next update id and durably appends data to the update
// environment's Updates store inside tx, which must be a writable
// transaction on the update environment. It returns the assigned id.
func Push(tx kv.Tx, data Data, enqueuedAt time.Time) (uint64, error) {
	updatesBucket, err := tx.Bucket(store.BucketUpdates)
	if err != nil {
		return 0, ftserrors.NewStoreError(err)
	}
	resultsBucket, err := tx.Bucket(store.BucketUpdatesResults)
	if err != nil {
		return 0, ftserrors.NewStoreError(err)
	}
	updates := store.Updates{Bucket: updatesBucket}
	results := store.UpdatesResults{Bucket: resultsBucket}

	id := NextUpdateID(updates, results)
	record, err := encodeUpdate(Update{Data: data, EnqueuedAt: enqueuedAt})
	if err != nil {
		return 0, err
	}
	if err := updates.Put(id, record); err != nil {
		return 0, ftserrors.NewStoreError(err)
	}
	return id, nil
}

// GetStatus resolves the lifecycle state of one update id by checking
// UpdatesResults first, falling back to Updates — the same precedence
// meilisearch-core's update_status uses.
func GetStatus(tx kv.Tx, id uint64) (Status, bool, error) {
	resultsBucket, err := tx.Bucket(store.BucketUpdatesResults)
	if err != nil {
		return Status{}, false, ftserrors.NewStoreError(err)
	}
	results := store.UpdatesResults{Bucket: resultsBucket}
	if raw := results.Get(id); raw != nil {
		r, err := decodeResult(raw)
		if err != nil {
			return Status{}, false, err
		}
		return resultToStatus(r), true, nil
	}

	updatesBucket, err := tx.Bucket(store.BucketUpdates)
	if err != nil {
		return Status{}, false, ftserrors.NewStoreError(err)
	}
	updates := store.Updates{Bucket: updatesBucket}
	if raw := updates.Get(id); raw != nil {
		u, err := decodeUpdate(raw)
		if err != nil {
			return Status{}, false, err
		}
		return Status{
			Status:     StatusEnqueued,
			UpdateID:   id,
			Type:       u.Data.Type,
			EnqueuedAt: u.EnqueuedAt,
		}, true, nil
	}
	return Status{}, false, nil
}

func resultToStatus(r ProcessedUpdateResult) Status {
	status := StatusProcessed
	if r.Error != nil {
		status = StatusFailed
	}
	processedAt := r.ProcessedAt
	duration := r.DurationSec
	return Status{
		Status:      status,
		UpdateID:    r.UpdateID,
		Type:        r.UpdateType,
		EnqueuedAt:  r.EnqueuedAt,
		ProcessedAt: &processedAt,
		DurationSec: &duration,
		Error:       r.Error,
	}
}

// AllStatuses returns every update's status, 0..=last, with no id
// double-reported between Updates and UpdatesResults: results take
// precedence, then the remaining ids beyond the last result are read from
// Updates (mirroring store::Index::all_updates_status's dedup strategy).
func AllStatuses(tx kv.Tx) ([]Status, error) {
	resultsBucket, err := tx.Bucket(store.BucketUpdatesResults)
	if err != nil {
		return nil, ftserrors.NewStoreError(err)
	}
	updatesBucket, err := tx.Bucket(store.BucketUpdates)
	if err != nil {
		return nil, ftserrors.NewStoreError(err)
	}
	results := store.UpdatesResults{Bucket: resultsBucket}
	updates := store.Updates{Bucket: updatesBucket}

	var out []Status
	lastResultID, hasResult := results.Last()

	var rangeErr error
	results.ForEachFrom(0, func(id uint64, record []byte) bool {
		r, err := decodeResult(record)
		if err != nil {
			rangeErr = err
			return false
		}
		out = append(out, resultToStatus(r))
		return true
	})
	if rangeErr != nil {
		return nil, rangeErr
	}

	from := uint64(0)
	if hasResult {
		from = lastResultID + 1
	}
	updates.ForEachFrom(from, func(id uint64, record []byte) bool {
		u, err := decodeUpdate(record)
		if err != nil {
			rangeErr = err
			return false
		}
		out = append(out, Status{
			Status:     StatusEnqueued,
			UpdateID:   id,
			Type:       u.Data.Type,
			EnqueuedAt: u.EnqueuedAt,
		})
		return true
	})
	if rangeErr != nil {
		return nil, rangeErr
	}
	return out, nil
}
