package update

import (
	"context"
	"log"
	"time"

	"github.com/gcbaptista/ftscore/kv"
	"github.com/gcbaptista/ftscore/rankedmap"
	"github.com/gcbaptista/ftscore/schema"
)

// Notifier is a lossy, coalescing "at least one update is waiting" signal
// (SPEC_FULL §5): multiple sends while the processor is busy collapse into
// one wakeup, since the processor always rescans for the next unprocessed
// id rather than trusting the notification's payload.
type Notifier struct {
	ch chan struct{}
}

func NewNotifier() *Notifier {
	return &Notifier{ch: make(chan struct{}, 1)}
}

// Notify wakes the processor, coalescing with any pending wakeup.
func (n *Notifier) Notify() {
	select {
	case n.ch <- struct{}{}:
	default:
	}
}

// Processor is the single dedicated background goroutine that owns every
// write transaction on the main environment, consuming Updates in id order
// (SPEC_FULL §4.4, §5). It is the Go-idiomatic analogue of meilisearch-
// core's update_task, shaped like the teacher's jobs.Manager worker loop but
// stripped to a single worker since only one writer may exist at a time.
type Processor struct {
	MainEnv   kv.Env
	UpdateEnv kv.Env
	Applier   *Applier
	Schema    *schema.Schema
	RankedMap *rankedmap.Map
	Notifier  *Notifier

	stop chan struct{}
	done chan struct{}
}

func NewProcessor(mainEnv, updateEnv kv.Env, applier *Applier, sch *schema.Schema, rm *rankedmap.Map, notifier *Notifier) *Processor {
	return &Processor{
		MainEnv:   mainEnv,
		UpdateEnv: updateEnv,
		Applier:   applier,
		Schema:    sch,
		RankedMap: rm,
		Notifier:  notifier,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Run loops until Stop is called, processing one update per iteration and
// otherwise waiting on the notifier (or a periodic safety tick, in case a
// Notify was lost before the processor subscribed).
func (p *Processor) Run(ctx context.Context) {
	defer close(p.done)
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		processed, err := p.processNext(ctx)
		if err != nil {
			log.Printf("update processor: %v", err)
		}
		if processed {
			continue // drain the queue before waiting
		}
		select {
		case <-p.stop:
			return
		case <-ctx.Done():
			return
		case <-p.Notifier.ch:
		case <-ticker.C:
		}
	}
}

func (p *Processor) Stop() {
	close(p.stop)
	<-p.done
}

// processNext applies exactly one pending update, if any, returning whether
// it found work.
func (p *Processor) processNext(ctx context.Context) (bool, error) {
	var (
		nextID uint64
		data   Data
		enqueuedAt time.Time
		found  bool
	)

	if err := p.UpdateEnv.View(ctx, func(tx kv.Tx) error {
		id, d, e, ok, err := findNextEnqueued(tx)
		if err != nil {
			return err
		}
		nextID, data, enqueuedAt, found = id, d, e, ok
		return nil
	}); err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}

	start := time.Now()
	applyErr := p.MainEnv.Update(ctx, func(tx kv.Tx) error {
		return p.Applier.Apply(tx, p.Schema, p.RankedMap, data)
	})
	duration := time.Since(start)

	var errMsg *string
	if applyErr != nil {
		msg := applyErr.Error()
		errMsg = &msg
		log.Printf("update %d failed: %v", nextID, applyErr)
	} else {
		log.Printf("update %d applied in %s", nextID, duration)
	}

	result := ProcessedUpdateResult{
		UpdateID:    nextID,
		UpdateType:  data.Type,
		Error:       errMsg,
		DurationSec: duration.Seconds(),
		EnqueuedAt:  enqueuedAt,
		ProcessedAt: time.Now(),
	}
	if err := p.UpdateEnv.Update(ctx, func(tx kv.Tx) error {
		return recordResult(tx, result)
	}); err != nil {
		return true, err
	}
	return true, nil
}
