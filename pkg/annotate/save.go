package annotate

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/japaniel/hanreader/pkg/db"
	"github.com/japaniel/hanreader/pkg/metrics"
	"github.com/japaniel/hanreader/pkg/wordid"
)

// saveQueue orders the toggles of one identity. Every toggle waits for the
// one issued before it, so an insert can never overtake a remove.
type saveQueue struct {
	tail chan struct{}
	refs int
}

// enqueue reserves the next turn for id. It returns the channel of the
// previous turn (nil when there is none) and the channel to close when
// this turn is over.
func (e *Engine) enqueue(id wordid.Identity) (prev, mine chan struct{}) {
	e.queueMu.Lock()
	defer e.queueMu.Unlock()
	q, ok := e.queues[id]
	if !ok {
		q = &saveQueue{}
		e.queues[id] = q
	}
	prev, mine = q.tail, make(chan struct{})
	q.tail = mine
	q.refs++
	return prev, mine
}

func (e *Engine) dequeue(id wordid.Identity, mine chan struct{}) {
	close(mine)
	e.queueMu.Lock()
	defer e.queueMu.Unlock()
	if q, ok := e.queues[id]; ok {
		q.refs--
		if q.refs == 0 {
			delete(e.queues, id)
		}
	}
}

// ToggleSave saves the entry if it is not saved and removes it otherwise,
// returning the new saved state. Toggles of the same identity run one at a
// time in call order. The in-memory state changes only after the store
// accepted the write; on failure the previous state is returned together
// with a *db.StoreWriteError.
func (e *Engine) ToggleSave(ctx context.Context, id wordid.Identity) (bool, error) {
	prev, mine := e.enqueue(id)
	if prev != nil && !isClosed(prev) {
		select {
		case <-prev:
		case <-ctx.Done():
			// Keep the chain intact for toggles queued behind this one.
			go func() {
				<-prev
				e.dequeue(id, mine)
			}()
			return e.IsSaved(id), ctx.Err()
		}
	}
	defer e.dequeue(id, mine)

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return false, ErrClosed
	}
	was := e.saved[id]
	e.mu.Unlock()

	op := "insert"
	var err error
	if was {
		op = "remove"
		err = e.store.Remove(ctx, id.Word, id.Origin, id.Definition)
	} else {
		err = e.store.Insert(ctx, id.Word, id.Origin, id.Definition, e.category)
	}

	if err != nil {
		metrics.VocabularyWritesTotal.WithLabelValues(op, "error").Inc()
		e.logger.Error("Vocabulary write failed",
			zap.String("op", op),
			zap.Stringer("entry", id),
			zap.String("key", id.Key()),
			zap.Error(err),
		)
		// The record is already gone, so the entry is unsaved either way.
		if was && errors.Is(err, db.ErrNotFound) {
			e.setSaved(id, false)
			return false, asStoreWriteError(op, err)
		}
		return was, asStoreWriteError(op, err)
	}

	metrics.VocabularyWritesTotal.WithLabelValues(op, "ok").Inc()
	e.logger.Debug("Vocabulary updated", zap.String("op", op), zap.Stringer("entry", id))
	e.setSaved(id, !was)
	return !was, nil
}

func isClosed(ch chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

func (e *Engine) setSaved(id wordid.Identity, saved bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.savedVer++
	if saved {
		e.saved[id] = true
	} else {
		delete(e.saved, id)
	}
}

func asStoreWriteError(op string, err error) error {
	var swe *db.StoreWriteError
	if errors.As(err, &swe) {
		return err
	}
	return &db.StoreWriteError{Op: op, Err: err}
}

// refreshAttempts bounds how often Refresh rereads the store while toggles
// keep landing during the read.
const refreshAttempts = 3

// Refresh reloads the saved state from the store, for example when the
// reader comes back from the review screen. A snapshot taken while a toggle
// changed the state is thrown away and read again; if toggles keep racing
// it, the current state is kept.
func (e *Engine) Refresh(ctx context.Context) error {
	for attempt := 0; attempt < refreshAttempts; attempt++ {
		e.mu.Lock()
		if e.closed {
			e.mu.Unlock()
			return ErrClosed
		}
		ver := e.savedVer
		e.mu.Unlock()

		records, err := e.store.ListAll(ctx)
		if err != nil {
			return err
		}
		saved := make(map[wordid.Identity]bool, len(records))
		for _, r := range records {
			saved[wordid.Of(r.Word, r.Origin, r.Definition)] = true
		}

		e.mu.Lock()
		if e.closed {
			e.mu.Unlock()
			return ErrClosed
		}
		if e.savedVer == ver {
			e.saved = saved
			e.mu.Unlock()
			return nil
		}
		e.mu.Unlock()
		e.logger.Debug("Saved state changed during refresh, reading again", zap.Int("attempt", attempt+1))
	}
	return nil
}
