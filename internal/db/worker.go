package db

import (
	"context"
	"database/sql"
)

// TxFn is one unit of mutating work, executed inside a transaction.
type TxFn func(ctx context.Context, tx *sql.Tx) error

const queueDepth = 256

type txJob struct {
	ctx    context.Context
	fn     TxFn
	result chan error
}

// Worker funnels every mutating transaction through a single goroutine so
// SQLite writes never contend.  Transition compare-and-swaps still carry
// their own status precondition; the worker only removes SQLITE_BUSY churn.
type Worker struct {
	db      *sql.DB
	queue   chan txJob
	stopped chan struct{}
}

func NewWorker(db *sql.DB) *Worker {
	w := &Worker{
		db:      db,
		queue:   make(chan txJob, queueDepth),
		stopped: make(chan struct{}),
	}
	go w.run()
	return w
}

// Close drains the queue and waits for the worker goroutine to exit.
func (w *Worker) Close() {
	close(w.queue)
	<-w.stopped
}

// Do runs fn inside a transaction on the worker goroutine and returns its
// result.  If the caller's context expires while the job is queued or
// executing, Do returns early; the worker still completes the transaction
// and the discarded result lands in the buffered channel.
func (w *Worker) Do(ctx context.Context, fn TxFn) error {
	j := txJob{ctx: ctx, fn: fn, result: make(chan error, 1)}

	select {
	case w.queue <- j:
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-j.result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Worker) run() {
	defer close(w.stopped)
	for j := range w.queue {
		j.result <- w.runTx(j.ctx, j.fn)
	}
}

func (w *Worker) runTx(ctx context.Context, fn TxFn) error {
	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(ctx, tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
