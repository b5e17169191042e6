package db

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// Tx groups the writes of one reconciliation stage. Everything done through a
// Tx is committed together, and the events it produced are only dispatched
// once the commit succeeds.
type Tx struct {
	tx     *sqlx.Tx
	events []Event
}

// WithTx runs fn inside a single transaction. If fn returns an error, or
// panics, nothing fn wrote is kept and no events are emitted.
func (db *DB) WithTx(ctx context.Context, fn func(tx *Tx) error) error {
	var pending []Event
	err := db.withTx(ctx, func(sqlTx *sqlx.Tx) error {
		t := &Tx{tx: sqlTx}
		if err := fn(t); err != nil {
			return err
		}
		pending = t.events
		return nil
	})
	if err != nil {
		return err
	}

	for _, event := range pending {
		db.emit(event)
	}
	return nil
}

func (t *Tx) record(event Event) {
	t.events = append(t.events, event)
}
