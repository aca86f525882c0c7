package sqlite

import (
	"database/sql"
	"fmt"
	"strings"
)

// Mode is the access mode of a transaction.
type Mode int

const (
	ReadOnly Mode = iota
	ReadWrite
)

// String returns "readonly" or "readwrite".
func (m Mode) String() string {
	if m == ReadWrite {
		return "readwrite"
	}
	return "readonly"
}

func (m Mode) spanName() string {
	if m == ReadWrite {
		return "write"
	}
	return "read"
}

// Collection names a table the store manages.
type Collection string

const (
	CollectionTasks       Collection = "tasks"
	CollectionCompletions Collection = "completions"
)

// AllCollections is the scope of transactions that touch everything.
var AllCollections = []Collection{CollectionTasks, CollectionCompletions}

func collectionNames(collections []Collection) []string {
	names := make([]string, len(collections))
	for i, c := range collections {
		names[i] = string(c)
	}
	return names
}

func joinCollections(collections []Collection) string {
	return strings.Join(collectionNames(collections), ",")
}

// Tx is a store transaction scoped to a fixed set of collections.
type Tx struct {
	tx    *sql.Tx
	mode  Mode
	scope map[Collection]bool
}

func newTx(tx *sql.Tx, mode Mode, collections []Collection) *Tx {
	scope := make(map[Collection]bool, len(collections))
	for _, c := range collections {
		scope[c] = true
	}
	return &Tx{tx: tx, mode: mode, scope: scope}
}

// Mode returns the transaction's access mode.
func (t *Tx) Mode() Mode {
	return t.mode
}

// Tasks returns the tasks collection handle.
func (t *Tx) Tasks() (*TaskCollection, error) {
	if err := t.require(CollectionTasks); err != nil {
		return nil, err
	}
	return &TaskCollection{tx: t}, nil
}

// Completions returns the completions collection handle.
func (t *Tx) Completions() (*CompletionCollection, error) {
	if err := t.require(CollectionCompletions); err != nil {
		return nil, err
	}
	return &CompletionCollection{tx: t}, nil
}

func (t *Tx) require(c Collection) error {
	if !t.scope[c] {
		return fmt.Errorf("%w: %s", ErrCollectionNotInScope, c)
	}
	return nil
}

func (t *Tx) requireWritable(operation string) error {
	if t.mode != ReadWrite {
		return fmt.Errorf("%s: %w", operation, ErrReadOnlyTransaction)
	}
	return nil
}
