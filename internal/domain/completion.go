package domain

import (
	"fmt"
)

// CompletionKey identifies the single completion a task may have on a date.
type CompletionKey struct {
	TaskID int64
	Date   Date
}

// NewCompletionKey creates a key for the given task and date.
func NewCompletionKey(taskID int64, date Date) CompletionKey {
	return CompletionKey{TaskID: taskID, Date: date}
}

// RecordID returns the persisted record id, "<taskId>_<date>".
func (k CompletionKey) RecordID() string {
	return fmt.Sprintf("%d_%s", k.TaskID, k.Date)
}

// String returns the record id.
func (k CompletionKey) String() string {
	return k.RecordID()
}

// Completion records whether a task was done on a given day.
type Completion struct {
	TaskID    int64
	Date      Date
	Completed bool
}

// NewCompletion creates a Completion.
func NewCompletion(taskID int64, date Date, completed bool) Completion {
	return Completion{TaskID: taskID, Date: date, Completed: completed}
}

// Key returns the completion's natural key.
func (c Completion) Key() CompletionKey {
	return CompletionKey{TaskID: c.TaskID, Date: c.Date}
}

// ID returns the persisted record id.
func (c Completion) ID() string {
	return c.Key().RecordID()
}

// CompletionMap is the in-memory lookup from (task, date) to completion state.
// A missing key means not completed.
type CompletionMap map[CompletionKey]bool

// NewCompletionMap builds a map from persisted completions.
func NewCompletionMap(completions []Completion) CompletionMap {
	m := make(CompletionMap, len(completions))
	for _, c := range completions {
		m[c.Key()] = c.Completed
	}
	return m
}

// IsCompleted reports the state for the task on the date.
func (m CompletionMap) IsCompleted(taskID int64, date Date) bool {
	return m[CompletionKey{TaskID: taskID, Date: date}]
}

// Lookup returns the state and whether a record exists.
func (m CompletionMap) Lookup(taskID int64, date Date) (completed bool, ok bool) {
	completed, ok = m[CompletionKey{TaskID: taskID, Date: date}]
	return completed, ok
}

// Clone returns an independent copy.
func (m CompletionMap) Clone() CompletionMap {
	c := make(CompletionMap, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
