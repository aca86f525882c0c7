package sqlite

// Task is a row of the tasks collection.
type Task struct {
	ID   int64
	Name string
}

// Completion is a row of the completions collection.
// ID is always "<TaskID>_<Date>"; Date is YYYY-MM-DD.
type Completion struct {
	ID        string
	TaskID    int64
	Date      string
	Completed bool
}
