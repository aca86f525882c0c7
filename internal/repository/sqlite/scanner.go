package sqlite

// Scanner interface defines the common scanning behavior for both sql.Row and sql.Rows
type Scanner interface {
	Scan(dest ...interface{}) error
}

// Rows interface defines the common behavior for sql.Rows
type Rows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

// ScanTask scans a single task from a database row
func ScanTask(scanner Scanner) (*Task, error) {
	task := &Task{}
	err := scanner.Scan(&task.ID, &task.Name)
	if err != nil {
		return nil, err
	}
	return task, nil
}

// ScanTasks scans multiple tasks from database rows
func ScanTasks(rows Rows) ([]*Task, error) {
	return scanAll(rows, ScanTask)
}

// ScanCompletion scans a single completion from a database row
func ScanCompletion(scanner Scanner) (*Completion, error) {
	c := &Completion{}
	var completed int64
	err := scanner.Scan(&c.ID, &c.TaskID, &c.Date, &completed)
	if err != nil {
		return nil, err
	}
	c.Completed = ParseBoolFromDB(completed)
	return c, nil
}

// ScanCompletions scans multiple completions from database rows
func ScanCompletions(rows Rows) ([]*Completion, error) {
	return scanAll(rows, ScanCompletion)
}

func scanAll[T any](rows Rows, scan func(Scanner) (*T, error)) ([]*T, error) {
	var results []*T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return results, nil
}
