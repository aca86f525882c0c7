package domain

// Snapshot is the last loaded view of the store: tasks in id order and the
// completion lookup built from every persisted completion.
type Snapshot struct {
	Tasks       []Task
	Completions CompletionMap
}

// NewSnapshot creates a Snapshot from repository results.
func NewSnapshot(tasks []Task, completions []Completion) *Snapshot {
	if tasks == nil {
		tasks = []Task{}
	}
	return &Snapshot{
		Tasks:       tasks,
		Completions: NewCompletionMap(completions),
	}
}

// Clone returns a deep copy so callers cannot mutate held state.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return NewSnapshot(nil, nil)
	}
	tasks := make([]Task, len(s.Tasks))
	copy(tasks, s.Tasks)
	return &Snapshot{
		Tasks:       tasks,
		Completions: s.Completions.Clone(),
	}
}

// HasTaskNamed reports whether the snapshot already holds a task with the name.
func (s *Snapshot) HasTaskNamed(name string) bool {
	return s != nil && HasTaskNamed(s.Tasks, name)
}
