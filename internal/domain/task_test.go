package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewTask(t *testing.T) {
	tests := []struct {
		name     string
		taskName string
		expected Task
	}{
		{
			name:     "creates task with name",
			taskName: "Exercise",
			expected: Task{Name: "Exercise"},
		},
		{
			name:     "trims surrounding whitespace",
			taskName: "  Read 20 pages \t",
			expected: Task{Name: "Read 20 pages"},
		},
		{
			name:     "keeps decomposed accents as typed",
			taskName: "Cafe\u0301",
			expected: Task{Name: "Cafe\u0301"},
		},
		{
			name:     "keeps case",
			taskName: "MEDITATE",
			expected: Task{Name: "MEDITATE"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NewTask(tt.taskName))
		})
	}
}

func TestTask_IsValid(t *testing.T) {
	assert.True(t, Task{ID: 1, Name: "Exercise"}.IsValid())
	assert.True(t, Task{Name: "Exercise"}.IsValid())
	assert.False(t, Task{ID: 1}.IsValid())
}

func TestNormalizeName_TrimsOnly(t *testing.T) {
	assert.Equal(t, "Caf\u00e9", NormalizeName(" Caf\u00e9 "))
	assert.NotEqual(t, NormalizeName("Cafe\u0301"), NormalizeName("Caf\u00e9"))
	assert.NotEqual(t, NormalizeName("exercise"), NormalizeName("Exercise"))
}

func TestHasTaskNamedAndFindTask(t *testing.T) {
	tasks := []Task{{ID: 1, Name: "Exercise"}, {ID: 3, Name: "Read"}}

	assert.True(t, HasTaskNamed(tasks, "Read"))
	assert.False(t, HasTaskNamed(tasks, "read"))
	assert.False(t, HasTaskNamed(nil, "Read"))

	task, ok := FindTask(tasks, 3)
	assert.True(t, ok)
	assert.Equal(t, "Read", task.Name)

	_, ok = FindTask(tasks, 2)
	assert.False(t, ok)
}
