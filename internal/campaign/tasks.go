package campaign

import (
	"fmt"
	"sync"
)

// CompletionHook receives "mark as completed" requests for a stored task.
// The store itself never changes a task's status.
type CompletionHook func(index int, task ReviewTask)

// TaskStore is the append-only, insertion-ordered list of review tasks.
// Tasks are stored by value; entries are never merged by ID.
type TaskStore struct {
	mu    sync.RWMutex
	tasks []ReviewTask
	hook  CompletionHook
}

// NewTaskStore creates an empty store. A nil hook is allowed.
func NewTaskStore(hook CompletionHook) *TaskStore {
	return &TaskStore{hook: hook}
}

// Append adds a copy of task to the end of the list.
func (s *TaskStore) Append(task ReviewTask) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append(s.tasks, task)
}

// List returns a snapshot of the tasks in insertion order.
func (s *TaskStore) List() []ReviewTask {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]ReviewTask(nil), s.tasks...)
}

// Len returns the number of stored tasks.
func (s *TaskStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}

// RequestCompletion forwards a completion request for the task at index
// to the hook and returns the (unchanged) task.
func (s *TaskStore) RequestCompletion(index int) (ReviewTask, error) {
	s.mu.RLock()
	if index < 0 || index >= len(s.tasks) {
		n := len(s.tasks)
		s.mu.RUnlock()
		return ReviewTask{}, fmt.Errorf("%w: %d (have %d)", ErrTaskIndex, index, n)
	}
	task := s.tasks[index]
	hook := s.hook
	s.mu.RUnlock()

	if hook != nil {
		hook(index, task)
	}
	return task, nil
}
