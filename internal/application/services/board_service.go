package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/taskboard/core/internal/domain/entities"
	"github.com/taskboard/core/internal/infrastructure/logger"
	"github.com/taskboard/core/internal/ports"
)

// BoardService owns the in-memory board document and is the only
// mutator. Operations run to completion under the service mutex and
// persist the whole document through the repository before the next
// mutation's save can begin, so writes never interleave. A failed save
// leaves the in-memory mutation in place; a later successful save
// captures all accumulated changes.
type BoardService struct {
	repo    ports.DocumentRepository
	logger  *logger.Logger
	mu      sync.Mutex
	doc     *entities.Document
	changes chan struct{}

	today func() string
}

// NewBoardService loads the persisted document (or the default one)
// and returns the store that owns it.
func NewBoardService(ctx context.Context, repo ports.DocumentRepository, log *logger.Logger) (*BoardService, error) {
	doc, err := repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load board document: %w", err)
	}
	doc.Normalize()

	return &BoardService{
		repo:    repo,
		logger:  log,
		doc:     doc,
		changes: make(chan struct{}, 1),
		today:   entities.Today,
	}, nil
}

// Document returns a deep-copy snapshot for rendering. Reads always
// reflect the current in-memory state, not the persisted copy.
func (s *BoardService) Document() *entities.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone()
}

// Subscribe returns the change signal. The channel coalesces: a slow
// consumer sees at least one signal for any burst of mutations. Every
// call returns the same channel, so a received signal is consumed on
// behalf of all callers; the signal supports a single consumer, not a
// broadcast.
func (s *BoardService) Subscribe() <-chan struct{} {
	return s.changes
}

// CreateCategory appends a new category, optionally seeded with a
// first task.
func (s *BoardService) CreateCategory(ctx context.Context, name, firstTaskText, firstTaskDueDate string) (*entities.Category, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: %v", entities.ErrValidation, entities.ErrEmptyName)
	}
	if !entities.ValidDueDate(firstTaskDueDate) {
		return nil, fmt.Errorf("%w: %v", entities.ErrValidation, entities.ErrInvalidDueDate)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	category := entities.Category{
		ID:    entities.NewID(),
		Name:  name,
		Tasks: []entities.Task{},
	}
	if firstTaskText != "" {
		category.Tasks = append(category.Tasks, entities.Task{
			ID:      entities.NewID(),
			Text:    firstTaskText,
			DueDate: firstTaskDueDate,
		})
	}
	s.doc.Categories = append(s.doc.Categories, category)

	s.logger.Info("Category created", "category_id", category.ID, "name", category.Name)

	// Detach the returned copy from the document-owned task slice.
	created := category
	created.Tasks = make([]entities.Task, len(category.Tasks))
	copy(created.Tasks, category.Tasks)
	return &created, s.persist(ctx)
}

// DeleteCategory removes the category and all its tasks. Absent ids
// are benign no-ops, tolerating stale references from a render pass.
func (s *BoardService) DeleteCategory(ctx context.Context, categoryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.doc.CategoryIndex(categoryID)
	if idx < 0 {
		return nil
	}
	s.doc.Categories = append(s.doc.Categories[:idx], s.doc.Categories[idx+1:]...)

	s.logger.Info("Category deleted", "category_id", categoryID)

	return s.persist(ctx)
}

// RenameCategory changes the category name. Renaming to the current
// name is a no-op.
func (s *BoardService) RenameCategory(ctx context.Context, categoryID, newName string) error {
	if newName == "" {
		return fmt.Errorf("%w: %v", entities.ErrValidation, entities.ErrEmptyName)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	category := s.doc.FindCategory(categoryID)
	if category == nil || category.Name == newName {
		return nil
	}
	category.Name = newName

	return s.persist(ctx)
}

// SetCategoryColor sets the category's presentation color token.
func (s *BoardService) SetCategoryColor(ctx context.Context, categoryID string, color entities.Color) error {
	if !color.IsValid() {
		return fmt.Errorf("%w: %v", entities.ErrValidation, entities.ErrInvalidColor)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	category := s.doc.FindCategory(categoryID)
	if category == nil || category.Color == color {
		return nil
	}
	category.Color = color

	return s.persist(ctx)
}

// ToggleCategoryCollapsed flips the category's collapsed flag.
func (s *BoardService) ToggleCategoryCollapsed(ctx context.Context, categoryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	category := s.doc.FindCategory(categoryID)
	if category == nil {
		return nil
	}
	category.IsCollapsed = !category.IsCollapsed

	return s.persist(ctx)
}

// ToggleAllCollapsed drives every category to a single target state:
// if any category is expanded all become collapsed, otherwise all
// become expanded. This flattens mixed states and is not a per-category
// toggle.
func (s *BoardService) ToggleAllCollapsed(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.doc.Categories) == 0 {
		return nil
	}
	target := s.doc.AnyExpanded()
	for i := range s.doc.Categories {
		s.doc.Categories[i].IsCollapsed = target
	}

	return s.persist(ctx)
}

// ReorderCategory moves the category at fromIndex to toIndex using
// remove-then-insert semantics: indices after the removal shift down
// by one before the insertion.
func (s *BoardService) ReorderCategory(ctx context.Context, fromIndex, toIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.doc.Categories)
	if fromIndex < 0 || fromIndex >= n || toIndex < 0 || toIndex >= n {
		return fmt.Errorf("%w: move %d to %d with %d categories", entities.ErrIndexOutOfRange, fromIndex, toIndex, n)
	}
	if fromIndex == toIndex {
		return nil
	}

	moved := s.doc.Categories[fromIndex]
	rest := append(s.doc.Categories[:fromIndex], s.doc.Categories[fromIndex+1:]...)
	s.doc.Categories = append(rest[:toIndex], append([]entities.Category{moved}, rest[toIndex:]...)...)

	return s.persist(ctx)
}

// AddTask appends a task to the category. Unlike the other task
// operations, a missing category is rejected rather than ignored: the
// caller explicitly asked to create state somewhere that is gone.
func (s *BoardService) AddTask(ctx context.Context, categoryID, text, dueDate string) (*entities.Task, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: %v", entities.ErrValidation, entities.ErrEmptyTaskText)
	}
	if !entities.ValidDueDate(dueDate) {
		return nil, fmt.Errorf("%w: %v", entities.ErrValidation, entities.ErrInvalidDueDate)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	category := s.doc.FindCategory(categoryID)
	if category == nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrValidation, entities.ErrCategoryNotFound)
	}

	task := entities.Task{
		ID:      entities.NewID(),
		Text:    text,
		DueDate: dueDate,
	}
	category.Tasks = append(category.Tasks, task)

	s.logger.Info("Task added", "category_id", categoryID, "task_id", task.ID)

	created := task
	return &created, s.persist(ctx)
}

// RenameTask changes the task text. Renaming to the current text is a
// no-op.
func (s *BoardService) RenameTask(ctx context.Context, categoryID, taskID, newText string) error {
	if newText == "" {
		return fmt.Errorf("%w: %v", entities.ErrValidation, entities.ErrEmptyTaskText)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	task := s.findTask(categoryID, taskID)
	if task == nil || task.Text == newText {
		return nil
	}
	task.Text = newText

	return s.persist(ctx)
}

// SetTaskDueDate sets or clears (empty string) the task's due date.
func (s *BoardService) SetTaskDueDate(ctx context.Context, categoryID, taskID, dueDate string) error {
	if !entities.ValidDueDate(dueDate) {
		return fmt.Errorf("%w: %v", entities.ErrValidation, entities.ErrInvalidDueDate)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	task := s.findTask(categoryID, taskID)
	if task == nil || task.DueDate == dueDate {
		return nil
	}
	task.DueDate = dueDate

	return s.persist(ctx)
}

// SetTaskCompleted sets the task's completion state.
func (s *BoardService) SetTaskCompleted(ctx context.Context, categoryID, taskID string, completed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	task := s.findTask(categoryID, taskID)
	if task == nil || task.Completed == completed {
		return nil
	}
	task.Completed = completed

	return s.persist(ctx)
}

// DeleteTask removes the task from the category. No-op if absent.
func (s *BoardService) DeleteTask(ctx context.Context, categoryID, taskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	category := s.doc.FindCategory(categoryID)
	if category == nil {
		return nil
	}
	for i := range category.Tasks {
		if category.Tasks[i].ID == taskID {
			category.Tasks = append(category.Tasks[:i], category.Tasks[i+1:]...)
			return s.persist(ctx)
		}
	}
	return nil
}

// SortCategoryTasks stable-sorts the category's tasks by due date,
// flipping direction on each call. Tasks without a due date compare as
// due today; ties keep their relative order. Returns the direction
// applied so the caller can report it.
func (s *BoardService) SortCategoryTasks(ctx context.Context, categoryID string) (entities.SortOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	category := s.doc.FindCategory(categoryID)
	if category == nil {
		return "", nil
	}

	direction := category.LastSortOrder
	if direction == "" {
		direction = entities.SortOrderDescending
	}
	direction = direction.Flip()

	today := s.today()
	sort.SliceStable(category.Tasks, func(i, j int) bool {
		a := category.Tasks[i].EffectiveDate(today)
		b := category.Tasks[j].EffectiveDate(today)
		if direction == entities.SortOrderAscending {
			return a < b
		}
		return a > b
	})
	category.LastSortOrder = direction

	s.logger.Info("Category sorted", "category_id", categoryID, "direction", direction)

	return direction, s.persist(ctx)
}

// CleanCompletedTasks removes every completed task across all
// categories in one batch with a single persist and notification. The
// new task lists are computed first and assigned in one step so the
// document is never left partially filtered.
func (s *BoardService) CleanCompletedTasks(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	filtered := make([][]entities.Task, len(s.doc.Categories))
	for i := range s.doc.Categories {
		kept := make([]entities.Task, 0, len(s.doc.Categories[i].Tasks))
		for _, task := range s.doc.Categories[i].Tasks {
			if task.Completed {
				removed++
				continue
			}
			kept = append(kept, task)
		}
		filtered[i] = kept
	}
	if removed == 0 {
		return nil
	}
	for i := range s.doc.Categories {
		s.doc.Categories[i].Tasks = filtered[i]
	}

	s.logger.Info("Completed tasks cleaned", "removed", removed)

	return s.persist(ctx)
}

// SetConfirmTaskDeletion updates the deletion-confirmation setting.
func (s *BoardService) SetConfirmTaskDeletion(ctx context.Context, confirm bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.doc.Settings.ConfirmTaskDeletion == confirm {
		return nil
	}
	s.doc.Settings.ConfirmTaskDeletion = confirm

	return s.persist(ctx)
}

// SetDateFormat updates the display date format setting.
func (s *BoardService) SetDateFormat(ctx context.Context, format entities.DateFormat) error {
	if !format.IsValid() {
		return fmt.Errorf("%w: invalid date format %q", entities.ErrValidation, format)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.doc.Settings.DateFormat == format {
		return nil
	}
	s.doc.Settings.DateFormat = format

	return s.persist(ctx)
}

// Close performs a final save and releases the repository.
func (s *BoardService) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Save(ctx, s.doc); err != nil {
		s.logger.WithError(err).Error("Final save failed")
		return fmt.Errorf("%w: %v", entities.ErrPersistence, err)
	}
	return s.repo.Close()
}

// findTask locates a task inside a category; nil when either is
// absent. Caller holds the mutex.
func (s *BoardService) findTask(categoryID, taskID string) *entities.Task {
	category := s.doc.FindCategory(categoryID)
	if category == nil {
		return nil
	}
	return category.FindTask(taskID)
}

// persist fires the change notification for the already-applied
// mutation and then writes the document. The mutex serializes saves;
// a failed save is reported to the caller but never rolls the
// in-memory state back.
func (s *BoardService) persist(ctx context.Context) error {
	s.notify()
	if err := s.repo.Save(ctx, s.doc); err != nil {
		s.logger.WithError(err).Error("Document save failed")
		return fmt.Errorf("%w: %v", entities.ErrPersistence, err)
	}
	return nil
}

// notify signals subscribers without blocking; pending signals
// coalesce.
func (s *BoardService) notify() {
	select {
	case s.changes <- struct{}{}:
	default:
	}
}
