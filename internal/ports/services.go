package ports

import (
	"context"

	"github.com/taskboard/core/internal/domain/entities"
)

// BoardService is the store owning the in-memory document. Every
// mutating operation applies synchronously, persists the whole
// document, and fires one change notification; operations that turn
// out to be no-ops (absent ids, unchanged values) do neither.
type BoardService interface {
	// Document returns a deep-copy snapshot of the current in-memory
	// state for rendering.
	Document() *entities.Document

	// Subscribe returns the coalescing change signal fired after each
	// completed mutation. The channel is shared, not a broadcast: a
	// single consumer should drain it.
	Subscribe() <-chan struct{}

	CreateCategory(ctx context.Context, name, firstTaskText, firstTaskDueDate string) (*entities.Category, error)
	DeleteCategory(ctx context.Context, categoryID string) error
	RenameCategory(ctx context.Context, categoryID, newName string) error
	SetCategoryColor(ctx context.Context, categoryID string, color entities.Color) error
	ToggleCategoryCollapsed(ctx context.Context, categoryID string) error
	ToggleAllCollapsed(ctx context.Context) error
	ReorderCategory(ctx context.Context, fromIndex, toIndex int) error

	AddTask(ctx context.Context, categoryID, text, dueDate string) (*entities.Task, error)
	RenameTask(ctx context.Context, categoryID, taskID, newText string) error
	SetTaskDueDate(ctx context.Context, categoryID, taskID, dueDate string) error
	SetTaskCompleted(ctx context.Context, categoryID, taskID string, completed bool) error
	DeleteTask(ctx context.Context, categoryID, taskID string) error

	SortCategoryTasks(ctx context.Context, categoryID string) (entities.SortOrder, error)
	CleanCompletedTasks(ctx context.Context) error

	SetConfirmTaskDeletion(ctx context.Context, confirm bool) error
	SetDateFormat(ctx context.Context, format entities.DateFormat) error
}
