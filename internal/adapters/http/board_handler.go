package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskboard/core/internal/domain/entities"
	"github.com/taskboard/core/internal/infrastructure/logger"
	"github.com/taskboard/core/internal/ports"
)

// BoardHandler exposes the store operations over HTTP. It renders from
// the current in-memory state; due statuses are derived per request
// against the device-local date.
type BoardHandler struct {
	service ports.BoardService
	logger  *logger.Logger
}

// NewBoardHandler creates a new board handler
func NewBoardHandler(service ports.BoardService, logger *logger.Logger) *BoardHandler {
	return &BoardHandler{
		service: service,
		logger:  logger,
	}
}

// Request types

type CreateCategoryRequest struct {
	Name             string `json:"name" validate:"required"`
	FirstTaskText    string `json:"first_task_text"`
	FirstTaskDueDate string `json:"first_task_due_date"`
}

type RenameRequest struct {
	Name string `json:"name" validate:"required"`
}

type SetColorRequest struct {
	Color string `json:"color"`
}

type ReorderRequest struct {
	FromIndex int `json:"from_index"`
	ToIndex   int `json:"to_index"`
}

type AddTaskRequest struct {
	Text    string `json:"text" validate:"required"`
	DueDate string `json:"due_date"`
}

type SetTaskTextRequest struct {
	Text string `json:"text" validate:"required"`
}

type SetDueDateRequest struct {
	DueDate string `json:"due_date"`
}

type SetCompletedRequest struct {
	Completed bool `json:"completed"`
}

type UpdateSettingsRequest struct {
	ConfirmTaskDeletion *bool   `json:"confirm_task_deletion"`
	DateFormat          *string `json:"date_format"`
}

// View types

type TaskView struct {
	ID             string             `json:"id"`
	Text           string             `json:"text"`
	Completed      bool               `json:"completed"`
	DueDate        string             `json:"due_date,omitempty"`
	DueDateDisplay string             `json:"due_date_display,omitempty"`
	Status         entities.DueStatus `json:"status"`
}

type CategoryView struct {
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	IsCollapsed   bool               `json:"is_collapsed"`
	Color         entities.Color     `json:"color,omitempty"`
	LastSortOrder entities.SortOrder `json:"last_sort_order,omitempty"`
	Tasks         []TaskView         `json:"tasks"`
}

type BoardView struct {
	Today      string            `json:"today"`
	Settings   entities.Settings `json:"settings"`
	Categories []CategoryView    `json:"categories"`
}

type SortResponse struct {
	Direction entities.SortOrder `json:"direction"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// GetBoard returns the full board with derived due statuses
func (h *BoardHandler) GetBoard(c echo.Context) error {
	doc := h.service.Document()
	today := entities.Today()
	locale := entities.SystemLocale()

	view := BoardView{
		Today:      today,
		Settings:   doc.Settings,
		Categories: make([]CategoryView, len(doc.Categories)),
	}
	for i, category := range doc.Categories {
		cv := CategoryView{
			ID:            category.ID,
			Name:          category.Name,
			IsCollapsed:   category.IsCollapsed,
			Color:         category.Color,
			LastSortOrder: category.LastSortOrder,
			Tasks:         make([]TaskView, len(category.Tasks)),
		}
		for j := range category.Tasks {
			task := category.Tasks[j]
			cv.Tasks[j] = TaskView{
				ID:             task.ID,
				Text:           task.Text,
				Completed:      task.Completed,
				DueDate:        task.DueDate,
				DueDateDisplay: entities.FormatDisplayDate(task.DueDate, doc.Settings.DateFormat, locale),
				Status:         task.StatusOn(today),
			}
		}
		view.Categories[i] = cv
	}

	return c.JSON(http.StatusOK, view)
}

// CreateCategory creates a new category, optionally with a first task
func (h *BoardHandler) CreateCategory(c echo.Context) error {
	var req CreateCategoryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	category, err := h.service.CreateCategory(c.Request().Context(), req.Name, req.FirstTaskText, req.FirstTaskDueDate)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(http.StatusCreated, category)
}

// DeleteCategory removes a category and its tasks
func (h *BoardHandler) DeleteCategory(c echo.Context) error {
	if err := h.service.DeleteCategory(c.Request().Context(), c.Param("id")); err != nil {
		return mapServiceError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// RenameCategory changes a category's name
func (h *BoardHandler) RenameCategory(c echo.Context) error {
	var req RenameRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.service.RenameCategory(c.Request().Context(), c.Param("id"), req.Name); err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Category renamed"})
}

// SetCategoryColor sets a category's color token
func (h *BoardHandler) SetCategoryColor(c echo.Context) error {
	var req SetColorRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := h.service.SetCategoryColor(c.Request().Context(), c.Param("id"), entities.Color(req.Color)); err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Category color updated"})
}

// ToggleCollapsed flips a category's collapsed flag
func (h *BoardHandler) ToggleCollapsed(c echo.Context) error {
	if err := h.service.ToggleCategoryCollapsed(c.Request().Context(), c.Param("id")); err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Category collapse toggled"})
}

// ToggleAllCollapsed collapses everything when any category is
// expanded, otherwise expands everything
func (h *BoardHandler) ToggleAllCollapsed(c echo.Context) error {
	if err := h.service.ToggleAllCollapsed(c.Request().Context()); err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Categories collapse toggled"})
}

// ReorderCategory moves a category to a new position
func (h *BoardHandler) ReorderCategory(c echo.Context) error {
	var req ReorderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := h.service.ReorderCategory(c.Request().Context(), req.FromIndex, req.ToIndex); err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Category reordered"})
}

// AddTask appends a task to a category
func (h *BoardHandler) AddTask(c echo.Context) error {
	var req AddTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	task, err := h.service.AddTask(c.Request().Context(), c.Param("id"), req.Text, req.DueDate)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusCreated, task)
}

// RenameTask changes a task's text
func (h *BoardHandler) RenameTask(c echo.Context) error {
	var req SetTaskTextRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.service.RenameTask(c.Request().Context(), c.Param("id"), c.Param("taskId"), req.Text); err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Task renamed"})
}

// SetTaskDueDate sets or clears a task's due date
func (h *BoardHandler) SetTaskDueDate(c echo.Context) error {
	var req SetDueDateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := h.service.SetTaskDueDate(c.Request().Context(), c.Param("id"), c.Param("taskId"), req.DueDate); err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Task due date updated"})
}

// SetTaskCompleted sets a task's completion state
func (h *BoardHandler) SetTaskCompleted(c echo.Context) error {
	var req SetCompletedRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := h.service.SetTaskCompleted(c.Request().Context(), c.Param("id"), c.Param("taskId"), req.Completed); err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Task completion updated"})
}

// DeleteTask removes a task from a category
func (h *BoardHandler) DeleteTask(c echo.Context) error {
	if err := h.service.DeleteTask(c.Request().Context(), c.Param("id"), c.Param("taskId")); err != nil {
		return mapServiceError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// SortTasks sorts a category's tasks by due date and reports the
// direction applied
func (h *BoardHandler) SortTasks(c echo.Context) error {
	direction, err := h.service.SortCategoryTasks(c.Request().Context(), c.Param("id"))
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, SortResponse{Direction: direction})
}

// CleanCompleted removes every completed task across the board
func (h *BoardHandler) CleanCompleted(c echo.Context) error {
	if err := h.service.CleanCompletedTasks(c.Request().Context()); err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Completed tasks removed"})
}

// UpdateSettings updates the document-wide user options
func (h *BoardHandler) UpdateSettings(c echo.Context) error {
	var req UpdateSettingsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	ctx := c.Request().Context()
	if req.ConfirmTaskDeletion != nil {
		if err := h.service.SetConfirmTaskDeletion(ctx, *req.ConfirmTaskDeletion); err != nil {
			return mapServiceError(err)
		}
	}
	if req.DateFormat != nil {
		if err := h.service.SetDateFormat(ctx, entities.DateFormat(*req.DateFormat)); err != nil {
			return mapServiceError(err)
		}
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Settings updated"})
}

// Events streams the store's change signal as server-sent events so a
// presentation layer can re-render on each completed mutation.
func (h *BoardHandler) Events(c echo.Context) error {
	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	w.Flush()

	changes := h.service.Subscribe()
	for {
		select {
		case <-c.Request().Context().Done():
			return nil
		case <-changes:
			if _, err := fmt.Fprint(w, "event: change\ndata: {}\n\n"); err != nil {
				return nil
			}
			w.Flush()
		}
	}
}

// mapServiceError translates store errors to HTTP status codes. A
// persistence failure reports 500 but the mutation stays applied in
// memory, so the client may keep working.
func mapServiceError(err error) error {
	switch {
	case errors.Is(err, entities.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, entities.ErrIndexOutOfRange):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, entities.ErrPersistence):
		return echo.NewHTTPError(http.StatusInternalServerError, "Change applied but not yet saved: "+err.Error())
	default:
		return err
	}
}
