package entities

import (
	"errors"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrValidation       = errors.New("validation failed")
	ErrIndexOutOfRange  = errors.New("index out of range")
	ErrPersistence      = errors.New("persistence failed")
	ErrEmptyName        = errors.New("name must not be empty")
	ErrEmptyTaskText    = errors.New("task text must not be empty")
	ErrCategoryNotFound = errors.New("category not found")
	ErrInvalidDueDate   = errors.New("due date must be YYYY-MM-DD")
	ErrInvalidColor     = errors.New("unknown color token")
)

// Enums and types
type SortOrder string

const (
	SortOrderAscending  SortOrder = "ascending"
	SortOrderDescending SortOrder = "descending"
)

// Flip returns the opposite direction. A category that has never been
// sorted behaves as if its last order were descending, so the first
// explicit sort yields ascending.
func (o SortOrder) Flip() SortOrder {
	if o == SortOrderAscending {
		return SortOrderDescending
	}
	return SortOrderAscending
}

func (o SortOrder) IsValid() bool {
	switch o {
	case SortOrderAscending, SortOrderDescending:
		return true
	default:
		return false
	}
}

type DateFormat string

const (
	DateFormatAuto DateFormat = "auto"
	DateFormatYMD  DateFormat = "YYYY-MM-DD"
	DateFormatDMY  DateFormat = "DD-MM-YYYY"
)

func (f DateFormat) IsValid() bool {
	switch f {
	case DateFormatAuto, DateFormatYMD, DateFormatDMY:
		return true
	default:
		return false
	}
}

// Color is a closed set of presentation tokens. The empty token means
// "use default styling".
type Color string

const (
	ColorDefault Color = ""
	ColorRed     Color = "red"
	ColorOrange  Color = "orange"
	ColorYellow  Color = "yellow"
	ColorGreen   Color = "green"
	ColorBlue    Color = "blue"
	ColorPurple  Color = "purple"
	ColorPink    Color = "pink"
	ColorGray    Color = "gray"
)

func (c Color) IsValid() bool {
	switch c {
	case ColorDefault, ColorRed, ColorOrange, ColorYellow, ColorGreen,
		ColorBlue, ColorPurple, ColorPink, ColorGray:
		return true
	default:
		return false
	}
}

type DueStatus string

const (
	DueStatusOverdue     DueStatus = "overdue"
	DueStatusDueToday    DueStatus = "due_today"
	DueStatusScheduled   DueStatus = "scheduled"
	DueStatusUnscheduled DueStatus = "unscheduled"
)

// Task represents a single actionable item inside a category.
type Task struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
	DueDate   string `json:"due_date,omitempty"` // YYYY-MM-DD, empty means unscheduled
}

// Category is a named, ordered, collapsible group of tasks.
type Category struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Tasks         []Task    `json:"tasks"`
	IsCollapsed   bool      `json:"is_collapsed"`
	Color         Color     `json:"color,omitempty"`
	LastSortOrder SortOrder `json:"last_sort_order,omitempty"`
}

// Settings are the document-wide user options.
type Settings struct {
	ConfirmTaskDeletion bool       `json:"confirm_task_deletion"`
	DateFormat          DateFormat `json:"date_format"`
}

// Document is the complete persisted state: all categories and tasks
// plus global settings. It is the sole unit of durable state and is
// written as one blob per mutation.
type Document struct {
	Categories []Category `json:"categories"`
	Settings   Settings   `json:"settings"`
}

// NewDocument returns the default document used when nothing has been
// persisted yet.
func NewDocument() *Document {
	return &Document{
		Categories: []Category{},
		Settings: Settings{
			ConfirmTaskDeletion: false,
			DateFormat:          DateFormatAuto,
		},
	}
}

// NewID generates a unique entity identifier.
func NewID() string {
	return uuid.NewString()
}

// StatusOn classifies the task against the given calendar date
// (YYYY-MM-DD). Unscheduled tasks carry no badge.
func (t *Task) StatusOn(today string) DueStatus {
	if t.DueDate == "" {
		return DueStatusUnscheduled
	}
	switch {
	case t.DueDate < today:
		return DueStatusOverdue
	case t.DueDate == today:
		return DueStatusDueToday
	default:
		return DueStatusScheduled
	}
}

// EffectiveDate is the task's due date, or today when unset. Used only
// for sort comparison, never stored.
func (t *Task) EffectiveDate(today string) string {
	if t.DueDate == "" {
		return today
	}
	return t.DueDate
}

// FindCategory returns the category with the given id, or nil.
func (d *Document) FindCategory(id string) *Category {
	for i := range d.Categories {
		if d.Categories[i].ID == id {
			return &d.Categories[i]
		}
	}
	return nil
}

// CategoryIndex returns the position of the category with the given
// id, or -1.
func (d *Document) CategoryIndex(id string) int {
	for i := range d.Categories {
		if d.Categories[i].ID == id {
			return i
		}
	}
	return -1
}

// FindTask returns the task with the given id, or nil.
func (c *Category) FindTask(id string) *Task {
	for i := range c.Tasks {
		if c.Tasks[i].ID == id {
			return &c.Tasks[i]
		}
	}
	return nil
}

// AnyExpanded reports whether at least one category is not collapsed.
func (d *Document) AnyExpanded() bool {
	for i := range d.Categories {
		if !d.Categories[i].IsCollapsed {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the document so render passes never
// observe a half-applied mutation.
func (d *Document) Clone() *Document {
	out := &Document{
		Categories: make([]Category, len(d.Categories)),
		Settings:   d.Settings,
	}
	for i, c := range d.Categories {
		cc := c
		cc.Tasks = make([]Task, len(c.Tasks))
		copy(cc.Tasks, c.Tasks)
		out.Categories[i] = cc
	}
	return out
}

// Normalize repairs a document loaded from storage: unknown color
// tokens fall back to default styling, invalid enum values are reset,
// and nil slices become empty.
func (d *Document) Normalize() {
	if d.Categories == nil {
		d.Categories = []Category{}
	}
	if !d.Settings.DateFormat.IsValid() {
		d.Settings.DateFormat = DateFormatAuto
	}
	for i := range d.Categories {
		c := &d.Categories[i]
		if !c.Color.IsValid() {
			c.Color = ColorDefault
		}
		if c.LastSortOrder != "" && !c.LastSortOrder.IsValid() {
			c.LastSortOrder = ""
		}
		if c.Tasks == nil {
			c.Tasks = []Task{}
		}
	}
}
