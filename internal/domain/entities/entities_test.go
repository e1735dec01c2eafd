package entities

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTaskStatusOn(t *testing.T) {
	tests := []struct {
		name    string
		dueDate string
		today   string
		want    DueStatus
	}{
		{"overdue", "2024-01-01", "2024-01-02", DueStatusOverdue},
		{"due today", "2024-01-02", "2024-01-02", DueStatusDueToday},
		{"scheduled", "2024-01-03", "2024-01-02", DueStatusScheduled},
		{"unscheduled", "", "2024-01-02", DueStatusUnscheduled},
		{"overdue across year", "2023-12-31", "2024-01-01", DueStatusOverdue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := Task{DueDate: tt.dueDate}
			require.Equal(t, tt.want, task.StatusOn(tt.today))
		})
	}
}

func TestTaskEffectiveDate(t *testing.T) {
	scheduled := Task{DueDate: "2024-05-01"}
	require.Equal(t, "2024-05-01", scheduled.EffectiveDate("2024-01-02"))

	unscheduled := Task{}
	require.Equal(t, "2024-01-02", unscheduled.EffectiveDate("2024-01-02"))
	// EffectiveDate never mutates the task
	require.Empty(t, unscheduled.DueDate)
}

func TestSortOrderFlip(t *testing.T) {
	require.Equal(t, SortOrderDescending, SortOrderAscending.Flip())
	require.Equal(t, SortOrderAscending, SortOrderDescending.Flip())
	// Never-sorted behaves like descending, so the first flip yields ascending
	require.Equal(t, SortOrderAscending, SortOrder("").Flip())
}

func TestEnumValidity(t *testing.T) {
	require.True(t, SortOrderAscending.IsValid())
	require.False(t, SortOrder("sideways").IsValid())

	require.True(t, DateFormatAuto.IsValid())
	require.True(t, DateFormatYMD.IsValid())
	require.True(t, DateFormatDMY.IsValid())
	require.False(t, DateFormat("MM-DD-YYYY").IsValid())

	require.True(t, ColorDefault.IsValid())
	require.True(t, ColorBlue.IsValid())
	require.False(t, Color("#ff00ff").IsValid())
}

func TestNewDocumentDefaults(t *testing.T) {
	doc := NewDocument()
	require.Empty(t, doc.Categories)
	require.False(t, doc.Settings.ConfirmTaskDeletion)
	require.Equal(t, DateFormatAuto, doc.Settings.DateFormat)
}

func TestDocumentLookups(t *testing.T) {
	doc := Document{
		Categories: []Category{
			{ID: "a", Name: "Work", Tasks: []Task{{ID: "t1", Text: "one"}}},
			{ID: "b", Name: "Home"},
		},
	}

	require.Equal(t, 0, doc.CategoryIndex("a"))
	require.Equal(t, 1, doc.CategoryIndex("b"))
	require.Equal(t, -1, doc.CategoryIndex("missing"))

	require.NotNil(t, doc.FindCategory("b"))
	require.Nil(t, doc.FindCategory("missing"))

	work := doc.FindCategory("a")
	require.NotNil(t, work.FindTask("t1"))
	require.Nil(t, work.FindTask("t2"))
}

func TestAnyExpanded(t *testing.T) {
	doc := Document{Categories: []Category{{IsCollapsed: true}, {IsCollapsed: true}}}
	require.False(t, doc.AnyExpanded())

	doc.Categories[1].IsCollapsed = false
	require.True(t, doc.AnyExpanded())

	empty := Document{}
	require.False(t, empty.AnyExpanded())
}

func TestDocumentClone(t *testing.T) {
	doc := &Document{
		Categories: []Category{
			{ID: "a", Name: "Work", Tasks: []Task{{ID: "t1", Text: "one"}}},
		},
		Settings: Settings{ConfirmTaskDeletion: true, DateFormat: DateFormatYMD},
	}

	clone := doc.Clone()
	require.Equal(t, doc, clone)

	// Mutating the clone must not leak into the original
	clone.Categories[0].Name = "Changed"
	clone.Categories[0].Tasks[0].Text = "changed"
	require.Equal(t, "Work", doc.Categories[0].Name)
	require.Equal(t, "one", doc.Categories[0].Tasks[0].Text)
}

func TestDocumentNormalize(t *testing.T) {
	doc := Document{
		Categories: []Category{
			{ID: "a", Name: "Work", Color: Color("chartreuse"), LastSortOrder: SortOrder("sideways")},
		},
		Settings: Settings{DateFormat: DateFormat("bogus")},
	}

	doc.Normalize()

	require.Equal(t, ColorDefault, doc.Categories[0].Color)
	require.Equal(t, SortOrder(""), doc.Categories[0].LastSortOrder)
	require.Equal(t, DateFormatAuto, doc.Settings.DateFormat)
	require.NotNil(t, doc.Categories[0].Tasks)
}
