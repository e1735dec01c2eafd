package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/taskboard/core/internal/adapters/repository"
	"github.com/taskboard/core/internal/application/services"
	"github.com/taskboard/core/internal/domain/entities"
	"github.com/taskboard/core/internal/infrastructure/logger"
)

type testValidator struct {
	validator *validator.Validate
}

func (v *testValidator) Validate(i interface{}) error {
	return v.validator.Struct(i)
}

func newTestHandler(t *testing.T) (*echo.Echo, *BoardHandler) {
	t.Helper()
	repo := repository.NewFileRepository(filepath.Join(t.TempDir(), "board.json"))
	svc, err := services.NewBoardService(context.Background(), repo, logger.NewNop())
	require.NoError(t, err)

	e := echo.New()
	e.Validator = &testValidator{validator: validator.New()}
	return e, NewBoardHandler(svc, logger.NewNop())
}

func doJSON(e *echo.Echo, method, path, body string, handler echo.HandlerFunc, params ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath(path)
	if len(params) > 0 {
		names := make([]string, 0, len(params)/2)
		values := make([]string, 0, len(params)/2)
		for i := 0; i+1 < len(params); i += 2 {
			names = append(names, params[i])
			values = append(values, params[i+1])
		}
		c.SetParamNames(names...)
		c.SetParamValues(values...)
	}
	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestCreateCategoryEndpoint(t *testing.T) {
	e, h := newTestHandler(t)

	rec := doJSON(e, http.MethodPost, "/api/v1/categories",
		`{"name":"Work","first_task_text":"Write report","first_task_due_date":"2024-01-05"}`,
		h.CreateCategory)
	require.Equal(t, http.StatusCreated, rec.Code)

	var category entities.Category
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &category))
	require.NotEmpty(t, category.ID)
	require.Equal(t, "Work", category.Name)
	require.Len(t, category.Tasks, 1)
}

func TestCreateCategoryEndpointRejectsEmptyName(t *testing.T) {
	e, h := newTestHandler(t)

	rec := doJSON(e, http.MethodPost, "/api/v1/categories", `{"name":""}`, h.CreateCategory)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAddTaskEndpointMissingCategory(t *testing.T) {
	e, h := newTestHandler(t)

	rec := doJSON(e, http.MethodPost, "/api/v1/categories/:id/tasks",
		`{"text":"x"}`, h.AddTask, "id", "missing")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReorderEndpointOutOfBounds(t *testing.T) {
	e, h := newTestHandler(t)

	rec := doJSON(e, http.MethodPut, "/api/v1/categories/reorder",
		`{"from_index":0,"to_index":5}`, h.ReorderCategory)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestSortEndpointReportsDirection(t *testing.T) {
	e, h := newTestHandler(t)

	rec := doJSON(e, http.MethodPost, "/api/v1/categories", `{"name":"Work"}`, h.CreateCategory)
	require.Equal(t, http.StatusCreated, rec.Code)
	var category entities.Category
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &category))

	rec = doJSON(e, http.MethodPost, "/api/v1/categories/:id/sort", "", h.SortTasks, "id", category.ID)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp SortResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, entities.SortOrderAscending, resp.Direction)
}

func TestGetBoardDerivesStatuses(t *testing.T) {
	e, h := newTestHandler(t)

	rec := doJSON(e, http.MethodPost, "/api/v1/categories",
		`{"name":"Work","first_task_text":"Old","first_task_due_date":"2000-01-01"}`,
		h.CreateCategory)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(e, http.MethodGet, "/api/v1/board", "", h.GetBoard)
	require.Equal(t, http.StatusOK, rec.Code)

	var board BoardView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &board))
	require.Equal(t, entities.Today(), board.Today)
	require.Len(t, board.Categories, 1)
	require.Len(t, board.Categories[0].Tasks, 1)
	require.Equal(t, entities.DueStatusOverdue, board.Categories[0].Tasks[0].Status)
	require.NotEmpty(t, board.Categories[0].Tasks[0].DueDateDisplay)
}

func TestUpdateSettingsEndpoint(t *testing.T) {
	e, h := newTestHandler(t)

	rec := doJSON(e, http.MethodPut, "/api/v1/settings",
		`{"confirm_task_deletion":true,"date_format":"DD-MM-YYYY"}`, h.UpdateSettings)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(e, http.MethodGet, "/api/v1/board", "", h.GetBoard)
	var board BoardView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &board))
	require.True(t, board.Settings.ConfirmTaskDeletion)
	require.Equal(t, entities.DateFormatDMY, board.Settings.DateFormat)

	rec = doJSON(e, http.MethodPut, "/api/v1/settings", `{"date_format":"bogus"}`, h.UpdateSettings)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
