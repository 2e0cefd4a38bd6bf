package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/nadmax/tasktracker/internal/httputil"
	"github.com/nadmax/tasktracker/internal/service"
	"github.com/nadmax/tasktracker/internal/task"
)

const maxBodyBytes = 1 << 20

func (a *API) listTasks(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	q := r.URL.Query()
	assignedTo := q.Get("assignedTo")
	if assignedTo != "" {
		if _, err := uuid.Parse(assignedTo); err != nil {
			httputil.WriteJSONError(w, http.StatusBadRequest, httputil.CodeInvalidID, "Invalid assignedTo: "+assignedTo)
			return
		}
	}

	tasks, pagination, err := a.tasks.List(r.Context(), service.TaskFilter{
		PageRequest: page,
		Search:      q.Get("search"),
		Status:      task.TaskStatus(q.Get("status")),
		Priority:    task.TaskPriority(q.Get("priority")),
		AssignedTo:  assignedTo,
	})
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	views, err := a.tasks.Describe(r.Context(), tasks...)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	httputil.WritePaginated(w, views, pageMeta(pagination))
}

func (a *API) getTask(w http.ResponseWriter, r *http.Request) {
	taskID, ok := a.pathID(w, r)
	if !ok {
		return
	}

	t, err := a.tasks.Get(r.Context(), taskID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	a.writeTask(w, r, t, httputil.WriteSuccess)
}

func (a *API) createTask(w http.ResponseWriter, r *http.Request) {
	var req service.CreateTaskInput
	if !a.decodeJSON(w, r, &req) {
		return
	}

	t, err := a.tasks.Create(r.Context(), req)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	a.writeTask(w, r, t, httputil.WriteCreated)
}

func (a *API) updateTask(w http.ResponseWriter, r *http.Request) {
	taskID, ok := a.pathID(w, r)
	if !ok {
		return
	}

	var req service.UpdateTaskInput
	if !a.decodeJSON(w, r, &req) {
		return
	}

	t, err := a.tasks.Update(r.Context(), taskID, req)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	a.writeTask(w, r, t, httputil.WriteUpdated)
}

func (a *API) writeTask(w http.ResponseWriter, r *http.Request, t *task.Task, write func(http.ResponseWriter, any)) {
	views, err := a.tasks.Describe(r.Context(), t)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	write(w, views[0])
}

func (a *API) deleteTask(w http.ResponseWriter, r *http.Request) {
	taskID, ok := a.pathID(w, r)
	if !ok {
		return
	}

	if err := a.tasks.Delete(r.Context(), taskID); err != nil {
		a.writeError(w, r, err)
		return
	}

	httputil.WriteDeleted(w)
}

func (a *API) listEmployees(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	employees, pagination, err := a.employees.List(r.Context(), service.EmployeeFilter{
		PageRequest: page,
		Search:      r.URL.Query().Get("search"),
	})
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	httputil.WritePaginated(w, employees, pageMeta(pagination))
}

func (a *API) getEmployee(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := a.pathID(w, r)
	if !ok {
		return
	}

	detail, err := a.employees.Get(r.Context(), employeeID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	httputil.WriteSuccess(w, detail)
}

func (a *API) createEmployee(w http.ResponseWriter, r *http.Request) {
	var req service.CreateEmployeeInput
	if !a.decodeJSON(w, r, &req) {
		return
	}

	e, err := a.employees.Create(r.Context(), req)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	httputil.WriteCreated(w, e)
}

func (a *API) updateEmployee(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := a.pathID(w, r)
	if !ok {
		return
	}

	var req service.UpdateEmployeeInput
	if !a.decodeJSON(w, r, &req) {
		return
	}

	e, err := a.employees.Update(r.Context(), employeeID, req)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	httputil.WriteUpdated(w, e)
}

func (a *API) deleteEmployee(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := a.pathID(w, r)
	if !ok {
		return
	}

	if err := a.employees.Delete(r.Context(), employeeID); err != nil {
		a.writeError(w, r, err)
		return
	}

	httputil.WriteDeleted(w)
}

func (a *API) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	defer func() {
		if err := r.Body.Close(); err != nil {
			a.logger.Warn("failed to close request body", "error", err)
		}
	}()

	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
	if errors.Is(err, io.EOF) {
		httputil.WriteJSONError(w, http.StatusBadRequest, httputil.CodeBadRequest, "Request body is required")
		return false
	}
	if err != nil {
		httputil.WriteJSONError(w, http.StatusBadRequest, httputil.CodeBadRequest, "Invalid JSON")
		return false
	}

	return true
}

func (a *API) pathID(w http.ResponseWriter, r *http.Request) (string, bool) {
	raw := chi.URLParam(r, "id")

	id, err := uuid.Parse(raw)
	if err != nil {
		httputil.WriteJSONError(w, http.StatusBadRequest, httputil.CodeInvalidID, "Invalid id: "+raw)
		return "", false
	}

	return id.String(), true
}

func pageFromQuery(r *http.Request) (service.PageRequest, error) {
	q := r.URL.Query()
	page := service.PageRequest{Page: service.DefaultPage, Limit: service.DefaultLimit}

	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return page, service.ErrInvalidPage
		}
		page.Page = n
	}

	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return page, service.ErrInvalidLimit
		}
		page.Limit = n
	}

	return page, nil
}

func pageMeta(p service.Pagination) httputil.PageMeta {
	return httputil.PageMeta{
		Page:       p.Page,
		Limit:      p.Limit,
		TotalItems: p.TotalItems,
		TotalPages: p.TotalPages,
	}
}
