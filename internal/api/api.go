// Package api wires the HTTP routes of the task tracker onto a chi router.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/nadmax/tasktracker/internal/dashboard"
	"github.com/nadmax/tasktracker/internal/employee"
	"github.com/nadmax/tasktracker/internal/httputil"
	"github.com/nadmax/tasktracker/internal/middleware"
	"github.com/nadmax/tasktracker/internal/service"
	"github.com/nadmax/tasktracker/internal/task"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const Version = "1.0.0"

type TaskService interface {
	List(ctx context.Context, filter service.TaskFilter) ([]*task.Task, service.Pagination, error)
	Get(ctx context.Context, taskID string) (*task.Task, error)
	Create(ctx context.Context, in service.CreateTaskInput) (*task.Task, error)
	Update(ctx context.Context, taskID string, in service.UpdateTaskInput) (*task.Task, error)
	Delete(ctx context.Context, taskID string) error
	Describe(ctx context.Context, tasks ...*task.Task) ([]service.TaskView, error)
}

type EmployeeService interface {
	List(ctx context.Context, filter service.EmployeeFilter) ([]*employee.Employee, service.Pagination, error)
	Get(ctx context.Context, employeeID string) (*service.EmployeeDetail, error)
	Create(ctx context.Context, in service.CreateEmployeeInput) (*employee.Employee, error)
	Update(ctx context.Context, employeeID string, in service.UpdateEmployeeInput) (*employee.Employee, error)
	Delete(ctx context.Context, employeeID string) error
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type Dependencies struct {
	Tasks       TaskService
	Employees   EmployeeService
	Dashboard   dashboard.MetricsProvider
	Database    Pinger
	Cache       Pinger
	Logger      *slog.Logger
	FrontendURL string

	// ExposeErrors puts the underlying error message in 500 responses.
	ExposeErrors bool
}

type API struct {
	tasks     TaskService
	employees EmployeeService
	dashboard *dashboard.Handler
	database  Pinger
	cache     Pinger
	logger    *slog.Logger
	started   time.Time
	router    chi.Router

	exposeErrors bool
}

func NewAPI(deps Dependencies) *API {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	api := &API{
		tasks:     deps.Tasks,
		employees: deps.Employees,
		dashboard: dashboard.NewHandler(deps.Dashboard),
		database:  deps.Database,
		cache:     deps.Cache,
		logger:    logger.With(slog.String("component", "api")),
		started:   time.Now(),
		router:    chi.NewRouter(),

		exposeErrors: deps.ExposeErrors,
	}

	api.setupRoutes(deps.FrontendURL)
	return api
}

func (a *API) setupRoutes(frontendURL string) {
	r := a.router

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(a.logger))
	r.Use(middleware.Metrics)
	r.Use(middleware.CORS(frontendURL))
	r.Use(chimiddleware.Recoverer)

	r.NotFound(a.notFound)
	r.MethodNotAllowed(a.methodNotAllowed)

	r.Get("/", a.root)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", a.health)

		r.Route("/employees", func(r chi.Router) {
			r.Get("/", a.listEmployees)
			r.Post("/", a.createEmployee)
			r.Get("/{id}", a.getEmployee)
			r.Put("/{id}", a.updateEmployee)
			r.Delete("/{id}", a.deleteEmployee)
		})

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", a.listTasks)
			r.Post("/", a.createTask)
			r.Get("/{id}", a.getTask)
			r.Put("/{id}", a.updateTask)
			r.Delete("/{id}", a.deleteTask)
		})

		r.Get("/dashboard", a.dashboard.GetMetrics)
	})
}

func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

func (a *API) root(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"message": "Employee Task Tracker API",
		"version": Version,
		"endpoints": map[string]string{
			"health":    "/api/health",
			"employees": "/api/employees",
			"tasks":     "/api/tasks",
			"dashboard": "/api/dashboard",
		},
	})
}

type HealthResponse struct {
	OK        bool      `json:"ok"`
	Timestamp time.Time `json:"timestamp"`
	Uptime    float64   `json:"uptime"`
	Database  string    `json:"database"`
	Cache     string    `json:"cache"`
}

func (a *API) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := HealthResponse{
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(a.started).Seconds(),
		Database:  a.connectivity(ctx, "database", a.database),
		Cache:     a.connectivity(ctx, "cache", a.cache),
	}
	resp.OK = resp.Database == "connected" && resp.Cache == "connected"

	status := http.StatusOK
	if !resp.OK {
		status = http.StatusServiceUnavailable
	}

	httputil.WriteJSON(w, status, resp)
}

func (a *API) connectivity(ctx context.Context, name string, p Pinger) string {
	if p == nil {
		return "disconnected"
	}

	if err := p.Ping(ctx); err != nil {
		a.logger.Warn("Health check failed", "dependency", name, "error", err)
		return "disconnected"
	}

	return "connected"
}

func (a *API) notFound(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSONError(w, http.StatusNotFound, httputil.CodeNotFound, "Route "+r.URL.RequestURI()+" not found")
}

func (a *API) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSONError(w, http.StatusMethodNotAllowed, httputil.CodeBadRequest, "Method "+r.Method+" not allowed")
}
