package router

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/university-api/internal/config"
	"github.com/stemsi/university-api/internal/handler"
	"github.com/stemsi/university-api/internal/middleware"
	"github.com/stemsi/university-api/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Faculty *handler.FacultyHandler
	Group   *handler.GroupHandler
	Student *handler.StudentHandler
	System  *handler.SystemHandler
}

// Route binds one method and path pattern to a handler.
type Route struct {
	Method  string
	Path    string
	Name    string
	Handler gin.HandlerFunc
}

// Routes returns the API route table. Paths are relative to /api.
func Routes(h *Handlers) []Route {
	return []Route{
		// ─── Faculties ─────────────────────────────────────────────────────
		{http.MethodGet, "/faculties", "faculties.list", h.Faculty.ListFaculties},
		{http.MethodPost, "/faculties", "faculties.create", h.Faculty.CreateFaculty},
		{http.MethodGet, "/faculties/:id", "faculties.show", h.Faculty.GetFaculty},
		{http.MethodPut, "/faculties/:id", "faculties.update", h.Faculty.UpdateFaculty},
		{http.MethodDelete, "/faculties/:id", "faculties.delete", h.Faculty.DeleteFaculty},
		{http.MethodGet, "/faculties/:id/groups", "faculties.groups", h.Faculty.ListFacultyGroups},

		// ─── Groups ────────────────────────────────────────────────────────
		{http.MethodGet, "/groups", "groups.list", h.Group.ListGroups},
		{http.MethodPost, "/groups", "groups.create", h.Group.CreateGroup},
		{http.MethodGet, "/groups/:id", "groups.show", h.Group.GetGroup},
		{http.MethodPut, "/groups/:id", "groups.update", h.Group.UpdateGroup},
		{http.MethodDelete, "/groups/:id", "groups.delete", h.Group.DeleteGroup},

		// ─── Students ──────────────────────────────────────────────────────
		{http.MethodGet, "/students", "students.list", h.Student.ListStudents},
		{http.MethodPost, "/students", "students.create", h.Student.CreateStudent},
		{http.MethodGet, "/students/:id", "students.show", h.Student.GetStudent},
		{http.MethodPut, "/students/:id", "students.update", h.Student.UpdateStudent},
		{http.MethodDelete, "/students/:id", "students.delete", h.Student.DeleteStudent},
	}
}

var knownMethods = map[string]bool{
	http.MethodGet:    true,
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodPatch:  true,
	http.MethodDelete: true,
}

// ValidateRoutes rejects empty or relative paths, unknown methods, duplicate
// method+path pairs and missing handlers.
func ValidateRoutes(routes []Route) error {
	seen := make(map[string]string, len(routes))
	for i, r := range routes {
		switch {
		case r.Path == "" || !strings.HasPrefix(r.Path, "/"):
			return fmt.Errorf("route %d (%s): path %q must start with /", i, r.Name, r.Path)
		case !knownMethods[r.Method]:
			return fmt.Errorf("route %d (%s): unknown method %q", i, r.Name, r.Method)
		case r.Handler == nil:
			return fmt.Errorf("route %d (%s): nil handler", i, r.Name)
		}
		key := r.Method + " " + r.Path
		if prev, dup := seen[key]; dup {
			return fmt.Errorf("route %d (%s): %s already bound to %s", i, r.Name, key, prev)
		}
		seen[key] = r.Name
	}
	return nil
}

// SetupRouter configures the engine, validates the route table and binds it.
// A non-nil limiter is applied to write routes.
func SetupRouter(
	cfg *config.Config,
	handlers *Handlers,
	log zerolog.Logger,
	limiter *middleware.RateLimiter,
) (*gin.Engine, error) {
	routes := Routes(handlers)
	if err := ValidateRoutes(routes); err != nil {
		return nil, err
	}

	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Request ID first so the access log line carries it.
	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.Brotli())

	router.HandleMethodNotAllowed = true
	router.NoRoute(func(c *gin.Context) {
		response.Fail(c, http.StatusNotFound, response.ErrRouteNotFound)
	})
	router.NoMethod(func(c *gin.Context) {
		response.Fail(c, http.StatusMethodNotAllowed, response.ErrMethodNotAllowed)
	})

	router.GET("/health", handlers.System.Health)

	api := router.Group("/api")
	for _, r := range routes {
		chain := []gin.HandlerFunc{r.Handler}
		if limiter != nil && r.Method != http.MethodGet {
			chain = append([]gin.HandlerFunc{limiter.Middleware()}, chain...)
		}
		api.Handle(r.Method, r.Path, chain...)
	}

	return router, nil
}
