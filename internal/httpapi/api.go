package httpapi

import (
	"github.com/gin-gonic/gin"

	"classcheck/internal/auth"
	"classcheck/internal/club"
	"classcheck/internal/config"
	"classcheck/internal/dashboard"
	"classcheck/internal/event"
	"classcheck/internal/metrics"
	"classcheck/internal/student"
	"classcheck/internal/user"
)

// API bundles the services the route handlers call into.
type API struct {
	cfg       config.App
	students  *student.Service
	importer  *student.Importer
	events    *event.Service
	clubs     *club.Service
	users     *user.Service
	stats     *dashboard.Service
	metrics   *metrics.Metrics
	userStore auth.UserSource
}

// New builds the handler set.
func New(cfg config.App, students *student.Service, importer *student.Importer,
	events *event.Service, clubs *club.Service, users *user.Service,
	stats *dashboard.Service, m *metrics.Metrics, userStore auth.UserSource) *API {
	return &API{
		cfg:       cfg,
		students:  students,
		importer:  importer,
		events:    events,
		clubs:     clubs,
		users:     users,
		stats:     stats,
		metrics:   m,
		userStore: userStore,
	}
}

// Register mounts every route under /api. Everything except login and
// logout sits behind session auth; user management writes additionally
// require the admin role.
func (a *API) Register(r *gin.Engine) {
	api := r.Group("/api")

	api.POST("/auth/login", a.login)
	api.POST("/auth/logout", a.logout)

	authed := api.Group("", auth.SessionAuth(a.cfg.JWTSecret, a.cfg.JWTIssuer, a.userStore))

	authed.GET("/auth/me", a.me)

	authed.GET("/students", a.listStudents)
	authed.POST("/students", a.createStudent)
	authed.PUT("/students", a.updateStudent)
	authed.DELETE("/students", a.deleteStudent)
	authed.POST("/students/import", a.importStudents)

	authed.GET("/events", a.listEvents)
	authed.POST("/events", a.createEvent)
	authed.PUT("/events", a.updateEvent)
	authed.DELETE("/events", a.deleteEvent)
	authed.GET("/events/attendance", a.listEventAttendance)
	authed.PUT("/events/attendance", a.setEventAttendance)

	authed.GET("/clubs", a.listClubs)
	authed.POST("/clubs", a.createClub)
	authed.PUT("/clubs", a.updateClub)
	authed.DELETE("/clubs", a.deleteClub)
	authed.GET("/clubs/members", a.availableStudents)
	authed.POST("/clubs/members", a.addMember)
	authed.DELETE("/clubs/members", a.removeMember)
	authed.GET("/clubs/weeks", a.weeks)
	authed.POST("/clubs/weeks", a.createWeek)
	authed.PUT("/clubs/weeks", a.setWeekAttendance)

	authed.GET("/users", a.listUsers)
	adminOnly := authed.Group("", auth.RequireRole(user.RoleAdmin))
	adminOnly.POST("/users", a.createUser)
	adminOnly.PUT("/users", a.updateUser)
	adminOnly.DELETE("/users", a.deleteUser)

	authed.GET("/dashboard", a.dashboardStats)
}
