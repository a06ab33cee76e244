package routes

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"rsvpapp/middlewares"
	"rsvpapp/models"
	"rsvpapp/utils"
)

// Mirror is the attendance mirror as the handlers see it: fire-and-forget
// scheduling only, no errors to propagate.
type Mirror interface {
	ScheduleWorkspace(eventID int64, title string)
	ScheduleRefresh(eventID int64, title string)
}

type deps struct {
	users   models.UserRepository
	events  models.EventRepository
	rsvps   models.RSVPRepository
	guests  models.GuestRepository
	inv     *utils.CacheInvalidator
	mirror  Mirror
	started time.Time
}

// RegisterRoutes wires every endpoint with its middleware chain. The
// repositories, Redis client, invalidator and mirror are injected by main.
func RegisterRoutes(
	server *gin.Engine,
	u models.UserRepository,
	e models.EventRepository,
	r models.RSVPRepository,
	g models.GuestRepository,
	rdb *redis.Client,
	inv *utils.CacheInvalidator,
	m Mirror,
) {
	d := &deps{users: u, events: e, rsvps: r, guests: g, inv: inv, mirror: m, started: time.Now()}

	// Global per-IP limit.
	globalLimiter := middlewares.NewRateLimiter(middlewares.LimiterConfig{
		RPS:     20,
		Burst:   40,
		IdleTTL: 3 * time.Minute,
	})
	server.Use(globalLimiter.Middleware(func(c *gin.Context) string {
		return "ip:" + c.ClientIP()
	}))

	// Behind the limiter: cached reads still spend a token.
	server.Use(middlewares.ResponseCache(rdb, 30*time.Second))

	server.GET("/healthz", d.health)

	// Stricter limit on credential endpoints.
	authLimiter := middlewares.NewRateLimiter(middlewares.LimiterConfig{
		RPS:     0.5,
		Burst:   2,
		IdleTTL: 10 * time.Minute,
	})
	server.POST("/signup",
		authLimiter.Middleware(func(c *gin.Context) string { return "signup:" + c.ClientIP() }),
		d.signup,
	)
	server.POST("/login",
		authLimiter.Middleware(func(c *gin.Context) string { return "login:" + c.ClientIP() }),
		d.login,
	)

	// Public endpoints. Guest RSVPs need no identity.
	server.GET("/events", d.getEvents)
	server.GET("/events/:id", d.getEvent)
	server.POST("/rsvp/guest", d.submitGuestRSVP)

	// Authenticated group: per-user burst limit plus a daily quota.
	auth := server.Group("/")
	auth.Use(middlewares.Authenticate)

	userLimiter := middlewares.NewRateLimiter(middlewares.LimiterConfig{
		RPS:     5,
		Burst:   10,
		IdleTTL: 10 * time.Minute,
	})
	auth.Use(userLimiter.Middleware(func(c *gin.Context) string {
		return "u:" + strconv.FormatInt(c.GetInt64("userId"), 10)
	}))

	auth.Use(middlewares.Quota(rdb, middlewares.QuotaRule{
		Limit:  2000,
		Window: 24 * time.Hour,
		KeyFn: func(c *gin.Context) string {
			uid := c.GetInt64("userId")
			if uid == 0 {
				return ""
			}
			return fmt.Sprintf("quota:user:%d:day", uid)
		},
	}))

	auth.POST("/events", d.createEvent)
	auth.GET("/events/my-events", d.myEvents)
	auth.PUT("/events/:id", d.updateEvent)
	auth.DELETE("/events/:id", d.deleteEvent)

	auth.POST("/rsvp/submit", d.submitRSVP)
	auth.GET("/rsvp/my-rsvps", d.myRSVPs)
	auth.GET("/rsvp/event/:eventId", d.eventRSVPs)
	auth.PUT("/rsvp/:rsvpId", d.moderateRSVP)
}

// GET /healthz
func (d *deps) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "OK",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(d.started).Seconds(),
	})
}
