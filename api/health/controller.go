package health

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"workshop/config"

	"github.com/gin-gonic/gin"
)

const checkTimeout = 2 * time.Second

// Pinger is satisfied by *sql.DB. A nil Pinger means in-memory storage.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Controller struct {
	cfg     *config.Config
	db      Pinger
	started time.Time
}

func NewController(cfg *config.Config, db Pinger) *Controller {
	return &Controller{cfg: cfg, db: db, started: time.Now()}
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/health", c.Health)
	router.GET("/health/live", c.Liveness)
	router.GET("/health/ready", c.Readiness)
}

type HealthResponse struct {
	Status    string           `json:"status"`
	Version   string           `json:"version"`
	Storage   string           `json:"storage"`
	Uptime    string           `json:"uptime"`
	Timestamp time.Time        `json:"timestamp"`
	Checks    map[string]Check `json:"checks,omitempty"`
	Runtime   *RuntimeInfo     `json:"runtime,omitempty"`
}

type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// RuntimeInfo is reported in development only.
type RuntimeInfo struct {
	GoVersion  string `json:"go_version"`
	Goroutines int    `json:"goroutines"`
	HeapBytes  uint64 `json:"heap_bytes"`
}

func (c *Controller) Health(ctx *gin.Context) {
	checks, ok := c.checkDeps(ctx.Request.Context())

	resp := HealthResponse{
		Status:    "healthy",
		Version:   c.cfg.App.Version,
		Storage:   c.cfg.Database.Type,
		Uptime:    time.Since(c.started).Round(time.Second).String(),
		Timestamp: time.Now().UTC(),
		Checks:    checks,
	}
	if c.cfg.IsDevelopment() {
		var ms runtime.MemStats
		runtime.ReadMemStats(&ms)
		resp.Runtime = &RuntimeInfo{GoVersion: runtime.Version(), Goroutines: runtime.NumGoroutine(), HeapBytes: ms.HeapAlloc}
	}

	code := http.StatusOK
	if !ok {
		resp.Status = "unhealthy"
		code = http.StatusServiceUnavailable
	}
	ctx.JSON(code, resp)
}

func (c *Controller) Liveness(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "alive"})
}

func (c *Controller) Readiness(ctx *gin.Context) {
	if _, ok := c.checkDeps(ctx.Request.Context()); !ok {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "message": "storage not available"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// checkDeps pings every dependency. Memory storage has nothing to ping.
func (c *Controller) checkDeps(ctx context.Context) (map[string]Check, bool) {
	if c.db == nil {
		return nil, true
	}

	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	begin := time.Now()
	err := c.db.PingContext(ctx)
	check := Check{Status: "healthy", Latency: time.Since(begin).String()}
	if err != nil {
		check.Status, check.Message = "unhealthy", err.Error()
	}
	return map[string]Check{"database": check}, err == nil
}
