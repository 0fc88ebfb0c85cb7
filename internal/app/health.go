package app

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const healthCheckTimeout = 2 * time.Second

// HealthChecker probes the stores both halves of the auth flow depend on:
// Postgres for accounts, Redis for profiles and reset tokens.
type HealthChecker struct {
	infra Infrastructure
}

func NewHealthChecker(infra Infrastructure) *HealthChecker {
	return &HealthChecker{
		infra: infra,
	}
}

func (h *HealthChecker) check(ctx context.Context) map[string]error {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	type result struct {
		name string
		err  error
	}

	results := make(chan result, 2)

	go func() {
		results <- result{"postgres", h.infra.Postgres().Ping(ctx)}
	}()

	go func() {
		results <- result{"redis", h.infra.Redis().Ping(ctx)}
	}()

	checks := make(map[string]error, 2)
	for i := 0; i < 2; i++ {
		r := <-results
		checks[r.name] = r.err
	}
	return checks
}

func (h *HealthChecker) Handler(c *gin.Context) {
	body := gin.H{"status": "pass"}
	status := http.StatusOK

	for name, err := range h.check(c.Request.Context()) {
		if err != nil {
			body[name] = err.Error()
			body["status"] = "fail"
			status = http.StatusServiceUnavailable
		} else {
			body[name] = "pass"
		}
	}

	c.JSON(status, body)
}
