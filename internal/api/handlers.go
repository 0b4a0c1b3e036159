// internal/api/handlers.go
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"betfunnels-copy/internal/common/auth"
	"betfunnels-copy/internal/common/errors"
	"betfunnels-copy/internal/common/logger"
	"betfunnels-copy/internal/common/metrics"
	"betfunnels-copy/internal/common/validation"
	"betfunnels-copy/internal/models"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

type Generator interface {
	Generate(ctx context.Context, spec *models.FunnelSpec) (*models.GenerationResult, error)
}

type CasinoSearcher interface {
	SearchCasinoNames(ctx context.Context, query string, limit int) ([]string, error)
}

// AttemptLimiter throttles password guesses per client.
type AttemptLimiter interface {
	Allow(ctx context.Context, clientID string) (bool, time.Duration, error)
	RecordFailure(ctx context.Context, clientID string) (int64, error)
	Reset(ctx context.Context, clientID string) error
}

// Pinger is a dependency checked by /ready.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	generator   Generator
	casinos     CasinoSearcher
	gate        *auth.PasswordGate
	limiter     AttemptLimiter
	readiness   map[string]Pinger
	dayCount    int
	searchLimit int
}

func (h *Handler) GenerateCopy(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		respondError(c, errors.NewBadRequestError(err.Error()))
		return
	}

	schemaResult, err := validation.ValidateDocument(raw)
	if err != nil {
		respondError(c, errors.NewBadRequestError(err.Error()))
		return
	}
	if !schemaResult.Valid {
		respondError(c, schemaResult.AsError(true))
		return
	}

	var spec models.FunnelSpec
	if err := json.Unmarshal(raw, &spec); err != nil {
		respondError(c, errors.NewBadRequestError(err.Error()))
		return
	}
	spec.Normalize(h.dayCount)

	if res := validation.ValidateSpec(&spec, h.dayCount); !res.Valid {
		respondError(c, res.AsError(false))
		return
	}

	result, err := h.generator.Generate(c.Request.Context(), &spec)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, gin.H{
		"copyAll": result.CopyAll,
		"casino":  result.MatchedCasino,
	})
}

type searchRequest struct {
	Query string `json:"query"`
}

// SearchCasinos backs the casino combobox. A missing or unreadable body is
// an empty query.
func (h *Handler) SearchCasinos(c *gin.Context) {
	var req searchRequest
	_ = c.ShouldBindJSON(&req)

	options, err := h.casinos.SearchCasinoNames(c.Request.Context(), strings.TrimSpace(req.Query), h.searchLimit)
	if err != nil {
		stdErr := errors.Normalize(err)
		stdErr.Message = "Falha ao buscar cassinos."
		respondError(c, stdErr)
		return
	}
	respondOK(c, gin.H{"options": options})
}

type passwordRequest struct {
	Password string `json:"password"`
}

func (h *Handler) CheckPassword(c *gin.Context) {
	ctx := c.Request.Context()
	log := logger.FromContext(ctx, logger.NewNoOpLogger())
	clientID := c.ClientIP()

	if !h.gate.Configured() {
		respondError(c, h.gate.Check(""))
		return
	}

	allowed, retryAfter, err := h.limiter.Allow(ctx, clientID)
	if err != nil {
		log.Warn("attempt limiter unavailable", map[string]interface{}{"error": err})
	}
	if !allowed {
		c.Header("Retry-After", formatSeconds(retryAfter))
		respondError(c, errors.NewTooManyAttemptsError(retryAfter))
		return
	}

	var req passwordRequest
	_ = c.ShouldBindJSON(&req)

	if err := h.gate.Check(req.Password); err != nil {
		metrics.PasswordFailures.Inc()
		if count, err := h.limiter.RecordFailure(ctx, clientID); err != nil {
			log.Warn("failed to record password attempt", map[string]interface{}{"error": err})
		} else {
			log.Warn("invalid password attempt", map[string]interface{}{"attempts": count})
		}
		stdErr := errors.Normalize(err)
		stdErr.Message = "Senha inválida."
		respondError(c, stdErr)
		return
	}

	if err := h.limiter.Reset(ctx, clientID); err != nil {
		log.Warn("failed to reset password attempts", map[string]interface{}{"error": err})
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (h *Handler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	var mu sync.Mutex
	checks := gin.H{}
	healthy := true

	// Pings run concurrently; a failure never cancels the others.
	var g errgroup.Group
	for name, p := range h.readiness {
		name, p := name, p
		g.Go(func() error {
			result := "ok"
			if err := p.Ping(ctx); err != nil {
				result = err.Error()
			}
			mu.Lock()
			defer mu.Unlock()
			checks[name] = result
			if result != "ok" {
				healthy = false
			}
			return nil
		})
	}
	_ = g.Wait()

	status, state := http.StatusOK, "ready"
	if !healthy {
		status, state = http.StatusServiceUnavailable, "not_ready"
	}
	c.JSON(status, gin.H{
		"status": state,
		"checks": checks,
		"time":   time.Now().Format(time.RFC3339),
	})
}

func formatSeconds(d time.Duration) string {
	secs := int(d.Seconds())
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}
