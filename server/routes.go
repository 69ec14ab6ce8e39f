// Package server exposes a trained circuit over HTTP: structural info,
// batched log-likelihoods with optional marginalisation and soft evidence,
// and conditional sampling.
package server

import (
	"log"
	"math"
	"math/rand/v2"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/katalvlaran/hclt/circuit"
	"github.com/katalvlaran/hclt/matrix"
)

// Handler serves queries against one circuit. Queries never mutate it.
type Handler struct {
	circ *circuit.Circuit
	seed uint64
}

// SetupRouter wires the API routes for c. seed feeds the sampler when a
// request does not carry its own.
func SetupRouter(c *circuit.Circuit, seed uint64) *gin.Engine {
	r := gin.Default()

	// ALLOWED_ORIGINS is a comma-separated list; empty means "*".
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	r.Use(func(ctx *gin.Context) {
		origin := ctx.Request.Header.Get("Origin")
		if allowedOrigins == "" || allowedOrigins == "*" {
			ctx.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		} else {
			for _, allowed := range strings.Split(allowedOrigins, ",") {
				if strings.TrimSpace(allowed) == origin {
					ctx.Writer.Header().Set("Access-Control-Allow-Origin", origin)
					break
				}
			}
		}
		ctx.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, X-Request-ID")
		ctx.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if ctx.Request.Method == http.MethodOptions {
			ctx.AbortWithStatus(http.StatusNoContent)
			return
		}
		ctx.Next()
	})
	r.Use(requestID)

	h := &Handler{circ: c, seed: seed}

	api := r.Group("/api/v1")
	{
		api.GET("/health", h.handleHealth)
		api.GET("/info", h.handleInfo)
		api.POST("/loglikelihood", h.handleLogLikelihood)
		api.POST("/sample", h.handleSample)
	}

	return r
}

// requestID tags every response with X-Request-ID, minting one when absent.
func requestID(c *gin.Context) {
	id := c.GetHeader("X-Request-ID")
	if id == "" {
		id = uuid.New().String()
	}
	c.Set("requestID", id)
	c.Writer.Header().Set("X-Request-ID", id)
	c.Next()
}

// GET /api/v1/health
func (h *Handler) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "device": h.circ.Device})
}

// GET /api/v1/info
// Returns the circuit identity and structural summary.
func (h *Handler) handleInfo(c *gin.Context) {
	s := h.circ.Stats()
	layers := make([]gin.H, len(h.circ.Layers))
	for i, l := range h.circ.Layers {
		layers[i] = gin.H{"kind": l.Kind.String(), "depth": l.Depth, "nodes": l.NumNodes(), "edges": l.NumEdges}
	}
	c.JSON(http.StatusOK, gin.H{
		"id":      h.circ.ID.String(),
		"device":  h.circ.Device,
		"summary": s,
		"layers":  layers,
	})
}

// queryRequest is the body shared by both query endpoints. Missing marks
// entries to marginalise; Alphas holds per-entry soft-evidence weights.
type queryRequest struct {
	Rows    [][]float64 `json:"rows" binding:"required"`
	Missing [][]bool    `json:"missing"`
	Alphas  [][]float64 `json:"alphas"`
	Seed    *uint64     `json:"seed"`
}

func (q *queryRequest) options() ([]circuit.EvalOption, *circuit.Mask, error) {
	var opts []circuit.EvalOption
	mask, err := maskFromRows(q.Missing, len(q.Rows), width(q.Rows))
	if err != nil {
		return nil, nil, err
	}
	if mask != nil {
		opts = append(opts, circuit.WithMissing(mask))
	}
	if q.Alphas != nil {
		alphas, err := matrix.NewDenseRows(q.Alphas)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, circuit.WithAlphas(alphas))
	}

	return opts, mask, nil
}

// width is the width of the first row, or 0 for an empty batch.
func width(rows [][]float64) int {
	if len(rows) == 0 {
		return 0
	}
	return len(rows[0])
}

func maskFromRows(missing [][]bool, rows, cols int) (*circuit.Mask, error) {
	if missing == nil {
		return nil, nil
	}
	if len(missing) != rows {
		return nil, errShape("missing", len(missing), rows)
	}
	m, err := circuit.NewMask(rows, cols)
	if err != nil {
		return nil, err
	}
	for i, row := range missing {
		if len(row) != cols {
			return nil, errShape("missing row", len(row), cols)
		}
		for j, miss := range row {
			m.Set(i, j, miss)
		}
	}

	return m, nil
}

// POST /api/v1/loglikelihood
// Scores each row; entries that underflow to -Inf come back as null.
func (h *Handler) handleLogLikelihood(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	x, err := matrix.NewDenseRows(req.Rows)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	opts, _, err := req.options()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lls, err := h.circ.Forward(x, opts...)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	var mean float64
	for _, ll := range lls {
		mean += ll
	}
	mean /= float64(len(lls))

	c.JSON(http.StatusOK, gin.H{
		"logLikelihoods": finite(lls),
		"mean":           finite([]float64{mean})[0],
	})
}

// POST /api/v1/sample
// Fills the entries marked missing (every entry when absent) with draws
// from the conditional distribution given the rest of the row.
func (h *Handler) handleSample(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	x, err := matrix.NewDenseRows(req.Rows)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	_, mask, err := req.options()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	seed := h.seed
	if req.Seed != nil {
		seed = *req.Seed
	}
	out, err := h.circ.Sample(x, mask, rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	samples := make([][]float64, out.Rows())
	for i := range samples {
		samples[i] = append([]float64(nil), out.RawRow(i)...)
	}
	if id, ok := c.Get("requestID"); ok {
		log.Printf("sample %v: %d rows", id, len(samples))
	}

	c.JSON(http.StatusOK, gin.H{"samples": samples})
}

// finite maps non-finite values to nil so the batch stays JSON-encodable.
func finite(xs []float64) []*float64 {
	out := make([]*float64, len(xs))
	for i := range xs {
		if !math.IsInf(xs[i], 0) && !math.IsNaN(xs[i]) {
			out[i] = &xs[i]
		}
	}

	return out
}
