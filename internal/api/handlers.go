package api

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yourorg/csv-loader/internal/ingest"
)

type Handler struct {
	ing     *ingest.Ingester
	inspect *ingest.Inspector
}

func NewHandler(ing *ingest.Ingester, inspect *ingest.Inspector) *Handler {
	return &Handler{ing: ing, inspect: inspect}
}

type IngestRequest struct {
	Bucket string `json:"bucket" binding:"required"`
	Key    string `json:"key" binding:"required"`
}

type IngestResponse struct {
	Kind    ingest.Kind `json:"kind"`
	Body    string      `json:"body"`
	Rows    int         `json:"rows"`
	Dropped int         `json:"dropped"`
	Written int         `json:"written"`
}

// Ingest loads one object synchronously and answers with the outcome's
// status code.
func (h *Handler) Ingest(c *gin.Context) {
	var req IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	o := h.ing.Run(c.Request.Context(), req.Bucket, req.Key)
	c.JSON(o.StatusCode, IngestResponse{
		Kind:    o.Kind,
		Body:    o.Body,
		Rows:    o.Rows,
		Dropped: o.Dropped,
		Written: o.Written,
	})
}

// Records streams the table as JSON lines.
func (h *Handler) Records(c *gin.Context) {
	limit := 0
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = n
	}
	var buf bytes.Buffer
	if _, err := h.inspect.Dump(c.Request.Context(), &buf, limit); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "application/x-ndjson", buf.Bytes())
}
