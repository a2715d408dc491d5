package api

import (
	"github.com/gin-gonic/gin"
	"go.temporal.io/sdk/client"
)

// Register mounts the API under /api/v1. Workflow routes are only added
// when a Temporal client is available.
func Register(r *gin.Engine, h *Handler, temporalClient client.Client, taskQueue string) {
	apiV1 := r.Group("/api/v1")
	apiV1.POST("/ingest", h.Ingest)
	apiV1.GET("/records", h.Records)
	if temporalClient != nil {
		wh := NewWorkflowHandler(temporalClient, taskQueue)
		apiV1.POST("/workflows/ingest", wh.StartIngestWorkflow)
		apiV1.GET("/workflows/:id/status", wh.GetWorkflowStatus)
	}
}
