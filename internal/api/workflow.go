package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/sdk/client"

	"github.com/yourorg/csv-loader/internal/types"
	"github.com/yourorg/csv-loader/internal/workflow"
)

type WorkflowHandler struct {
	temporalClient client.Client
	taskQueue      string
}

func NewWorkflowHandler(temporalClient client.Client, taskQueue string) *WorkflowHandler {
	return &WorkflowHandler{temporalClient: temporalClient, taskQueue: taskQueue}
}

type StartWorkflowRequest struct {
	Objects []types.IngestObject `json:"objects" binding:"required,min=1,dive"`
}

type StartWorkflowResponse struct {
	WorkflowID string `json:"workflow_id"`
	RunID      string `json:"run_id"`
}

// StartIngestWorkflow queues the objects for the worker.
func (h *WorkflowHandler) StartIngestWorkflow(c *gin.Context) {
	var req StartWorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	for _, o := range req.Objects {
		if o.Bucket == "" || o.Key == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "every object needs bucket and key"})
			return
		}
	}

	run, err := h.temporalClient.ExecuteWorkflow(
		c.Request.Context(),
		client.StartWorkflowOptions{TaskQueue: h.taskQueue},
		workflow.IngestWorkflow,
		types.IngestWorkflowParams{Objects: req.Objects},
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start workflow: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, StartWorkflowResponse{WorkflowID: run.GetID(), RunID: run.GetRunID()})
}

// GetWorkflowStatus reports a finished workflow's result, or the execution
// status while it is still running.
func (h *WorkflowHandler) GetWorkflowStatus(c *gin.Context) {
	workflowID := c.Param("id")
	describe, err := h.temporalClient.DescribeWorkflowExecution(c.Request.Context(), workflowID, "")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to describe workflow: " + err.Error()})
		return
	}
	info := describe.GetWorkflowExecutionInfo()
	status := info.GetStatus().String()
	if info.GetStatus() != enumspb.WORKFLOW_EXECUTION_STATUS_COMPLETED {
		c.JSON(http.StatusOK, gin.H{
			"workflow_id": workflowID,
			"status":      status,
			"start_time":  info.GetStartTime().AsTime(),
		})
		return
	}

	var result types.IngestWorkflowResult
	if err := h.temporalClient.GetWorkflow(c.Request.Context(), workflowID, "").Get(c.Request.Context(), &result); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"workflow_id": workflowID,
		"status":      status,
		"result":      result,
	})
}
