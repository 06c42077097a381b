package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/scalara/backend/internal/domain/ledger"
	"github.com/scalara/backend/internal/pipeline"
)

type PipelineRunner interface {
	Run(ctx context.Context, level pipeline.Stage) (*pipeline.Report, error)
}

type CheckpointReader interface {
	Latest(ctx context.Context) (*ledger.Checkpoint, error)
}

type ProcessHandler struct {
	runner      PipelineRunner
	checkpoints CheckpointReader
	logger      *slog.Logger
}

func NewProcessHandler(runner PipelineRunner, checkpoints CheckpointReader, logger *slog.Logger) *ProcessHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProcessHandler{runner: runner, checkpoints: checkpoints, logger: logger}
}

// triggerRequest accepts the stage under process_id or the older processId
// key; process_id wins when both are sent.
type triggerRequest struct {
	ProcessID       string `json:"process_id" binding:"omitempty,oneof=1 2 3"`
	LegacyProcessID string `json:"processId" binding:"omitempty,oneof=1 2 3"`
}

func (r triggerRequest) stage() string {
	if r.ProcessID != "" {
		return r.ProcessID
	}
	return r.LegacyProcessID
}

// Trigger runs the pipeline up to the requested stage before answering. The
// body only says whether the run succeeded; the report goes to the logs and
// the run channel. The run outlives a dropped client.
func (h *ProcessHandler) Trigger(c *gin.Context) {
	var req triggerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_process_id"})
		return
	}
	level, err := pipeline.ParseStage(req.stage())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_process_id"})
		return
	}

	report, err := h.runner.Run(context.WithoutCancel(c.Request.Context()), level)
	if err != nil {
		attrs := []any{"level", int(level), "err", err}
		if report != nil {
			attrs = append(attrs, "run_id", report.RunID)
		}
		h.logger.Error("triggered pipeline run failed", attrs...)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "process_failed"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"ok": true})
}

func (h *ProcessHandler) LastCheckpoint(c *gin.Context) {
	cp, err := h.checkpoints.Latest(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "checkpoint_lookup_failed"})
		return
	}
	if cp == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no_checkpoint"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":              cp.ID,
		"executed_at":     cp.ExecutedAt,
		"processed_count": cp.ProcessedCount,
		"start_loaded_at": cp.StartLoadedAt,
		"end_loaded_at":   cp.EndLoadedAt,
	})
}
