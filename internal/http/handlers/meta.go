package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/scalara/backend/internal/pipeline"
)

type stageInfo struct {
	Level int    `json:"level"`
	Name  string `json:"name"`
}

type MetaHandler struct {
	env     string
	version string
	stages  []stageInfo
}

func NewMetaHandler(env, version string) *MetaHandler {
	stages := make([]stageInfo, 0, len(pipeline.Stages()))
	for _, st := range pipeline.Stages() {
		stages = append(stages, stageInfo{Level: int(st), Name: st.String()})
	}
	return &MetaHandler{env: env, version: version, stages: stages}
}

// GetMeta describes the service and the stages a trigger can run up to.
func (h *MetaHandler) GetMeta(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":    "Scalara Pipeline",
		"version": h.version,
		"env":     h.env,
		"stages":  h.stages,
	})
}
