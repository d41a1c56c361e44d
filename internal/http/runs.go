package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/partbridge/partbridge/internal/database/runs"
)

// RunsController exposes the import-run audit trail.
type RunsController struct {
	repo *runs.Repository
}

func NewRunsController(repo *runs.Repository) RunsController {
	return RunsController{repo: repo}
}

func (controller RunsController) List(c *gin.Context) {
	if controller.repo == nil {
		c.IndentedJSON(http.StatusNotImplemented, gin.H{"error": "audit trail is disabled"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	items, total, err := controller.repo.GetRuns(limit, offset)
	if err != nil {
		c.IndentedJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.IndentedJSON(http.StatusOK, gin.H{
		"total": total,
		"runs":  items,
	})
}
