package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/partbridge/partbridge/internal/entities"
	"github.com/partbridge/partbridge/internal/importer"
	"github.com/partbridge/partbridge/internal/inventree"
	"github.com/partbridge/partbridge/internal/suppliers"
)

// PipelineService is the slice of the import pipeline the HTTP layer uses.
type PipelineService interface {
	Preview(ctx context.Context, supplier entities.Supplier, partNumber string) (*entities.ImportPreview, error)
	Import(ctx context.Context, req entities.ImportRequest) (*entities.ImportResult, error)
}

type PreviewRequest struct {
	Supplier   string `json:"supplier" binding:"required,oneof=mouser digikey"`
	PartNumber string `json:"part_number" binding:"required"`
}

type ImportRequestBody struct {
	Supplier   string                  `json:"supplier" binding:"required,oneof=mouser digikey"`
	PartNumber string                  `json:"part_number" binding:"required"`
	Overrides  *entities.PartOverrides `json:"overrides,omitempty"`
}

// ImporterController serves the preview and import operations.
type ImporterController struct {
	pipeline PipelineService
}

func NewImporterController(pipeline PipelineService) ImporterController {
	return ImporterController{pipeline: pipeline}
}

func (controller ImporterController) Preview(c *gin.Context) {
	var req PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.IndentedJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	preview, err := controller.pipeline.Preview(c.Request.Context(), entities.Supplier(req.Supplier), req.PartNumber)
	if err != nil {
		status, body := errorResponse(err)
		c.IndentedJSON(status, body)
		return
	}

	c.IndentedJSON(http.StatusOK, preview)
}

func (controller ImporterController) Import(c *gin.Context) {
	var req ImportRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.IndentedJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := controller.pipeline.Import(c.Request.Context(), entities.ImportRequest{
		Supplier:   entities.Supplier(req.Supplier),
		PartNumber: req.PartNumber,
		Overrides:  req.Overrides,
	})
	if err != nil {
		status, body := errorResponse(err)
		if result != nil {
			body["result"] = result
		}
		c.IndentedJSON(status, body)
		return
	}

	status := http.StatusCreated
	if result.Outcome == entities.OutcomePartial {
		status = http.StatusMultiStatus
	}
	c.IndentedJSON(status, result)
}

// errorResponse maps the pipeline error taxonomy to HTTP statuses. The
// distinction between a configuration problem (500, fix the deployment) and
// a transient outage (502, retry later) is deliberate.
func errorResponse(err error) (int, gin.H) {
	switch {
	case errors.Is(err, suppliers.ErrNotFound):
		return http.StatusNotFound, gin.H{"error": "part not found at supplier"}
	case errors.Is(err, importer.ErrEmptyPartNumber):
		return http.StatusBadRequest, gin.H{"error": err.Error()}
	case importer.IsCategoryNotFound(err):
		return http.StatusUnprocessableEntity, gin.H{"error": err.Error()}
	case suppliers.IsMisconfigured(err), errors.Is(err, inventree.ErrMisconfigured):
		return http.StatusInternalServerError, gin.H{"error": err.Error()}
	case suppliers.IsUnavailable(err):
		return http.StatusBadGateway, gin.H{"error": "supplier temporarily unavailable, retry later", "detail": err.Error()}
	case inventree.IsUnavailable(err):
		return http.StatusBadGateway, gin.H{"error": "destination system temporarily unavailable, retry later", "detail": err.Error()}
	default:
		return http.StatusInternalServerError, gin.H{"error": err.Error()}
	}
}
