package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/partbridge/partbridge/internal/database"
)

type HealthResponse struct {
	Status          string            `json:"status"`
	Time            string            `json:"time"`
	Version         string            `json:"version,omitempty"`
	DefaultCurrency string            `json:"default_currency"`
	DefaultCountry  string            `json:"default_country"`
	Checks          map[string]string `json:"checks"`
}

type HealthController struct {
	db              *database.Database
	version         string
	defaultCurrency string
	defaultCountry  string
}

func NewHealthController(db *database.Database, version, defaultCurrency, defaultCountry string) *HealthController {
	return &HealthController{
		db:              db,
		version:         version,
		defaultCurrency: defaultCurrency,
		defaultCountry:  defaultCountry,
	}
}

func (h *HealthController) Status(c *gin.Context) {
	checks := make(map[string]string)
	status := "healthy"

	if h.db != nil {
		sqlDB, err := h.db.DB.DB()
		if err != nil {
			checks["database"] = "error: " + err.Error()
			status = "unhealthy"
		} else if err := sqlDB.Ping(); err != nil {
			checks["database"] = "error: " + err.Error()
			status = "unhealthy"
		} else {
			checks["database"] = "ok"
		}
	} else {
		checks["database"] = "not configured"
	}

	health := HealthResponse{
		Status:          status,
		Time:            time.Now().Format(time.RFC3339),
		Version:         h.version,
		DefaultCurrency: h.defaultCurrency,
		DefaultCountry:  h.defaultCountry,
		Checks:          checks,
	}

	statusCode := http.StatusOK
	if status != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.IndentedJSON(statusCode, health)
}
