package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/calldeck/backend/internal/data/repos/metrics"
	"github.com/calldeck/backend/internal/domain"
	"github.com/calldeck/backend/internal/http/response"
	"github.com/calldeck/backend/internal/platform/logger"
)

// MetricHandler is the JSON surface over the metrics store: ingest one
// sample, list a room's samples, clear a room's samples.
type MetricHandler struct {
	log     *logger.Logger
	samples metrics.SampleRepo
}

func NewMetricHandler(log *logger.Logger, samples metrics.SampleRepo) *MetricHandler {
	return &MetricHandler{
		log:     log.With("handler", "MetricHandler"),
		samples: samples,
	}
}

func (h *MetricHandler) Ingest(c *gin.Context) {
	var in domain.SampleInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if _, err := h.samples.Create(c.Request.Context(), &in); err != nil {
		_ = c.Error(err)
		return
	}
	response.RespondEmpty(c)
}

func (h *MetricHandler) ListByRoom(c *gin.Context) {
	rows, err := h.samples.List(c.Request.Context(),
		domain.SampleFilter{RoomName: c.Param("room_name")}, nil)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.RespondOK(c, rows)
}

func (h *MetricHandler) DeleteByRoom(c *gin.Context) {
	if _, err := h.samples.DeleteBy(c.Request.Context(),
		domain.SampleFilter{RoomName: c.Param("room_name")}); err != nil {
		_ = c.Error(err)
		return
	}
	response.RespondEmpty(c)
}
