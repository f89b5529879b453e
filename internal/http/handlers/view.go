package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/calldeck/backend/internal/clients/daily"
	"github.com/calldeck/backend/internal/data/repos/metrics"
	"github.com/calldeck/backend/internal/domain"
	"github.com/calldeck/backend/internal/platform/logger"
)

// ViewHandler renders the server-side dashboard pages. It owns no business
// logic beyond shaping what the templates receive.
type ViewHandler struct {
	log     *logger.Logger
	rooms   daily.Client
	samples metrics.SampleRepo
}

func NewViewHandler(log *logger.Logger, rooms daily.Client, samples metrics.SampleRepo) *ViewHandler {
	return &ViewHandler{
		log:     log.With("handler", "ViewHandler"),
		rooms:   rooms,
		samples: samples,
	}
}

func (h *ViewHandler) Dashboard(c *gin.Context) {
	rooms, err := h.rooms.GetRooms(c.Request.Context(), nil)
	if err != nil {
		h.log.Warn("dashboard room listing failed", "error", err.Error())
		// The page still renders; it just shows no rooms.
	}
	c.HTML(http.StatusOK, "dashboard.html", gin.H{
		"Rooms": rooms,
	})
}

func (h *ViewHandler) Call(c *gin.Context) {
	room, err := h.rooms.GetRoom(c.Request.Context(), c.Param("room_name"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.HTML(http.StatusOK, "call.html", gin.H{
		"Room": room,
	})
}

// Metrics needs the room (remote) and its samples (local); the two fetches
// are independent so they run concurrently.
func (h *ViewHandler) Metrics(c *gin.Context) {
	roomName := c.Param("room_name")

	var (
		room    *domain.Room
		samples []domain.MetricSample
	)
	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		var err error
		room, err = h.rooms.GetRoom(ctx, roomName)
		return err
	})
	g.Go(func() error {
		var err error
		samples, err = h.samples.List(ctx, domain.SampleFilter{RoomName: roomName}, nil)
		return err
	})
	if err := g.Wait(); err != nil {
		_ = c.Error(err)
		return
	}

	c.HTML(http.StatusOK, "metrics.html", gin.H{
		"RoomName": roomName,
		"Room":     room,
		"Samples":  samples,
	})
}
