package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/calldeck/backend/internal/clients/daily"
	"github.com/calldeck/backend/internal/data/repos/metrics"
	"github.com/calldeck/backend/internal/domain"
	"github.com/calldeck/backend/internal/http/response"
	"github.com/calldeck/backend/internal/platform/logger"
)

// RoomHandler proxies room lifecycle calls to the remote rooms API. Deleting
// a room also clears that room's stored samples.
type RoomHandler struct {
	log     *logger.Logger
	rooms   daily.Client
	samples metrics.SampleRepo
}

func NewRoomHandler(log *logger.Logger, rooms daily.Client, samples metrics.SampleRepo) *RoomHandler {
	return &RoomHandler{
		log:     log.With("handler", "RoomHandler"),
		rooms:   rooms,
		samples: samples,
	}
}

func (h *RoomHandler) Get(c *gin.Context) {
	room, err := h.rooms.GetRoom(c.Request.Context(), c.Param("room_name"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.RespondOK(c, room)
}

func (h *RoomHandler) List(c *gin.Context) {
	rooms, err := h.rooms.GetRooms(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.RespondOK(c, rooms)
}

func (h *RoomHandler) Create(c *gin.Context) {
	body, ok := bindRoomBody(c)
	if !ok {
		return
	}
	room, err := h.rooms.CreateRoom(c.Request.Context(), body)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.RespondOK(c, room)
}

func (h *RoomHandler) Modify(c *gin.Context) {
	body, ok := bindRoomBody(c)
	if !ok {
		return
	}
	room, err := h.rooms.ModifyRoom(c.Request.Context(), c.Param("room_name"), body)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.RespondOK(c, room)
}

// Delete removes the remote room, then clears the room's samples. The two
// operations are independent; if cleanup fails after the room is gone we
// surface a partial-failure warning rather than pretending either way.
func (h *RoomHandler) Delete(c *gin.Context) {
	roomName := c.Param("room_name")

	deleted, err := h.rooms.DeleteRoom(c.Request.Context(), roomName)
	if err != nil {
		_ = c.Error(err)
		return
	}

	removed, cleanupErr := h.samples.DeleteBy(c.Request.Context(), domain.SampleFilter{RoomName: roomName})
	if cleanupErr != nil {
		h.log.Warn("room deleted but metrics cleanup failed",
			"room_name", roomName,
			"error", cleanupErr.Error(),
		)
		response.RespondOK(c, gin.H{
			"room":            deleted,
			"metrics_cleanup": "failed",
		})
		return
	}

	response.RespondOK(c, gin.H{
		"room":            deleted,
		"metrics_removed": removed,
	})
}

func bindRoomBody(c *gin.Context) (map[string]interface{}, bool) {
	body := map[string]interface{}{}
	if c.Request.Body != nil && c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			response.RespondError(c, http.StatusBadRequest, err)
			return nil, false
		}
	}
	return body, true
}
