package domain

import "encoding/json"

// Room is a passthrough of the remote rooms-API resource. We never own or
// persist it; only Name is inspected locally, to scope metrics cleanup when
// a room is deleted. Config stays raw so unknown provider settings survive
// the round trip untouched.
type Room struct {
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name,omitempty"`
	URL       string          `json:"url,omitempty"`
	Privacy   string          `json:"privacy,omitempty"`
	CreatedAt string          `json:"created_at,omitempty"`
	Config    json.RawMessage `json:"config,omitempty"`
}

// RoomList is the remote list-rooms response envelope; Data is the part
// callers actually want.
type RoomList struct {
	TotalCount int    `json:"total_count"`
	Data       []Room `json:"data"`
}

// DeletedRoom is the remote delete-room acknowledgement.
type DeletedRoom struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name,omitempty"`
	Deleted bool   `json:"deleted,omitempty"`
}
