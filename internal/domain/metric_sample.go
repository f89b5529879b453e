package domain

// MetricSample is one client-reported network-quality measurement for a
// participant (session) in a room. Rows are immutable once stored: there is
// create, read and delete, never update.
type MetricSample struct {
	ID             uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	RoomName       string  `gorm:"column:room_name;not null;index" json:"room_name"`
	SessionID      string  `gorm:"column:session_id;not null;index" json:"session_id"`
	Timestamp      int64   `gorm:"column:timestamp;not null;index" json:"timestamp"`
	SendBPS        float64 `gorm:"column:send_bps;not null" json:"send_bps"`
	RecvBPS        float64 `gorm:"column:recv_bps;not null" json:"recv_bps"`
	SendPacketLoss float64 `gorm:"column:send_packet_loss;not null" json:"send_packet_loss"`
	RecvPacketLoss float64 `gorm:"column:recv_packet_loss;not null" json:"recv_packet_loss"`
}

func (MetricSample) TableName() string { return "metrics" }

// SampleInput is the ingestion payload. Fields are pointers so a missing key
// is distinguishable from a legitimate zero value; unknown keys are dropped by
// the JSON decoder, so nothing a caller sends can reach a column we did not
// intend to write.
type SampleInput struct {
	RoomName       *string  `json:"room_name"`
	SessionID      *string  `json:"session_id"`
	Timestamp      *int64   `json:"timestamp"`
	SendBPS        *float64 `json:"send_bps"`
	RecvBPS        *float64 `json:"recv_bps"`
	SendPacketLoss *float64 `json:"send_packet_loss"`
	RecvPacketLoss *float64 `json:"recv_packet_loss"`
}

// requiredSampleFields fixes the order in which presence is checked; the
// first missing field is the one reported.
var requiredSampleFields = []struct {
	name    string
	present func(*SampleInput) bool
}{
	{"room_name", func(in *SampleInput) bool { return in.RoomName != nil }},
	{"timestamp", func(in *SampleInput) bool { return in.Timestamp != nil }},
	{"session_id", func(in *SampleInput) bool { return in.SessionID != nil }},
	{"send_bps", func(in *SampleInput) bool { return in.SendBPS != nil }},
	{"recv_bps", func(in *SampleInput) bool { return in.RecvBPS != nil }},
	{"send_packet_loss", func(in *SampleInput) bool { return in.SendPacketLoss != nil }},
	{"recv_packet_loss", func(in *SampleInput) bool { return in.RecvPacketLoss != nil }},
}

// MissingField reports the first required field absent from the input, in the
// fixed required-field order, or "" when the input is complete.
func (in *SampleInput) MissingField() string {
	for _, f := range requiredSampleFields {
		if !f.present(in) {
			return f.name
		}
	}
	return ""
}

// Sample converts a complete input into the row to persist. Callers must have
// checked MissingField first; a nil pointer here is a programming error.
func (in *SampleInput) Sample() MetricSample {
	return MetricSample{
		RoomName:       *in.RoomName,
		SessionID:      *in.SessionID,
		Timestamp:      *in.Timestamp,
		SendBPS:        *in.SendBPS,
		RecvBPS:        *in.RecvBPS,
		SendPacketLoss: *in.SendPacketLoss,
		RecvPacketLoss: *in.RecvPacketLoss,
	}
}

// SampleFilter scopes queries and deletes. Only equality on room_name and/or
// session_id exists; both empty means unscoped.
type SampleFilter struct {
	RoomName  string
	SessionID string
}

func (f SampleFilter) IsZero() bool {
	return f.RoomName == "" && f.SessionID == ""
}

// Columns renders the filter as an equality-conjunction map for the store.
func (f SampleFilter) Columns() map[string]interface{} {
	cols := map[string]interface{}{}
	if f.RoomName != "" {
		cols["room_name"] = f.RoomName
	}
	if f.SessionID != "" {
		cols["session_id"] = f.SessionID
	}
	return cols
}

// SampleOrder is an explicit ordering override for queries.
type SampleOrder struct {
	Column string
	Desc   bool
}

func (o SampleOrder) Clause() string {
	dir := "ASC"
	if o.Desc {
		dir = "DESC"
	}
	return o.Column + " " + dir
}

// OrderByTimestamp is the default query ordering.
var OrderByTimestamp = SampleOrder{Column: "timestamp"}
