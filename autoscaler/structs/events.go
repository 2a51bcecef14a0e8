package structs

import "time"

// Scale actions a ResizeEvent can record.
const (
	ActionNothing   = "nothing"
	ActionScaleIn   = "scale_in"
	ActionScaleOut  = "scale_out"
)

// ResizeEvent is the append-only audit trail of every reconciliation
// decision, whether or not it resulted in an EMR mutation (spec §3).
type ResizeEvent struct {
	ID              string    `gorm:"primaryKey" json:"id"`
	ClusterID       string    `gorm:"index" json:"cluster_id"`
	EventTime       time.Time `json:"event_time"`
	Action          string    `json:"action"`
	CurrentMaxUnits int       `json:"current_max_units"`
	TargetMaxUnits  int       `json:"target_max_units"`
	IsResizing      bool      `json:"is_resizing"`
	IsCoolingDown   bool      `json:"is_cooling_down"`
	DataJSON        []byte    `gorm:"column:data" json:"data"`
}

// QueueEvent is one inbound cluster-lifecycle event mirrored from the
// event bus (spec §6). Persisted verbatim in RawMessage.
type QueueEvent struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ClusterID  string    `gorm:"index" json:"cluster_id"`
	DetailType string    `json:"detail_type"`
	Source     string    `json:"source"`
	State      string    `json:"state"`
	Message    string    `json:"message"`
	EventTime  time.Time `json:"event_time"`
	CreateTime time.Time `json:"create_time"`
	RawMessage []byte    `gorm:"column:raw_message" json:"raw_message"`
}
