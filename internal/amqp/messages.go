package amqp

import (
	"time"

	"github.com/goccy/go-json"

	"anggaran/internal/core"
)

// RoutingKeyRun is the routing key of pipeline run events.
const RoutingKeyRun = "pipeline.run"

// RunEvent summarizes one pipeline run for downstream consumers. It never
// carries credentials.
type RunEvent struct {
	RunID     string        `json:"run_id"`
	Mode      core.Mode     `json:"mode"`
	Requested bool          `json:"external_requested"`
	Fallback  bool          `json:"fallback"`
	Driver    string        `json:"driver,omitempty"`
	Address   string        `json:"address,omitempty"`
	Rows      int           `json:"rows"`
	Filtered  int           `json:"filtered"`
	Notices   []core.Notice `json:"notices,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

func (e *RunEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func RunEventFromJSON(data []byte) (*RunEvent, error) {
	var e RunEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
