package agentstate

import (
	"encoding/json"
	"time"

	"github.com/agentcore/agentcore/message"
)

// wireState is the on-wire shape persisted by a Checkpointer.
type wireState struct {
	Messages  []message.Message `json:"messages"`
	Data      map[string]any    `json:"data"`
	Version   int64             `json:"version"`
	CreatedAt time.Time         `json:"createdAt"`
}

// MarshalJSON encodes the full snapshot (messages, data, version, createdAt)
// so Checkpointer implementations can persist it verbatim.
func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireState{
		Messages:  s.messages,
		Data:      s.data,
		Version:   s.version,
		CreatedAt: s.createdAt,
	})
}

// UnmarshalJSON decodes a previously-persisted snapshot.
func (s *State) UnmarshalJSON(data []byte) error {
	var w wireState
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.Data == nil {
		w.Data = map[string]any{}
	}
	*s = State{
		messages:  w.Messages,
		data:      w.Data,
		version:   w.Version,
		createdAt: w.CreatedAt,
	}
	return nil
}
