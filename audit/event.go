package audit

import (
	"fmt"
	"time"
)

// Event is one row of the backend's authentication audit trail. The
// client only ever reads these; the backend produces them.
type Event struct {
	EventType   string         `json:"event_type"`
	Username    string         `json:"username"`
	IPAddress   string         `json:"ip_address"`
	Description string         `json:"description"`
	CreatedAt   time.Time      `json:"created_at"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// DisplayString renders the event for log-style listings.
func (e Event) DisplayString() string {
	return fmt.Sprintf("%s  %-24s %-16s %s  %s",
		e.CreatedAt.Format(time.RFC3339), e.EventType, e.IPAddress, e.Username, e.Description)
}
