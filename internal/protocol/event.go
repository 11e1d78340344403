// Package protocol defines the wire shape of raffle records on the
// append-only event log and the pure validation rules that turn raw
// events into typed records. Everything here is deterministic:
// independent observers of the same event set must reach identical
// conclusions.
package protocol

import "encoding/json"

// Record kinds. Frozen: changing any of these breaks every record
// already published.
const (
	KindCampaign       = 31950
	KindTicketPurchase = 31951
	KindResult         = 31952
	KindDonation       = 31953
	KindPrizeClaim     = 31954
)

// Tag is a name followed by zero or more values.
type Tag []string

func (t Tag) Name() string {
	if len(t) == 0 {
		return ""
	}
	return t[0]
}

func (t Tag) Value() string {
	if len(t) < 2 {
		return ""
	}
	return t[1]
}

// Event is the raw record shape delivered by the event log.
type Event struct {
	ID        string `json:"id"`
	Pubkey    string `json:"pubkey"`
	CreatedAt int64  `json:"created_at"`
	Kind      int    `json:"kind"`
	Tags      []Tag  `json:"tags"`
	Content   string `json:"content"`
	Sig       string `json:"sig"`
}

// TagValue returns the value of the first tag with the given name.
func (e *Event) TagValue(name string) (string, bool) {
	for _, t := range e.Tags {
		if t.Name() == name {
			return t.Value(), true
		}
	}
	return "", false
}

// HasTag reports whether any tag with the given name is present.
func (e *Event) HasTag(name string) bool {
	_, ok := e.TagValue(name)
	return ok
}

// Marshal renders the event as relay-ready JSON.
func (e *Event) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// Unmarshal parses relay JSON into an event.
func Unmarshal(data []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}

// Less defines the protocol's total order over events: created_at
// ascending, ties broken by lexicographic id. This ordering is what
// makes ticket assignment reproducible across observers that received
// the same events in different arrival order.
func Less(a, b *Event) bool {
	if a.CreatedAt != b.CreatedAt {
		return a.CreatedAt < b.CreatedAt
	}
	return a.ID < b.ID
}
