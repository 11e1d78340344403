package relay

import "github.com/ChadFarrow/5050-sub001/internal/protocol"

// Filter is the query shape the event log understands: match by kind,
// author, id, tag value, with an optional floor timestamp and result
// cap. Results arrive as an unordered batch; ordering is the ledger's
// job.
type Filter struct {
	IDs         []string `json:"ids,omitempty"`
	Kinds       []int    `json:"kinds,omitempty"`
	Authors     []string `json:"authors,omitempty"`
	Coordinates []string `json:"#a,omitempty"`
	DTags       []string `json:"#d,omitempty"`
	EventRefs   []string `json:"#e,omitempty"`
	Since       int64    `json:"since,omitempty"`
	Limit       int      `json:"limit,omitempty"`
}

// Matches applies the filter locally. Used to sanity-check relay
// responses and to query the local event cache with the same
// semantics.
func (f Filter) Matches(ev *protocol.Event) bool {
	if len(f.IDs) > 0 && !contains(f.IDs, ev.ID) {
		return false
	}
	if len(f.Kinds) > 0 && !containsInt(f.Kinds, ev.Kind) {
		return false
	}
	if len(f.Authors) > 0 && !contains(f.Authors, ev.Pubkey) {
		return false
	}
	if f.Since > 0 && ev.CreatedAt < f.Since {
		return false
	}
	if len(f.Coordinates) > 0 && !matchesTag(ev, protocol.TagCoordinate, f.Coordinates) {
		return false
	}
	if len(f.DTags) > 0 && !matchesTag(ev, protocol.TagD, f.DTags) {
		return false
	}
	if len(f.EventRefs) > 0 && !matchesTag(ev, protocol.TagEventRef, f.EventRefs) {
		return false
	}
	return true
}

func matchesTag(ev *protocol.Event, name string, values []string) bool {
	for _, t := range ev.Tags {
		if t.Name() == name && contains(values, t.Value()) {
			return true
		}
	}
	return false
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

func containsInt(values []int, v int) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
