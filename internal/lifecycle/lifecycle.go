// Package lifecycle derives a campaign's state from its record set.
// Nothing is stored: every observer recomputes the same classification
// from the same records plus the clock.
package lifecycle

import (
	"time"

	"github.com/ChadFarrow/5050-sub001/internal/protocol"
)

// State is the derived lifecycle classification.
type State string

const (
	StateActive             State = "ACTIVE"
	StateEndedUndrawn       State = "ENDED_UNDRAWN"
	StateDrawnUnclaimed     State = "DRAWN_UNCLAIMED"
	StateDrawnClaimedUnpaid State = "DRAWN_CLAIMED_UNPAID"
	StateComplete           State = "COMPLETE"
)

// Derive classifies a campaign. The claim must already be the
// authoritative one (ledger.SelectClaim): a claim by anyone but the
// recorded winner never advances the state.
//
// COMPLETE is terminal: once the result carries a completion marker,
// later purchases or claims cannot move the state back.
func Derive(campaign *protocol.Campaign, result *protocol.Result, claim *protocol.PrizeClaim, now time.Time) State {
	if result != nil {
		if result.ManualCompleted > 0 || result.PayoutConfirmed > 0 {
			return StateComplete
		}
		if claim != nil && claim.ResultID == result.ID && claim.Claimant == result.WinnerPubkey {
			return StateDrawnClaimedUnpaid
		}
		return StateDrawnUnclaimed
	}

	if campaign == nil {
		return StateActive
	}

	// Manual-draw campaigns stay open past the end date until the
	// creator triggers the draw; only auto-draw campaigns become
	// ENDED_UNDRAWN on the clock.
	if !campaign.ManualDraw && now.Unix() > campaign.EndDate {
		return StateEndedUndrawn
	}
	return StateActive
}

// ReadyForAutoDraw reports whether an oracle should draw this campaign
// now: past its end date, not creator-drawn, and not yet drawn.
func ReadyForAutoDraw(campaign *protocol.Campaign, result *protocol.Result, now time.Time) bool {
	if campaign == nil || campaign.ManualDraw || result != nil {
		return false
	}
	return now.Unix() > campaign.EndDate
}
