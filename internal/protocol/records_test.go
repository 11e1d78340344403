package protocol

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testCreator    = strings.Repeat("3f", 32)
	testBuyer      = strings.Repeat("e1", 32)
	testCoordinate = "31950:" + testCreator + ":ep-42"
)

func campaignEvent() *Event {
	return &Event{
		ID:        "campaign-1",
		Pubkey:    testCreator,
		CreatedAt: 1750000000,
		Kind:      KindCampaign,
		Tags: []Tag{
			{TagD, "ep-42"},
			{TagTitle, "Episode 42 Raffle"},
			{TagDescription, "weekly 50/50"},
			{TagTargetAmount, "500000"},
			{TagTicketPrice, "10000"},
			{TagEndDate, "1760000000"},
			{TagPodcastName, "Podcasting 2.0"},
		},
		Content: "Support the show!",
	}
}

func purchaseEvent() *Event {
	return &Event{
		ID:        "purchase-1",
		Pubkey:    testBuyer,
		CreatedAt: 1750000100,
		Kind:      KindTicketPurchase,
		Tags: []Tag{
			{TagCoordinate, testCoordinate},
			{TagPurchaseID, "p-001"},
			{TagAmount, "30000"},
			{TagTickets, "3"},
			{TagInvoice, "lnbc300n1invoice"},
			{TagPaymentHash, strings.Repeat("ab", 32)},
		},
		Content: "good luck everyone",
	}
}

func setTag(ev *Event, name, value string) {
	for i, t := range ev.Tags {
		if t.Name() == name {
			ev.Tags[i] = Tag{name, value}
			return
		}
	}
	ev.Tags = append(ev.Tags, Tag{name, value})
}

func dropTag(ev *Event, name string) {
	var tags []Tag
	for _, t := range ev.Tags {
		if t.Name() != name {
			tags = append(tags, t)
		}
	}
	ev.Tags = tags
}

func TestParseCampaign(t *testing.T) {
	c, err := ParseCampaign(campaignEvent())
	require.NoError(t, err)
	assert.Equal(t, "ep-42", c.DTag)
	assert.Equal(t, int64(10000), c.TicketPrice)
	assert.Equal(t, int64(1760000000), c.EndDate)
	assert.False(t, c.ManualDraw)
	assert.False(t, c.IsDeletion())
	assert.Equal(t, testCoordinate, c.Coordinate().String())
}

func TestParseCampaignManualDraw(t *testing.T) {
	ev := campaignEvent()
	setTag(ev, TagManualDraw, "true")
	c, err := ParseCampaign(ev)
	require.NoError(t, err)
	assert.True(t, c.ManualDraw)
}

func TestParseCampaignRejects(t *testing.T) {
	cases := map[string]func(*Event){
		"wrong kind":         func(ev *Event) { ev.Kind = KindDonation },
		"missing d":          func(ev *Event) { dropTag(ev, TagD) },
		"missing title":      func(ev *Event) { dropTag(ev, TagTitle) },
		"zero ticket price":  func(ev *Event) { setTag(ev, TagTicketPrice, "0") },
		"negative price":     func(ev *Event) { setTag(ev, TagTicketPrice, "-100") },
		"zero end date":      func(ev *Event) { setTag(ev, TagEndDate, "0") },
		"non-numeric price":  func(ev *Event) { setTag(ev, TagTicketPrice, "cheap") },
		"missing podcast":    func(ev *Event) { dropTag(ev, TagPodcastName) },
		"negative target":    func(ev *Event) { setTag(ev, TagTargetAmount, "-1") },
		"missing end date":   func(ev *Event) { dropTag(ev, TagEndDate) },
		"empty title":        func(ev *Event) { setTag(ev, TagTitle, "") },
		"missing target":     func(ev *Event) { dropTag(ev, TagTargetAmount) },
		"missing desc":       func(ev *Event) { dropTag(ev, TagDescription) },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			ev := campaignEvent()
			mutate(ev)
			_, err := ParseCampaign(ev)
			assert.Error(t, err)
		})
	}
}

func TestParseCampaignDeletion(t *testing.T) {
	ev := &Event{
		ID:        "campaign-2",
		Pubkey:    testCreator,
		CreatedAt: 1750001000,
		Kind:      KindCampaign,
		Tags:      []Tag{{TagD, "ep-42"}, {TagDeleted, "1750001000"}},
	}
	c, err := ParseCampaign(ev)
	require.NoError(t, err)
	assert.True(t, c.IsDeletion())
	assert.Equal(t, int64(1750001000), c.DeletedAt)

	// a deleted marker with content is not a deletion amendment, and
	// fails as an ordinary declaration lacking required fields
	ev.Content = "still here"
	_, err = ParseCampaign(ev)
	assert.Error(t, err)
}

func TestParseTicketPurchase(t *testing.T) {
	p, err := ParseTicketPurchase(purchaseEvent())
	require.NoError(t, err)
	assert.Equal(t, int64(30000), p.AmountPaid)
	assert.Equal(t, int64(3), p.TicketCount)
	assert.Equal(t, "ep-42", p.Campaign.DTag)
	assert.Equal(t, "good luck everyone", p.Message)
}

func TestParseTicketPurchaseRejects(t *testing.T) {
	cases := map[string]func(*Event){
		"missing payment_hash": func(ev *Event) { dropTag(ev, TagPaymentHash) },
		"zero tickets":         func(ev *Event) { setTag(ev, TagTickets, "0") },
		"negative amount":      func(ev *Event) { setTag(ev, TagAmount, "-5") },
		"missing coordinate":   func(ev *Event) { dropTag(ev, TagCoordinate) },
		"bad coordinate":       func(ev *Event) { setTag(ev, TagCoordinate, "not-a-coordinate") },
		"non-campaign ref":     func(ev *Event) { setTag(ev, TagCoordinate, "31951:"+testBuyer+":x") },
		"missing invoice":      func(ev *Event) { dropTag(ev, TagInvoice) },
		"missing purchase id":  func(ev *Event) { dropTag(ev, TagPurchaseID) },
		"wrong kind":           func(ev *Event) { ev.Kind = KindCampaign },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			ev := purchaseEvent()
			mutate(ev)
			_, err := ParseTicketPurchase(ev)
			assert.Error(t, err)
		})
	}
}

func TestParseDonation(t *testing.T) {
	ev := purchaseEvent()
	ev.Kind = KindDonation
	dropTag(ev, TagTickets)

	d, err := ParseDonation(ev)
	require.NoError(t, err)
	assert.Equal(t, int64(30000), d.AmountPaid)

	dropTag(ev, TagAmount)
	_, err = ParseDonation(ev)
	assert.Error(t, err)
}

func resultEvent() *Event {
	return &Event{
		ID:        "result-1",
		Pubkey:    testCreator,
		CreatedAt: 1760000100,
		Kind:      KindResult,
		Tags: []Tag{
			{TagD, "ep-42"},
			{TagWinner, testBuyer},
			{TagWinningTicket, "4"},
			{TagTotalRaised, "60000"},
			{TagWinnerAmount, "30000"},
			{TagCreatorAmount, "30000"},
			{TagTotalTickets, "6"},
			{TagRandomSeed, strings.Repeat("00", 32)},
		},
	}
}

func TestParseResult(t *testing.T) {
	r, err := ParseResult(resultEvent())
	require.NoError(t, err)
	assert.Equal(t, int64(4), r.WinningTicket)
	assert.Zero(t, r.PayoutConfirmed)
	assert.Equal(t, testCoordinate, r.Coordinate().String())
}

func TestParseResultRejects(t *testing.T) {
	cases := map[string]func(*Event){
		"split mismatch":     func(ev *Event) { setTag(ev, TagWinnerAmount, "10000") },
		"ticket out of range": func(ev *Event) { setTag(ev, TagWinningTicket, "7") },
		"seed not hex":       func(ev *Event) { setTag(ev, TagRandomSeed, "not-hex") },
		"missing winner":     func(ev *Event) { dropTag(ev, TagWinner) },
		"zero total tickets": func(ev *Event) { setTag(ev, TagTotalTickets, "0") },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			ev := resultEvent()
			mutate(ev)
			_, err := ParseResult(ev)
			assert.Error(t, err)
		})
	}
}

func TestParseResultAmendment(t *testing.T) {
	ev := resultEvent()
	setTag(ev, TagPayoutConfirmed, "1760002000")
	r, err := ParseResult(ev)
	require.NoError(t, err)
	assert.Equal(t, int64(1760002000), r.PayoutConfirmed)
}

func claimEvent() *Event {
	return &Event{
		ID:        "claim-1",
		Pubkey:    testBuyer,
		CreatedAt: 1760000200,
		Kind:      KindPrizeClaim,
		Tags: []Tag{
			{TagEventRef, "result-1"},
			{TagCoordinate, testCoordinate},
			{TagPaymentMethod, PaymentMethodLightningAddress},
			{TagPaymentInfo, "winner@example.com"},
		},
	}
}

func TestParsePrizeClaim(t *testing.T) {
	c, err := ParsePrizeClaim(claimEvent())
	require.NoError(t, err)
	assert.Equal(t, "result-1", c.ResultID)

	ev := claimEvent()
	setTag(ev, TagPaymentMethod, PaymentMethodLightningInvoice)
	setTag(ev, TagPaymentInfo, "lnbc1invoice")
	_, err = ParsePrizeClaim(ev)
	assert.NoError(t, err)
}

func TestParsePrizeClaimRejects(t *testing.T) {
	cases := map[string]func(*Event){
		"unknown method": func(ev *Event) { setTag(ev, TagPaymentMethod, "paypal") },
		"no at sign":     func(ev *Event) { setTag(ev, TagPaymentInfo, "winnerexample.com") },
		"two at signs":   func(ev *Event) { setTag(ev, TagPaymentInfo, "win@ner@example.com") },
		"missing result": func(ev *Event) { dropTag(ev, TagEventRef) },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			ev := claimEvent()
			mutate(ev)
			_, err := ParsePrizeClaim(ev)
			assert.Error(t, err)
		})
	}
}

func TestValidateDispatch(t *testing.T) {
	assert.NoError(t, Validate(campaignEvent(), KindCampaign))
	assert.NoError(t, Validate(purchaseEvent(), KindTicketPurchase))
	assert.Error(t, Validate(purchaseEvent(), KindCampaign))
	assert.Error(t, Validate(campaignEvent(), 12345))
}

// Validation must be pure: re-validating the same raw record gives the
// same verdict every time.
func TestValidateDeterministic(t *testing.T) {
	ev := purchaseEvent()
	first := Validate(ev, KindTicketPurchase)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first == nil, Validate(ev, KindTicketPurchase) == nil)
	}
}
