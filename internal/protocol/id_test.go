package protocol

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeIDCampaignFixture(t *testing.T) {
	ev := &Event{
		Pubkey:    strings.Repeat("3f", 32),
		CreatedAt: 1750000000,
		Kind:      KindCampaign,
		Tags: []Tag{
			{TagD, "ep-42"},
			{TagTitle, "Episode 42 Raffle"},
			{TagTicketPrice, "10000"},
			{TagEndDate, "1760000000"},
			{TagPodcastName, "Podcasting 2.0"},
			{TagDescription, "weekly 50/50"},
			{TagTargetAmount, "500000"},
		},
		Content: "Support the show!",
	}

	// pinned: independently computed sha256 of the canonical serialization
	assert.Equal(t, "b4504bb7e23b8c37ab1c9ac8057cc825cd3dd66dd65558780f6b7fb462356b64", ComputeID(ev))

	ev.ID = ComputeID(ev)
	assert.True(t, CheckID(ev))

	ev.Content = "tampered"
	assert.False(t, CheckID(ev))
}

func TestComputeIDPurchaseFixture(t *testing.T) {
	coordinate := "31950:" + strings.Repeat("3f", 32) + ":ep-42"
	ev := &Event{
		Pubkey:    strings.Repeat("e1", 32),
		CreatedAt: 1750000100,
		Kind:      KindTicketPurchase,
		Tags: []Tag{
			{TagCoordinate, coordinate},
			{TagPurchaseID, "p-001"},
			{TagAmount, "30000"},
			{TagTickets, "3"},
			{TagInvoice, "lnbc300n1invoice"},
			{TagPaymentHash, strings.Repeat("ab", 32)},
		},
		Content: "good luck everyone",
	}

	assert.Equal(t, "22c22a569e5509782f3f7af4d1af406b43f09beba4c653ca812b0636d78ed10b", ComputeID(ev))
}

func TestSerializeEscaping(t *testing.T) {
	ev := &Event{
		Pubkey:    strings.Repeat("00", 32),
		CreatedAt: 1,
		Kind:      KindCampaign,
		Tags:      []Tag{{TagD, `quo"te`}},
		Content:   "line1\nline2\tend \\ <html> & more",
	}

	serialized := string(Serialize(ev))
	require.Contains(t, serialized, `quo\"te`)
	require.Contains(t, serialized, `line1\nline2\tend \\`)

	// HTML-safe escaping would break id agreement with other clients
	assert.Contains(t, serialized, "<html> & more")
	assert.NotContains(t, serialized, `<`)
}

func TestSerializeDeterministic(t *testing.T) {
	ev := &Event{
		Pubkey:    strings.Repeat("aa", 32),
		CreatedAt: 1234567890,
		Kind:      KindDonation,
		Tags:      []Tag{{TagCoordinate, "31950:aa:x"}, {TagAmount, "5"}},
		Content:   "msg",
	}
	assert.Equal(t, ComputeID(ev), ComputeID(ev))
}
