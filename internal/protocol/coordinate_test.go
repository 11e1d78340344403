package protocol

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCoordinateRoundTrip(t *testing.T) {
	pub := strings.Repeat("ab", 32)
	coord := CampaignCoordinate(pub, "fall-fundraiser")

	parsed, err := ParseCoordinate(coord.String())
	require.NoError(t, err)
	assert.Equal(t, coord, parsed)
	assert.Equal(t, KindCampaign, parsed.Kind)
}

func TestParseCoordinateDTagWithColons(t *testing.T) {
	parsed, err := ParseCoordinate("31950:pubkey:episode:42:extra")
	require.NoError(t, err)
	assert.Equal(t, "episode:42:extra", parsed.DTag)
}

func TestParseCoordinateRejects(t *testing.T) {
	for _, input := range []string{
		"",
		"31950",
		"31950:onlypubkey",
		"kind:pubkey:dtag",
		"31950::dtag",
		"31950:pubkey:",
	} {
		_, err := ParseCoordinate(input)
		assert.Error(t, err, "input %q", input)
	}
}
