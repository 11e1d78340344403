package protocol

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// BIP340 reference vector 0.
const (
	bip340Pubkey = "f9308a019258c31049344f85f89d5229b531c845836f99b08601f113bce036f9"
	bip340Msg    = "0000000000000000000000000000000000000000000000000000000000000000"
	bip340Sig    = "e907831f80848d1069a5371b402410364bdf1c5f8307b0084c55f1ce2dca821525f66a4a85ea8b71e482a74f382d2ce5ebeee8fdb2172f477df4900d310536c0"
)

func TestVerifySchnorrReferenceVector(t *testing.T) {
	assert.NoError(t, verifySchnorr(bip340Pubkey, bip340Msg, bip340Sig))
}

func TestVerifySchnorrRejectsTamper(t *testing.T) {
	tampered := "ff" + bip340Sig[2:]
	assert.Error(t, verifySchnorr(bip340Pubkey, bip340Msg, tampered))

	otherMsg := "01" + bip340Msg[2:]
	assert.Error(t, verifySchnorr(bip340Pubkey, otherMsg, bip340Sig))

	assert.Error(t, verifySchnorr("zz", bip340Msg, bip340Sig))
	assert.Error(t, verifySchnorr(bip340Pubkey, bip340Msg, "abcd"))
}

func TestSignerRoundTrip(t *testing.T) {
	secret := strings.Repeat("0", 63) + "1"
	signer, err := NewSigner(secret)
	require.NoError(t, err)
	require.Len(t, signer.Pubkey(), 64)

	ev := &Event{
		Kind: KindResult,
		Tags: []Tag{
			{TagD, "ep-1"},
			{TagWinner, strings.Repeat("ab", 32)},
			{TagWinningTicket, "3"},
			{TagTotalRaised, "60000"},
			{TagWinnerAmount, "30000"},
			{TagCreatorAmount, "30000"},
			{TagTotalTickets, "6"},
			{TagRandomSeed, strings.Repeat("00", 32)},
		},
	}
	require.NoError(t, signer.Sign(ev))

	assert.Equal(t, signer.Pubkey(), ev.Pubkey)
	assert.NotZero(t, ev.CreatedAt)
	assert.NoError(t, VerifyEvent(ev))

	ev.Content = "tampered"
	assert.ErrorIs(t, VerifyEvent(ev), ErrBadID)
}

func TestNewSignerRejectsBadKey(t *testing.T) {
	_, err := NewSigner("short")
	assert.Error(t, err)

	_, err = NewSigner(strings.Repeat("zz", 32))
	assert.Error(t, err)
}
