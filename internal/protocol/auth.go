package protocol

import (
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
)

var (
	ErrBadID        = errors.New("event id does not match content")
	ErrBadSignature = errors.New("event signature is invalid")
)

// VerifyEvent checks that the event's id matches its canonical
// serialization and that the signature is a valid BIP340 schnorr
// signature over the id by the event's author.
func VerifyEvent(e *Event) error {
	if !CheckID(e) {
		return ErrBadID
	}
	if err := verifySchnorr(e.Pubkey, e.ID, e.Sig); err != nil {
		return fmt.Errorf("%w: %v", ErrBadSignature, err)
	}
	return nil
}

func verifySchnorr(pubkeyHex, msgHex, sigHex string) error {
	pubBytes, err := hex.DecodeString(pubkeyHex)
	if err != nil || len(pubBytes) != schnorr.PubKeyBytesLen {
		return errors.New("pubkey must be 32 hex-encoded bytes")
	}
	pub, err := schnorr.ParsePubKey(pubBytes)
	if err != nil {
		return err
	}

	msg, err := hex.DecodeString(msgHex)
	if err != nil || len(msg) != 32 {
		return errors.New("message must be 32 hex-encoded bytes")
	}

	sigBytes, err := hex.DecodeString(sigHex)
	if err != nil || len(sigBytes) != schnorr.SignatureSize {
		return errors.New("signature must be 64 hex-encoded bytes")
	}
	sig, err := schnorr.ParseSignature(sigBytes)
	if err != nil {
		return err
	}

	if !sig.Verify(msg, pub) {
		return errors.New("verification failed")
	}
	return nil
}

// Signer holds the secp256k1 key an oracle publishes records with.
type Signer struct {
	priv *btcec.PrivateKey
	pub  string
}

// NewSigner parses a hex-encoded 32-byte secret key.
func NewSigner(secretHex string) (*Signer, error) {
	raw, err := hex.DecodeString(secretHex)
	if err != nil || len(raw) != 32 {
		return nil, errors.New("secret key must be 32 hex-encoded bytes")
	}
	priv, pub := btcec.PrivKeyFromBytes(raw)
	return &Signer{
		priv: priv,
		pub:  hex.EncodeToString(schnorr.SerializePubKey(pub)),
	}, nil
}

// Pubkey returns the x-only public key in lowercase hex.
func (s *Signer) Pubkey() string {
	return s.pub
}

// Sign stamps the event with the signer's pubkey, fills created_at when
// unset, and computes id and signature.
func (s *Signer) Sign(e *Event) error {
	e.Pubkey = s.pub
	if e.CreatedAt == 0 {
		e.CreatedAt = time.Now().Unix()
	}
	e.ID = ComputeID(e)

	idBytes, err := hex.DecodeString(e.ID)
	if err != nil {
		return err
	}
	sig, err := schnorr.Sign(s.priv, idBytes)
	if err != nil {
		return err
	}
	e.Sig = hex.EncodeToString(sig.Serialize())
	return nil
}
