package protocol

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Tag names shared by the five record kinds. Frozen along with the
// kind numbers.
const (
	TagD               = "d"
	TagCoordinate      = "a"
	TagEventRef        = "e"
	TagTitle           = "title"
	TagDescription     = "description"
	TagTargetAmount    = "target_amount"
	TagTicketPrice     = "ticket_price"
	TagEndDate         = "end_date"
	TagPodcastName     = "podcast_name"
	TagPodcastURL      = "podcast_url"
	TagEpisode         = "episode"
	TagImageURL        = "image_url"
	TagNWC             = "nwc"
	TagManualDraw      = "manual_draw"
	TagDeleted         = "deleted"
	TagPurchaseID      = "purchase_id"
	TagAmount          = "amount"
	TagTickets         = "tickets"
	TagInvoice         = "invoice"
	TagPaymentHash     = "payment_hash"
	TagZapReceipt      = "zap_receipt"
	TagWinner          = "winner"
	TagWinningTicket   = "winning_ticket"
	TagTotalRaised     = "total_raised"
	TagWinnerAmount    = "winner_amount"
	TagCreatorAmount   = "creator_amount"
	TagTotalTickets    = "total_tickets"
	TagRandomSeed      = "random_seed"
	TagPayoutConfirmed = "payout_confirmed"
	TagManualCompleted = "manual_completed"
	TagPaymentMethod   = "payment_method"
	TagPaymentInfo     = "payment_info"
)

// Prize claim payment methods.
const (
	PaymentMethodLightningAddress = "lightning-address"
	PaymentMethodLightningInvoice = "lightning-invoice"
)

// Campaign is a fundraiser declaration, addressable by (creator, dTag).
// All monetary fields are millisatoshis.
type Campaign struct {
	ID            string
	CreatorPubkey string
	CreatedAt     int64
	DTag          string
	Title         string
	Description   string
	TargetAmount  int64
	TicketPrice   int64
	EndDate       int64
	PodcastName   string
	PodcastURL    string
	Episode       string
	ImageURL      string
	NWC           string
	ManualDraw    bool
	// DeletedAt is nonzero when this record is a deletion amendment
	// (empty content plus a deleted tag). Whether the deletion is
	// honored is the aggregator's call, not the validator's.
	DeletedAt int64
}

func (c *Campaign) Coordinate() Coordinate {
	return CampaignCoordinate(c.CreatorPubkey, c.DTag)
}

func (c *Campaign) IsDeletion() bool {
	return c.DeletedAt > 0
}

// TicketPurchase is one buyer-initiated purchase. Immutable once
// published; identified by the event's own id.
type TicketPurchase struct {
	ID          string
	Buyer       string
	CreatedAt   int64
	Campaign    Coordinate
	PurchaseID  string
	AmountPaid  int64
	TicketCount int64
	Invoice     string
	PaymentHash string
	Message     string
	ZapReceipt  string
}

// Donation is structurally a purchase without tickets: it raises the
// pool but never wins.
type Donation struct {
	ID          string
	Donor       string
	CreatedAt   int64
	Campaign    Coordinate
	PurchaseID  string
	AmountPaid  int64
	Invoice     string
	PaymentHash string
	Message     string
	ZapReceipt  string
}

// Result is the creator's published draw outcome, addressable by the
// campaign's (creator, dTag). Amendments may add completion metadata
// but must never change the drawing fields.
type Result struct {
	ID              string
	CreatorPubkey   string
	CreatedAt       int64
	DTag            string
	WinnerPubkey    string
	WinningTicket   int64
	TotalRaised     int64
	WinnerAmount    int64
	CreatorAmount   int64
	TotalTickets    int64
	RandomSeed      string
	PayoutConfirmed int64
	ManualCompleted int64
}

func (r *Result) Coordinate() Coordinate {
	return CampaignCoordinate(r.CreatorPubkey, r.DTag)
}

// PrizeClaim is a winner's payout request for a specific result.
type PrizeClaim struct {
	ID            string
	Claimant      string
	CreatedAt     int64
	ResultID      string
	Campaign      Coordinate
	PaymentMethod string
	PaymentInfo   string
	Message       string
}

func requiredTag(e *Event, name string) (string, error) {
	v, ok := e.TagValue(name)
	if !ok || v == "" {
		return "", fmt.Errorf("missing required tag %q", name)
	}
	return v, nil
}

func requiredInt(e *Event, name string) (int64, error) {
	v, err := requiredTag(e, name)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("tag %q is not a decimal integer: %w", name, err)
	}
	return n, nil
}

func requiredPositive(e *Event, name string) (int64, error) {
	n, err := requiredInt(e, name)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("tag %q must be positive, got %d", name, n)
	}
	return n, nil
}

func optionalInt(e *Event, name string) int64 {
	v, ok := e.TagValue(name)
	if !ok {
		return 0
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func optionalTag(e *Event, name string) string {
	v, _ := e.TagValue(name)
	return v
}

func campaignRef(e *Event) (Coordinate, error) {
	v, err := requiredTag(e, TagCoordinate)
	if err != nil {
		return Coordinate{}, err
	}
	coord, err := ParseCoordinate(v)
	if err != nil {
		return Coordinate{}, err
	}
	if coord.Kind != KindCampaign {
		return Coordinate{}, fmt.Errorf("coordinate kind %d is not a campaign", coord.Kind)
	}
	return coord, nil
}

// ParseCampaign validates an event as a Campaign record. A nil error
// means every required field is present and well formed; parsing is
// pure and deterministic.
func ParseCampaign(e *Event) (*Campaign, error) {
	if e.Kind != KindCampaign {
		return nil, fmt.Errorf("kind %d is not a campaign", e.Kind)
	}
	dTag, err := requiredTag(e, TagD)
	if err != nil {
		return nil, err
	}

	c := &Campaign{
		ID:            e.ID,
		CreatorPubkey: e.Pubkey,
		CreatedAt:     e.CreatedAt,
		DTag:          dTag,
	}

	// Deletion amendment: empty content plus a deleted marker. No other
	// fields are required on it.
	if deleted := optionalInt(e, TagDeleted); deleted > 0 && e.Content == "" {
		c.DeletedAt = deleted
		return c, nil
	}

	if c.Title, err = requiredTag(e, TagTitle); err != nil {
		return nil, err
	}
	if c.Description, err = requiredTag(e, TagDescription); err != nil {
		return nil, err
	}
	if c.TargetAmount, err = requiredInt(e, TagTargetAmount); err != nil {
		return nil, err
	}
	if c.TargetAmount < 0 {
		return nil, fmt.Errorf("tag %q must not be negative", TagTargetAmount)
	}
	if c.TicketPrice, err = requiredPositive(e, TagTicketPrice); err != nil {
		return nil, err
	}
	if c.EndDate, err = requiredPositive(e, TagEndDate); err != nil {
		return nil, err
	}
	if c.PodcastName, err = requiredTag(e, TagPodcastName); err != nil {
		return nil, err
	}

	c.PodcastURL = optionalTag(e, TagPodcastURL)
	c.Episode = optionalTag(e, TagEpisode)
	c.ImageURL = optionalTag(e, TagImageURL)
	c.NWC = optionalTag(e, TagNWC)
	c.ManualDraw = optionalTag(e, TagManualDraw) == "true"
	return c, nil
}

// ParseTicketPurchase validates an event as a TicketPurchase record.
//
// amountPaid is deliberately not checked against ticketCount times the
// campaign's ticket price: the observed protocol accepts any positive
// pair, and tightening it here would fork the ledger against existing
// clients.
func ParseTicketPurchase(e *Event) (*TicketPurchase, error) {
	if e.Kind != KindTicketPurchase {
		return nil, fmt.Errorf("kind %d is not a ticket purchase", e.Kind)
	}

	coord, err := campaignRef(e)
	if err != nil {
		return nil, err
	}

	p := &TicketPurchase{
		ID:        e.ID,
		Buyer:     e.Pubkey,
		CreatedAt: e.CreatedAt,
		Campaign:  coord,
		Message:   e.Content,
	}
	if p.PurchaseID, err = requiredTag(e, TagPurchaseID); err != nil {
		return nil, err
	}
	if p.AmountPaid, err = requiredPositive(e, TagAmount); err != nil {
		return nil, err
	}
	if p.TicketCount, err = requiredPositive(e, TagTickets); err != nil {
		return nil, err
	}
	if p.Invoice, err = requiredTag(e, TagInvoice); err != nil {
		return nil, err
	}
	if p.PaymentHash, err = requiredTag(e, TagPaymentHash); err != nil {
		return nil, err
	}
	p.ZapReceipt = optionalTag(e, TagZapReceipt)
	return p, nil
}

// ParseDonation validates an event as a Donation record.
func ParseDonation(e *Event) (*Donation, error) {
	if e.Kind != KindDonation {
		return nil, fmt.Errorf("kind %d is not a donation", e.Kind)
	}

	coord, err := campaignRef(e)
	if err != nil {
		return nil, err
	}

	d := &Donation{
		ID:        e.ID,
		Donor:     e.Pubkey,
		CreatedAt: e.CreatedAt,
		Campaign:  coord,
		Message:   e.Content,
	}
	if d.PurchaseID, err = requiredTag(e, TagPurchaseID); err != nil {
		return nil, err
	}
	if d.AmountPaid, err = requiredPositive(e, TagAmount); err != nil {
		return nil, err
	}
	if d.Invoice, err = requiredTag(e, TagInvoice); err != nil {
		return nil, err
	}
	if d.PaymentHash, err = requiredTag(e, TagPaymentHash); err != nil {
		return nil, err
	}
	d.ZapReceipt = optionalTag(e, TagZapReceipt)
	return d, nil
}

// ParseResult validates an event as a Result record.
func ParseResult(e *Event) (*Result, error) {
	if e.Kind != KindResult {
		return nil, fmt.Errorf("kind %d is not a result", e.Kind)
	}

	r := &Result{
		ID:            e.ID,
		CreatorPubkey: e.Pubkey,
		CreatedAt:     e.CreatedAt,
	}
	var err error
	if r.DTag, err = requiredTag(e, TagD); err != nil {
		return nil, err
	}
	if r.WinnerPubkey, err = requiredTag(e, TagWinner); err != nil {
		return nil, err
	}
	if r.WinningTicket, err = requiredPositive(e, TagWinningTicket); err != nil {
		return nil, err
	}
	if r.TotalRaised, err = requiredInt(e, TagTotalRaised); err != nil {
		return nil, err
	}
	if r.WinnerAmount, err = requiredInt(e, TagWinnerAmount); err != nil {
		return nil, err
	}
	if r.CreatorAmount, err = requiredInt(e, TagCreatorAmount); err != nil {
		return nil, err
	}
	if r.TotalTickets, err = requiredPositive(e, TagTotalTickets); err != nil {
		return nil, err
	}
	if r.RandomSeed, err = requiredTag(e, TagRandomSeed); err != nil {
		return nil, err
	}

	if r.TotalRaised < 0 || r.WinnerAmount < 0 || r.CreatorAmount < 0 {
		return nil, errors.New("result amounts must not be negative")
	}
	if r.WinnerAmount+r.CreatorAmount != r.TotalRaised {
		return nil, fmt.Errorf("winner %d + creator %d does not sum to total %d",
			r.WinnerAmount, r.CreatorAmount, r.TotalRaised)
	}
	if r.WinningTicket > r.TotalTickets {
		return nil, fmt.Errorf("winning ticket %d exceeds total tickets %d",
			r.WinningTicket, r.TotalTickets)
	}
	if _, err := hex.DecodeString(r.RandomSeed); err != nil {
		return nil, fmt.Errorf("random seed is not hex: %w", err)
	}

	r.PayoutConfirmed = optionalInt(e, TagPayoutConfirmed)
	r.ManualCompleted = optionalInt(e, TagManualCompleted)
	return r, nil
}

// ParsePrizeClaim validates an event as a PrizeClaim record. A
// lightning address must contain exactly one @; invoices are opaque
// beyond being non-empty (the full BOLT11 grammar lives outside this
// layer).
func ParsePrizeClaim(e *Event) (*PrizeClaim, error) {
	if e.Kind != KindPrizeClaim {
		return nil, fmt.Errorf("kind %d is not a prize claim", e.Kind)
	}

	coord, err := campaignRef(e)
	if err != nil {
		return nil, err
	}

	c := &PrizeClaim{
		ID:        e.ID,
		Claimant:  e.Pubkey,
		CreatedAt: e.CreatedAt,
		Campaign:  coord,
		Message:   e.Content,
	}
	if c.ResultID, err = requiredTag(e, TagEventRef); err != nil {
		return nil, err
	}
	if c.PaymentMethod, err = requiredTag(e, TagPaymentMethod); err != nil {
		return nil, err
	}
	if c.PaymentInfo, err = requiredTag(e, TagPaymentInfo); err != nil {
		return nil, err
	}

	switch c.PaymentMethod {
	case PaymentMethodLightningAddress:
		if strings.Count(c.PaymentInfo, "@") != 1 {
			return nil, errors.New("lightning address must contain exactly one @")
		}
	case PaymentMethodLightningInvoice:
		// non-empty is already guaranteed; otherwise opaque
	default:
		return nil, fmt.Errorf("unknown payment method %q", c.PaymentMethod)
	}
	return c, nil
}

// Validate checks an event against the record rules for the expected
// kind without materializing the typed record.
func Validate(e *Event, kind int) error {
	var err error
	switch kind {
	case KindCampaign:
		_, err = ParseCampaign(e)
	case KindTicketPurchase:
		_, err = ParseTicketPurchase(e)
	case KindDonation:
		_, err = ParseDonation(e)
	case KindResult:
		_, err = ParseResult(e)
	case KindPrizeClaim:
		_, err = ParsePrizeClaim(e)
	default:
		err = fmt.Errorf("unknown record kind %d", kind)
	}
	return err
}
