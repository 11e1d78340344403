package protocol

import "strconv"

// Builders produce unsigned events from typed records. The caller
// stamps identity with Signer.Sign before publishing.

func appendTag(tags []Tag, name, value string) []Tag {
	if value == "" {
		return tags
	}
	return append(tags, Tag{name, value})
}

func appendInt(tags []Tag, name string, value int64) []Tag {
	return append(tags, Tag{name, strconv.FormatInt(value, 10)})
}

// BuildCampaignEvent renders a campaign declaration or amendment.
func BuildCampaignEvent(c *Campaign) *Event {
	if c.IsDeletion() {
		tags := []Tag{{TagD, c.DTag}}
		tags = appendInt(tags, TagDeleted, c.DeletedAt)
		return &Event{Kind: KindCampaign, CreatedAt: c.CreatedAt, Tags: tags}
	}

	tags := []Tag{{TagD, c.DTag}}
	tags = appendTag(tags, TagTitle, c.Title)
	tags = appendTag(tags, TagDescription, c.Description)
	tags = appendInt(tags, TagTargetAmount, c.TargetAmount)
	tags = appendInt(tags, TagTicketPrice, c.TicketPrice)
	tags = appendInt(tags, TagEndDate, c.EndDate)
	tags = appendTag(tags, TagPodcastName, c.PodcastName)
	tags = appendTag(tags, TagPodcastURL, c.PodcastURL)
	tags = appendTag(tags, TagEpisode, c.Episode)
	tags = appendTag(tags, TagImageURL, c.ImageURL)
	tags = appendTag(tags, TagNWC, c.NWC)
	if c.ManualDraw {
		tags = append(tags, Tag{TagManualDraw, "true"})
	}
	return &Event{Kind: KindCampaign, CreatedAt: c.CreatedAt, Tags: tags}
}

// BuildTicketPurchaseEvent renders a purchase record.
func BuildTicketPurchaseEvent(p *TicketPurchase) *Event {
	tags := []Tag{{TagCoordinate, p.Campaign.String()}}
	tags = appendTag(tags, TagPurchaseID, p.PurchaseID)
	tags = appendInt(tags, TagAmount, p.AmountPaid)
	tags = appendInt(tags, TagTickets, p.TicketCount)
	tags = appendTag(tags, TagInvoice, p.Invoice)
	tags = appendTag(tags, TagPaymentHash, p.PaymentHash)
	tags = appendTag(tags, TagZapReceipt, p.ZapReceipt)
	return &Event{
		Kind:      KindTicketPurchase,
		CreatedAt: p.CreatedAt,
		Tags:      tags,
		Content:   p.Message,
	}
}

// BuildDonationEvent renders a donation record.
func BuildDonationEvent(d *Donation) *Event {
	tags := []Tag{{TagCoordinate, d.Campaign.String()}}
	tags = appendTag(tags, TagPurchaseID, d.PurchaseID)
	tags = appendInt(tags, TagAmount, d.AmountPaid)
	tags = appendTag(tags, TagInvoice, d.Invoice)
	tags = appendTag(tags, TagPaymentHash, d.PaymentHash)
	tags = appendTag(tags, TagZapReceipt, d.ZapReceipt)
	return &Event{
		Kind:      KindDonation,
		CreatedAt: d.CreatedAt,
		Tags:      tags,
		Content:   d.Message,
	}
}

// BuildResultEvent renders a draw result. Amendment markers are
// emitted only when set, so the same builder serves both the original
// result and its completion amendments.
func BuildResultEvent(r *Result) *Event {
	tags := []Tag{{TagD, r.DTag}}
	tags = appendTag(tags, TagWinner, r.WinnerPubkey)
	tags = appendInt(tags, TagWinningTicket, r.WinningTicket)
	tags = appendInt(tags, TagTotalRaised, r.TotalRaised)
	tags = appendInt(tags, TagWinnerAmount, r.WinnerAmount)
	tags = appendInt(tags, TagCreatorAmount, r.CreatorAmount)
	tags = appendInt(tags, TagTotalTickets, r.TotalTickets)
	tags = appendTag(tags, TagRandomSeed, r.RandomSeed)
	if r.PayoutConfirmed > 0 {
		tags = appendInt(tags, TagPayoutConfirmed, r.PayoutConfirmed)
	}
	if r.ManualCompleted > 0 {
		tags = appendInt(tags, TagManualCompleted, r.ManualCompleted)
	}
	return &Event{Kind: KindResult, CreatedAt: r.CreatedAt, Tags: tags}
}

// BuildPrizeClaimEvent renders a winner's payout request.
func BuildPrizeClaimEvent(c *PrizeClaim) *Event {
	tags := []Tag{{TagEventRef, c.ResultID}, {TagCoordinate, c.Campaign.String()}}
	tags = appendTag(tags, TagPaymentMethod, c.PaymentMethod)
	tags = appendTag(tags, TagPaymentInfo, c.PaymentInfo)
	return &Event{
		Kind:      KindPrizeClaim,
		CreatedAt: c.CreatedAt,
		Tags:      tags,
		Content:   c.Message,
	}
}
