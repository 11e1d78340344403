package protocol

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Coordinate addresses a campaign by kind, creator and dTag, e.g.
// "31950:<creatorPubkey>:<dTag>". Dependent records carry it in their
// "a" tag as a foreign key.
type Coordinate struct {
	Kind   int
	Pubkey string
	DTag   string
}

func (c Coordinate) String() string {
	return fmt.Sprintf("%d:%s:%s", c.Kind, c.Pubkey, c.DTag)
}

// ParseCoordinate parses a "kind:pubkey:dTag" string. The dTag itself
// may contain colons, so only the first two separators split.
func ParseCoordinate(s string) (Coordinate, error) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) != 3 {
		return Coordinate{}, errors.New("coordinate must have three colon-separated parts")
	}

	kind, err := strconv.Atoi(parts[0])
	if err != nil {
		return Coordinate{}, fmt.Errorf("coordinate kind is not numeric: %w", err)
	}
	if parts[1] == "" {
		return Coordinate{}, errors.New("coordinate pubkey is empty")
	}
	if parts[2] == "" {
		return Coordinate{}, errors.New("coordinate dTag is empty")
	}

	return Coordinate{Kind: kind, Pubkey: parts[1], DTag: parts[2]}, nil
}

// CampaignCoordinate builds the coordinate of a campaign record.
func CampaignCoordinate(creatorPubkey, dTag string) Coordinate {
	return Coordinate{Kind: KindCampaign, Pubkey: creatorPubkey, DTag: dTag}
}
