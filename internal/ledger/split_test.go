package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitExact(t *testing.T) {
	cases := []struct {
		total, winner, creator int64
	}{
		{0, 0, 0},
		{1, 0, 1},
		{2, 1, 1},
		{60000, 30000, 30000},
		{99999, 49999, 50000},
		{1<<62 + 1, 1 << 61, 1<<61 + 1},
	}

	for _, c := range cases {
		winner, creator := Split(c.total)
		assert.Equal(t, c.winner, winner, "total %d", c.total)
		assert.Equal(t, c.creator, creator, "total %d", c.total)
		assert.Equal(t, c.total, winner+creator, "no rounding loss for %d", c.total)
	}
}
