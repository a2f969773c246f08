package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRestoreQty(t *testing.T) {
	cases := []struct {
		name     string
		qty      int
		buy, get int
		want     int
	}{
		{"no bonus", 5, 0, 0, 5},
		{"buy 2 get 1, qty 3", 3, 2, 1, 4},
		{"buy 3 get 2, qty 7", 7, 3, 2, 11},
		{"qty below buy threshold", 2, 3, 1, 2},
		{"exact multiple", 4, 2, 2, 8},
		{"zero get means no bonus", 6, 2, 0, 6},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			it := OrderItem{Qty: tc.qty, BonusBuy: tc.buy, BonusGet: tc.get}
			assert.Equal(t, tc.want, it.RestoreQty())
		})
	}
}
