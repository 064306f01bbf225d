package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplit(t *testing.T) {
	commission, sellerNet := Split(2_500_000, 1000)
	assert.Equal(t, int64(250_000), commission)
	assert.Equal(t, int64(2_250_000), sellerNet)
}

func TestSplitTruncates(t *testing.T) {
	// 10% of 5 truncates to 0; the remainder goes to the seller.
	commission, sellerNet := Split(5, 1000)
	assert.Equal(t, int64(0), commission)
	assert.Equal(t, int64(5), sellerNet)
}

func TestSplitAlwaysSumsToGross(t *testing.T) {
	grosses := []int64{0, 1, 5, 99, 1_000, 123_457, 2_500_000, 999_999_999}
	rates := []int64{0, 1, 250, 1000, 1500, 3333, 9999, 10000}

	for _, gross := range grosses {
		for _, rate := range rates {
			commission, sellerNet := Split(gross, rate)
			assert.Equal(t, gross, commission+sellerNet,
				"gross=%d rate=%d", gross, rate)
			assert.GreaterOrEqual(t, commission, int64(0))
			assert.GreaterOrEqual(t, sellerNet, int64(0))
		}
	}
}

func TestReverseShare(t *testing.T) {
	assert.Equal(t, int64(4), ReverseShare(10, 40, 100))
	assert.Equal(t, int64(10), ReverseShare(10, 100, 100))
	assert.Equal(t, int64(0), ReverseShare(10, 0, 100))
	assert.Equal(t, int64(0), ReverseShare(10, 40, 0))
}

func TestValidRate(t *testing.T) {
	assert.True(t, ValidRate(0))
	assert.True(t, ValidRate(1000))
	assert.True(t, ValidRate(10000))
	assert.False(t, ValidRate(-1))
	assert.False(t, ValidRate(10001))
}
