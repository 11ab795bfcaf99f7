package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filler(id uint, d time.Duration, priority int) Video {
	return Video{ID: id, Kind: KindFiller, Duration: d, Priority: priority}
}

func TestPacker_FillerOnlyWindow(t *testing.T) {
	gap := Gap{Start: 0, End: 300 * time.Second}
	res := NewPacker(7).Pack([]Gap{gap}, []Video{
		filler(1, 100*time.Second, 0),
		filler(2, 50*time.Second, 0),
	})

	assert.GreaterOrEqual(t, Timeline(res.Placements).Scheduled(), 250*time.Second)
	assert.Less(t, res.Slack, 50*time.Second)
	assert.Empty(t, res.Warnings)
	assertNoOverlap(t, res.Placements)
	assertInsideWindow(t, res.Placements, gap.End)
	for _, p := range res.Placements {
		assert.Equal(t, KindFiller, p.Kind)
	}
}

func TestPacker_RoundRobinAlternates(t *testing.T) {
	res := NewPacker(1).Pack([]Gap{{Start: 0, End: 10 * time.Minute}}, []Video{
		filler(1, 60*time.Second, 0),
		filler(2, 60*time.Second, 0),
	})

	require.Len(t, res.Placements, 10)
	for i := 1; i < len(res.Placements); i++ {
		assert.NotEqual(t, res.Placements[i-1].VideoID, res.Placements[i].VideoID)
		assert.Equal(t, res.Placements[i-1].End, res.Placements[i].Start)
	}
	assert.Zero(t, res.Slack)
}

func TestPacker_SkipsFillersThatDoNotFit(t *testing.T) {
	res := NewPacker(3).Pack([]Gap{{Start: 0, End: 100 * time.Second}}, []Video{
		filler(1, 80*time.Second, 5),
		filler(2, 30*time.Second, 0),
	})

	require.Len(t, res.Placements, 1)
	assert.Equal(t, uint(1), res.Placements[0].VideoID)
	assert.Equal(t, 20*time.Second, res.Slack)
}

func TestPacker_EmptyPoolLeavesGapsUnfilled(t *testing.T) {
	gaps := []Gap{
		{Start: 0, End: 10 * time.Second},
		{Start: 20 * time.Second, End: 60 * time.Second},
	}
	res := NewPacker(1).Pack(gaps, nil)

	assert.Empty(t, res.Placements)
	assert.Equal(t, 50*time.Second, res.Slack)
	require.Len(t, res.Warnings, 2)
	for _, w := range res.Warnings {
		assert.Equal(t, WarnUnfilledGap, w.Code)
	}
}

func TestPacker_PoolOrder(t *testing.T) {
	pool, warnings := NewPacker(42).Pool([]Video{
		filler(1, 10*time.Second, 0),
		filler(2, 10*time.Second, 9),
		filler(3, 10*time.Second, 0),
		filler(4, 0, 9),
		filler(5, 10*time.Second, 4),
		contract(6, 10*time.Second, 1, 100),
	})

	require.Len(t, pool, 4)
	assert.Equal(t, uint(2), pool[0].ID)
	assert.Equal(t, uint(5), pool[1].ID)
	assert.ElementsMatch(t, []uint{1, 3}, []uint{pool[2].ID, pool[3].ID})
	require.Len(t, warnings, 1)
	assert.Equal(t, WarnInvalidDuration, warnings[0].Code)
	assert.Equal(t, uint(4), warnings[0].VideoID)
}

func TestPacker_SameSeedSameOrder(t *testing.T) {
	var fillers []Video
	for i := uint(1); i <= 20; i++ {
		fillers = append(fillers, filler(i, time.Duration(i)*time.Second, 0))
	}
	gaps := []Gap{{Start: 0, End: time.Hour}}

	a := NewPacker(99).Pack(gaps, fillers)
	b := NewPacker(99).Pack(gaps, fillers)
	assert.Equal(t, a.Placements, b.Placements)
}
