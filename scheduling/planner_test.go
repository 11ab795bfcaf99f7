package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contract(id uint, d time.Duration, perHour, priority int) Video {
	return Video{ID: id, Kind: KindContract, Duration: d, RequiredPlaysPerHour: perHour, Priority: priority}
}

func starts(placements []Placement, videoID uint) []time.Duration {
	var out []time.Duration
	for _, p := range placements {
		if p.VideoID == videoID {
			out = append(out, p.Start)
		}
	}
	return out
}

func assertNoOverlap(t *testing.T, placements []Placement) {
	t.Helper()
	for i := range placements {
		for j := i + 1; j < len(placements); j++ {
			assert.False(t, placements[i].Overlaps(placements[j]),
				"placements %d [%s,%s) and %d [%s,%s) overlap",
				i, placements[i].Start, placements[i].End, j, placements[j].Start, placements[j].End)
		}
	}
}

func assertInsideWindow(t *testing.T, placements []Placement, window time.Duration) {
	t.Helper()
	for _, p := range placements {
		assert.GreaterOrEqual(t, p.Start, time.Duration(0))
		assert.Less(t, p.Start, p.End)
		assert.LessOrEqual(t, p.End, window)
	}
}

func TestPlanContracts_EvenSpacing(t *testing.T) {
	res := PlanContracts(1, []Video{contract(1, 30*time.Second, 4, 0)})

	require.Len(t, res.Placements, 4)
	assert.Equal(t, []time.Duration{0, 900 * time.Second, 1800 * time.Second, 2700 * time.Second}, starts(res.Placements, 1))
	assert.Equal(t, 4, res.Counts[1])
	assert.Empty(t, res.Warnings)
	for i, p := range res.Placements {
		assert.Equal(t, i, p.Occurrence)
		assert.Equal(t, 30*time.Second, p.Duration())
	}
}

func TestPlanContracts_CollisionShiftsForward(t *testing.T) {
	res := PlanContracts(1, []Video{
		contract(1, 30*time.Second, 2, 0),
		contract(2, 30*time.Second, 2, 0),
	})

	assert.Equal(t, []time.Duration{0, 1800 * time.Second}, starts(res.Placements, 1))
	assert.Equal(t, []time.Duration{30 * time.Second, 1830 * time.Second}, starts(res.Placements, 2))
	assertNoOverlap(t, res.Placements)
}

func TestPlanContracts_HigherPriorityWinsTie(t *testing.T) {
	res := PlanContracts(1, []Video{
		contract(1, 60*time.Second, 1, 0),
		contract(2, 60*time.Second, 1, 10),
	})

	assert.Equal(t, []time.Duration{0}, starts(res.Placements, 2))
	assert.Equal(t, []time.Duration{60 * time.Second}, starts(res.Placements, 1))
}

func TestPlanContracts_FrequencySatisfiedWhenWindowFits(t *testing.T) {
	tests := []struct {
		name      string
		hours     int
		contracts []Video
	}{
		{
			name:      "single video over a day",
			hours:     24,
			contracts: []Video{contract(1, 15*time.Second, 6, 0)},
		},
		{
			name:  "mixed videos over two hours",
			hours: 2,
			contracts: []Video{
				contract(1, 30*time.Second, 4, 1),
				contract(2, 60*time.Second, 2, 2),
				contract(3, 45*time.Second, 3, 0),
			},
		},
		{
			name:      "fully booked hour",
			hours:     1,
			contracts: []Video{contract(1, 900*time.Second, 4, 0)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			window := WindowFor(tt.hours)
			res := PlanContracts(tt.hours, tt.contracts)

			for _, v := range tt.contracts {
				assert.Equal(t, v.RequiredPlaysPerHour*tt.hours, res.Counts[v.ID], "video %d", v.ID)
				assert.Len(t, starts(res.Placements, v.ID), v.RequiredPlaysPerHour*tt.hours)
			}
			assertNoOverlap(t, res.Placements)
			assertInsideWindow(t, res.Placements, window)
			assert.Empty(t, res.Warnings)
		})
	}
}

func TestPlanContracts_OverSubscribedReducesLowestPriorityFirst(t *testing.T) {
	res := PlanContracts(1, []Video{
		contract(1, 600*time.Second, 4, 1),
		contract(2, 600*time.Second, 3, 5),
	})

	assert.Equal(t, 3, res.Counts[1])
	assert.Equal(t, 3, res.Counts[2])
	assert.LessOrEqual(t, Timeline(res.Placements).Scheduled(), WindowFor(1))
	assertNoOverlap(t, res.Placements)
	assertInsideWindow(t, res.Placements, WindowFor(1))
}

func TestPlanContracts_OverSubscribedEqualPriorityIsProportional(t *testing.T) {
	res := PlanContracts(1, []Video{
		contract(1, 100*time.Second, 30, 0),
		contract(2, 100*time.Second, 15, 0),
	})

	assert.Equal(t, 24, res.Counts[1])
	assert.Equal(t, 12, res.Counts[2])
	assert.Equal(t, WindowFor(1), Timeline(res.Placements).Scheduled())
	assertNoOverlap(t, res.Placements)
	assertInsideWindow(t, res.Placements, WindowFor(1))
}

func TestPlanContracts_NeverBelowOneThenDrops(t *testing.T) {
	res := PlanContracts(1, []Video{
		contract(1, 2000*time.Second, 1, 0),
		contract(2, 2000*time.Second, 1, 0),
		contract(3, 1000*time.Second, 1, 9),
	})

	assert.Equal(t, 1, res.Counts[3])
	assert.Equal(t, 1, res.Counts[1])
	assert.NotContains(t, res.Counts, uint(2))
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, WarnUnplaceableContractVideo, res.Warnings[0].Code)
	assert.Equal(t, uint(2), res.Warnings[0].VideoID)
	assertInsideWindow(t, res.Placements, WindowFor(1))
}

func TestPlanContracts_DroppedVideoFreesRoomForHigherPriority(t *testing.T) {
	res := PlanContracts(1, []Video{
		contract(1, 3595*time.Second, 1, 0),
		contract(2, 10*time.Second, 100, 5),
	})

	assert.NotContains(t, res.Counts, uint(1))
	assert.Equal(t, 100, res.Counts[2])
	assert.Equal(t, 1000*time.Second, Timeline(res.Placements).Scheduled())
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, WarnUnplaceableContractVideo, res.Warnings[0].Code)
	assert.Equal(t, uint(1), res.Warnings[0].VideoID)
	assertNoOverlap(t, res.Placements)
	assertInsideWindow(t, res.Placements, WindowFor(1))
}

func TestPlanContracts_DropThenScaleSurvivors(t *testing.T) {
	res := PlanContracts(1, []Video{
		contract(1, 3000*time.Second, 1, 0),
		contract(2, 1000*time.Second, 2, 3),
		contract(3, 100*time.Second, 20, 7),
	})

	// One occurrence of each needs 4100s, so video 1 goes. The rest want
	// 2000s + 2000s and are scaled lowest priority first.
	assert.NotContains(t, res.Counts, uint(1))
	assert.Equal(t, 1, res.Counts[2])
	assert.Equal(t, 20, res.Counts[3])
	assertNoOverlap(t, res.Placements)
	assertInsideWindow(t, res.Placements, WindowFor(1))
}

func TestPlanContracts_OversizedVideoExcluded(t *testing.T) {
	res := PlanContracts(1, []Video{
		contract(1, 2*time.Hour, 1, 0),
		contract(2, 30*time.Second, 1, 0),
	})

	assert.NotContains(t, res.Counts, uint(1))
	assert.Equal(t, 1, res.Counts[2])
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, WarnOversizedContractVideo, res.Warnings[0].Code)
	assert.Equal(t, uint(1), res.Warnings[0].VideoID)
}

func TestPlanContracts_SkipsZeroDurationAndFillers(t *testing.T) {
	res := PlanContracts(1, []Video{
		contract(1, 0, 4, 0),
		{ID: 2, Kind: KindFiller, Duration: 30 * time.Second},
	})

	assert.Empty(t, res.Placements)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, WarnInvalidDuration, res.Warnings[0].Code)
}

func TestPlanContracts_NoContracts(t *testing.T) {
	res := PlanContracts(24, nil)
	assert.Empty(t, res.Placements)
	assert.Empty(t, res.Counts)
	assert.Empty(t, res.Warnings)
}

func TestPlanContracts_Deterministic(t *testing.T) {
	catalog := []Video{
		contract(3, 45*time.Second, 3, 0),
		contract(1, 30*time.Second, 4, 1),
		contract(2, 60*time.Second, 2, 2),
	}
	first := PlanContracts(6, catalog)

	reversed := []Video{catalog[2], catalog[1], catalog[0]}
	second := PlanContracts(6, reversed)

	assert.Equal(t, first.Placements, second.Placements)
	assert.Equal(t, first.Counts, second.Counts)
}

func TestEvenAnchor(t *testing.T) {
	tests := []struct {
		name   string
		window time.Duration
		j, k   int
		want   time.Duration
	}{
		{"first occurrence", time.Hour, 0, 4, 0},
		{"quarter", time.Hour, 1, 4, 15 * time.Minute},
		{"uneven split floors", 10 * time.Nanosecond, 2, 3, 6 * time.Nanosecond},
		{"week window large k", WindowFor(MaxHours), 99_999, 100_000, WindowFor(MaxHours) / 100_000 * 99_999},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, evenAnchor(tt.window, tt.j, tt.k))
		})
	}
}
