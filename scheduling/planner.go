package scheduling

import (
	"fmt"
	"sort"
	"time"
)

const (
	// DefaultHours is the window length used when a caller does not ask for one.
	DefaultHours = 24
	// MaxHours bounds a single window to one week.
	MaxHours = 168
)

// WindowFor converts a window length in hours to a duration.
func WindowFor(hours int) time.Duration {
	return time.Duration(hours) * time.Hour
}

// PlanResult is the outcome of contract placement.
type PlanResult struct {
	Placements []Placement
	// Counts holds the number of occurrences placed per contract video.
	Counts   map[uint]int
	Warnings []Warning
}

type contractDemand struct {
	video  Video
	target int
	count  int
}

// PlanContracts decides how many occurrences of every contract video fit in
// a window of the given hours and where each one starts. Occurrences of a
// video are anchored evenly across the window and collisions are resolved by
// shifting forward to the first free instant. The result is deterministic for
// the same input.
func PlanContracts(hours int, contracts []Video) PlanResult {
	window := WindowFor(hours)
	res := PlanResult{Counts: make(map[uint]int)}

	demands := make([]*contractDemand, 0, len(contracts))
	for _, v := range contracts {
		if v.Kind != KindContract {
			continue
		}
		if v.Duration <= 0 {
			res.Warnings = append(res.Warnings, Warning{
				Code:    WarnInvalidDuration,
				VideoID: v.ID,
				Message: "contract video has no duration and was skipped",
			})
			continue
		}
		if v.Duration > window {
			res.Warnings = append(res.Warnings, Warning{
				Code:    WarnOversizedContractVideo,
				VideoID: v.ID,
				Message: fmt.Sprintf("duration %s exceeds window %s", v.Duration, window),
			})
			continue
		}
		plays := v.RequiredPlaysPerHour
		if plays < 1 {
			plays = 1
		}
		target := plays * hours
		demands = append(demands, &contractDemand{video: v, target: target, count: target})
	}
	sort.Slice(demands, func(i, j int) bool { return demands[i].video.ID < demands[j].video.ID })

	res.Warnings = append(res.Warnings, scaleToWindow(demands, window)...)

	for _, d := range demands {
		if d.count > 0 {
			res.Counts[d.video.ID] = d.count
		}
	}
	res.Placements = placeEvenly(demands, window)
	return res
}

func requestedDuration(demands []*contractDemand) time.Duration {
	var total time.Duration
	for _, d := range demands {
		total += time.Duration(d.count) * d.video.Duration
	}
	return total
}

// scaleToWindow lowers occurrence counts until the requested contract time
// fits the window. When even one occurrence of every video overflows the
// window, whole videos are dropped first, lowest priority and longest first.
// The survivors are then reduced from their full targets: priority groups
// lowest first, and inside a group the video holding the largest share of its
// target loses one occurrence at a time, which keeps equal-priority videos
// proportional. Counts never drop below one while scaling.
func scaleToWindow(demands []*contractDemand, window time.Duration) []Warning {
	if requestedDuration(demands) <= window {
		return nil
	}

	groups := groupByPriority(demands)
	warnings := dropUnplaceable(groups, window)

	total := requestedDuration(demands)
	for _, group := range groups {
		for total > window {
			d := mostServed(group)
			if d == nil {
				break
			}
			d.count--
			total -= d.video.Duration
		}
		if total <= window {
			break
		}
	}
	return warnings
}

// dropUnplaceable zeroes whole videos until a single occurrence of every
// remaining video fits the window.
func dropUnplaceable(groups [][]*contractDemand, window time.Duration) []Warning {
	var minimum time.Duration
	for _, group := range groups {
		for _, d := range group {
			minimum += d.video.Duration
		}
	}

	var warnings []Warning
	for _, group := range groups {
		dropOrder := make([]*contractDemand, len(group))
		copy(dropOrder, group)
		sort.SliceStable(dropOrder, func(i, j int) bool {
			if dropOrder[i].video.Duration != dropOrder[j].video.Duration {
				return dropOrder[i].video.Duration > dropOrder[j].video.Duration
			}
			return dropOrder[i].video.ID > dropOrder[j].video.ID
		})
		for _, d := range dropOrder {
			if minimum <= window {
				return warnings
			}
			minimum -= d.video.Duration
			d.count = 0
			warnings = append(warnings, Warning{
				Code:    WarnUnplaceableContractVideo,
				VideoID: d.video.ID,
				Message: "window cannot hold a single occurrence alongside higher priority contracts",
			})
		}
	}
	return warnings
}

// groupByPriority buckets demands by priority, lowest priority first.
func groupByPriority(demands []*contractDemand) [][]*contractDemand {
	byPriority := make(map[int][]*contractDemand)
	var priorities []int
	for _, d := range demands {
		if _, ok := byPriority[d.video.Priority]; !ok {
			priorities = append(priorities, d.video.Priority)
		}
		byPriority[d.video.Priority] = append(byPriority[d.video.Priority], d)
	}
	sort.Ints(priorities)
	groups := make([][]*contractDemand, 0, len(priorities))
	for _, p := range priorities {
		groups = append(groups, byPriority[p])
	}
	return groups
}

// mostServed picks the reducible demand with the highest count/target ratio.
func mostServed(group []*contractDemand) *contractDemand {
	var best *contractDemand
	for _, d := range group {
		if d.count <= 1 {
			continue
		}
		if best == nil {
			best = d
			continue
		}
		lhs := int64(d.count) * int64(best.target)
		rhs := int64(best.count) * int64(d.target)
		if lhs > rhs || (lhs == rhs && d.video.ID < best.video.ID) {
			best = d
		}
	}
	return best
}

type occurrence struct {
	video  Video
	index  int
	anchor time.Duration
}

// evenAnchor returns floor(window*j/k) without overflowing int64.
func evenAnchor(window time.Duration, j, k int) time.Duration {
	kk := time.Duration(k)
	jj := time.Duration(j)
	q, r := window/kk, window%kk
	return q*jj + r*jj/kk
}

func placeEvenly(demands []*contractDemand, window time.Duration) []Placement {
	var tokens []occurrence
	for _, d := range demands {
		for j := 0; j < d.count; j++ {
			tokens = append(tokens, occurrence{
				video:  d.video,
				index:  j,
				anchor: evenAnchor(window, j, d.count),
			})
		}
	}
	sort.SliceStable(tokens, func(i, j int) bool {
		a, b := tokens[i], tokens[j]
		if a.anchor != b.anchor {
			return a.anchor < b.anchor
		}
		if a.video.Priority != b.video.Priority {
			return a.video.Priority > b.video.Priority
		}
		if a.video.ID != b.video.ID {
			return a.video.ID < b.video.ID
		}
		return a.index < b.index
	})

	// Tokens are visited in anchor order and every shift moves forward, so the
	// first free instant at or after an anchor is max(anchor, previous end).
	placements := make([]Placement, 0, len(tokens))
	cursor := time.Duration(0)
	for _, t := range tokens {
		start := max(t.anchor, cursor)
		end := start + t.video.Duration
		placements = append(placements, Placement{
			VideoID:    t.video.ID,
			Kind:       KindContract,
			Occurrence: t.index,
			Start:      start,
			End:        end,
			MediaPath:  t.video.MediaPath,
		})
		cursor = end
	}

	// Pull an overrunning tail back inside the window. Total contract time is
	// at most the window, so no start goes below zero.
	limit := window
	for i := len(placements) - 1; i >= 0; i-- {
		p := &placements[i]
		if p.End > limit {
			shift := p.End - limit
			p.Start -= shift
			p.End -= shift
		}
		limit = p.Start
	}
	return placements
}
