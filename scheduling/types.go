package scheduling

import (
	"errors"
	"sort"
	"time"
)

// VideoKind separates paid contract videos from fillers.
type VideoKind string

const (
	KindContract VideoKind = "contract"
	KindFiller   VideoKind = "filler"
)

// Video is the catalog view the engine plans with.
type Video struct {
	ID                   uint          `json:"id"`
	Kind                 VideoKind     `json:"kind"`
	Duration             time.Duration `json:"duration"`
	Priority             int           `json:"priority"`
	RequiredPlaysPerHour int           `json:"required_plays_per_hour,omitempty"`
	MediaPath            string        `json:"media_path,omitempty"`
}

// Placement is one scheduled play of a video inside the window. Start and
// End are offsets from the window start.
type Placement struct {
	VideoID    uint          `json:"video_id"`
	Kind       VideoKind     `json:"kind"`
	Occurrence int           `json:"occurrence"`
	Start      time.Duration `json:"start"`
	End        time.Duration `json:"end"`
	MediaPath  string        `json:"media_path,omitempty"`
}

func (p Placement) Duration() time.Duration { return p.End - p.Start }

// Overlaps reports whether two placements share any instant.
func (p Placement) Overlaps(o Placement) bool {
	return p.Start < o.End && o.Start < p.End
}

// Gap is a free interval between contract placements.
type Gap struct {
	Start time.Duration `json:"start"`
	End   time.Duration `json:"end"`
}

func (g Gap) Length() time.Duration { return g.End - g.Start }

// WarningCode classifies non-fatal generation findings.
type WarningCode string

const (
	WarnOversizedContractVideo   WarningCode = "OVERSIZED_CONTRACT_VIDEO"
	WarnUnplaceableContractVideo WarningCode = "UNPLACEABLE_CONTRACT_VIDEO"
	WarnUnfilledGap              WarningCode = "UNFILLED_GAP"
	WarnInvalidDuration          WarningCode = "INVALID_DURATION"
)

// Warning is recorded alongside a playlist that was still produced.
type Warning struct {
	Code    WarningCode `json:"code"`
	VideoID uint        `json:"video_id,omitempty"`
	Message string      `json:"message"`
}

var (
	ErrEmptyCatalog  = errors.New("no schedulable videos in catalog")
	ErrInvalidWindow = errors.New("window hours out of range")
)

// Timeline is an ordered, non-overlapping sequence of placements.
type Timeline []Placement

// Sort orders placements by start time.
func (t Timeline) Sort() {
	sort.SliceStable(t, func(i, j int) bool { return t[i].Start < t[j].Start })
}

// VideoSequence projects the timeline to video ids in play order.
func (t Timeline) VideoSequence() []uint {
	ordered := make(Timeline, len(t))
	copy(ordered, t)
	ordered.Sort()
	ids := make([]uint, 0, len(ordered))
	for _, p := range ordered {
		ids = append(ids, p.VideoID)
	}
	return ids
}

// OfKind returns the placements of one kind, in timeline order.
func (t Timeline) OfKind(kind VideoKind) []Placement {
	var out []Placement
	for _, p := range t {
		if p.Kind == kind {
			out = append(out, p)
		}
	}
	return out
}

// Frequencies counts occurrences per video id.
func (t Timeline) Frequencies() map[uint]int {
	out := make(map[uint]int)
	for _, p := range t {
		out[p.VideoID]++
	}
	return out
}

// Scheduled is the sum of all placement durations.
func (t Timeline) Scheduled() time.Duration {
	var total time.Duration
	for _, p := range t {
		total += p.Duration()
	}
	return total
}

// Gaps returns the complement of placements over [0, window).
func Gaps(placements []Placement, window time.Duration) []Gap {
	ordered := make(Timeline, len(placements))
	copy(ordered, placements)
	ordered.Sort()

	var gaps []Gap
	cursor := time.Duration(0)
	for _, p := range ordered {
		if p.Start > cursor {
			gaps = append(gaps, Gap{Start: cursor, End: p.Start})
		}
		if p.End > cursor {
			cursor = p.End
		}
	}
	if cursor < window {
		gaps = append(gaps, Gap{Start: cursor, End: window})
	}
	return gaps
}
