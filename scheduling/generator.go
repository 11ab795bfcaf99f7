package scheduling

import (
	"fmt"
	"time"
)

// Request carries everything one generation needs. Videos is the eligible
// catalog of the scope's tariff (both kinds, already filtered to active).
type Request struct {
	Hours  int
	Videos []Video
	Seed   uint64
}

// Result is a generated timeline plus its diagnostics.
type Result struct {
	Timeline Timeline
	Window   time.Duration
	Counts   map[uint]int
	Warnings []Warning
	Slack    time.Duration
	Seed     uint64
}

// ValidateHours checks a requested window length.
func ValidateHours(hours int) error {
	if hours < 1 || hours > MaxHours {
		return fmt.Errorf("%w: got %d hours, allowed 1..%d", ErrInvalidWindow, hours, MaxHours)
	}
	return nil
}

// Generate plans contract placements, packs the remaining gaps with fillers
// and returns the merged timeline. It fails only when the window is invalid or
// when the catalog holds no video with a usable duration.
func Generate(req Request) (*Result, error) {
	if err := ValidateHours(req.Hours); err != nil {
		return nil, err
	}

	var contracts, fillers []Video
	usable := 0
	for _, v := range req.Videos {
		if v.Duration > 0 {
			usable++
		}
		switch v.Kind {
		case KindContract:
			contracts = append(contracts, v)
		case KindFiller:
			fillers = append(fillers, v)
		}
	}
	if usable == 0 {
		return nil, ErrEmptyCatalog
	}

	window := WindowFor(req.Hours)
	plan := PlanContracts(req.Hours, contracts)
	pack := NewPacker(req.Seed).Pack(Gaps(plan.Placements, window), fillers)

	timeline := make(Timeline, 0, len(plan.Placements)+len(pack.Placements))
	timeline = append(timeline, plan.Placements...)
	timeline = append(timeline, pack.Placements...)
	timeline.Sort()

	warnings := make([]Warning, 0, len(plan.Warnings)+len(pack.Warnings))
	warnings = append(warnings, plan.Warnings...)
	warnings = append(warnings, pack.Warnings...)

	return &Result{
		Timeline: timeline,
		Window:   window,
		Counts:   plan.Counts,
		Warnings: warnings,
		Slack:    pack.Slack,
		Seed:     req.Seed,
	}, nil
}
