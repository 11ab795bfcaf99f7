package scheduling

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"time"
)

// PackResult is the outcome of filling gaps with fillers.
type PackResult struct {
	Placements []Placement
	Warnings   []Warning
	// Slack is the total time left unscheduled across all gaps.
	Slack time.Duration
}

// Packer fills gaps with filler videos. Each generation gets its own Packer
// so the shuffle of equal-priority fillers is reproducible from the seed.
type Packer struct {
	rng *rand.Rand
}

// NewPacker returns a packer whose shuffles are driven by seed.
func NewPacker(seed uint64) *Packer {
	return &Packer{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Pool orders fillers by priority (highest first) and shuffles every run of
// equal priority. Fillers without a duration are dropped with a warning.
func (p *Packer) Pool(fillers []Video) ([]Video, []Warning) {
	var warnings []Warning
	pool := make([]Video, 0, len(fillers))
	for _, v := range fillers {
		if v.Kind != KindFiller {
			continue
		}
		if v.Duration <= 0 {
			warnings = append(warnings, Warning{
				Code:    WarnInvalidDuration,
				VideoID: v.ID,
				Message: "filler video has no duration and was skipped",
			})
			continue
		}
		pool = append(pool, v)
	}
	sort.SliceStable(pool, func(i, j int) bool {
		if pool[i].Priority != pool[j].Priority {
			return pool[i].Priority > pool[j].Priority
		}
		return pool[i].ID < pool[j].ID
	})

	for start := 0; start < len(pool); {
		end := start + 1
		for end < len(pool) && pool[end].Priority == pool[start].Priority {
			end++
		}
		run := pool[start:end]
		p.rng.Shuffle(len(run), func(i, j int) { run[i], run[j] = run[j], run[i] })
		start = end
	}
	return pool, warnings
}

// Pack fills every gap first-fit, walking the pool round-robin. A gap stops
// filling once no filler fits the remainder, so per-gap slack is always
// shorter than the shortest filler. The rotation continues across gaps.
func (p *Packer) Pack(gaps []Gap, fillers []Video) PackResult {
	pool, warnings := p.Pool(fillers)
	res := PackResult{Warnings: warnings}

	if len(pool) == 0 {
		for _, g := range gaps {
			if g.Length() <= 0 {
				continue
			}
			res.Slack += g.Length()
			res.Warnings = append(res.Warnings, Warning{
				Code:    WarnUnfilledGap,
				Message: fmt.Sprintf("no fillers available for gap %s-%s", g.Start, g.End),
			})
		}
		return res
	}

	cursor := 0
	for _, g := range gaps {
		at := g.Start
		remaining := g.Length()
		for remaining > 0 {
			idx := -1
			for n := 0; n < len(pool); n++ {
				c := (cursor + n) % len(pool)
				if pool[c].Duration <= remaining {
					idx = c
					break
				}
			}
			if idx < 0 {
				break
			}
			v := pool[idx]
			res.Placements = append(res.Placements, Placement{
				VideoID:   v.ID,
				Kind:      KindFiller,
				Start:     at,
				End:       at + v.Duration,
				MediaPath: v.MediaPath,
			})
			at += v.Duration
			remaining -= v.Duration
			cursor = (idx + 1) % len(pool)
		}
		res.Slack += remaining
	}
	return res
}
