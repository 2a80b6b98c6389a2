// Package health computes per-sensor health metrics from an event history. Compute is pure:
// the caller supplies the samples and the evaluation instant.
package health

import (
	"math"
	"sort"
	"time"

	"liyu1981.xyz/sensor-pipeline/pkg/common"
	"liyu1981.xyz/sensor-pipeline/pkg/models"
)

const (
	Window7d  = 7 * 24 * time.Hour
	Window24h = 24 * time.Hour
)

type Policy struct {
	ExpectedInterval map[models.SensorType]time.Duration

	WeightSignal    float64
	WeightStaleness float64
	WeightFlap      float64

	// RSSI and SNR ranges mapped linearly onto [0, 1].
	RSSIFloor float64
	RSSISpan  float64
	SNRFloor  float64
	SNRSpan   float64

	// Flips per day at which the flap component bottoms out.
	FlapCeiling float64
}

func DefaultPolicy() Policy {
	return Policy{
		ExpectedInterval: map[models.SensorType]time.Duration{
			models.SensorTypeParking: 60 * time.Minute,
			models.SensorTypeWeather: 15 * time.Minute,
			models.SensorTypeOther:   60 * time.Minute,
		},
		WeightSignal:    0.4,
		WeightStaleness: 0.35,
		WeightFlap:      0.25,
		RSSIFloor:       -120,
		RSSISpan:        50,
		SNRFloor:        -20,
		SNRSpan:         30,
		FlapCeiling:     24,
	}
}

type Input struct {
	SensorType models.SensorType
	// InstalledAt only drives DaysInUse.
	InstalledAt time.Time
	// ProvisionedAt is when uplinks became expected. Stale slots and flap rates are counted from
	// it, so the anchor never depends on which samples happen to exist. Zero falls back to
	// InstalledAt.
	ProvisionedAt time.Time
	AsOf          time.Time
	Samples       []Sample
}

func (in Input) expectedFrom(start7d time.Time) time.Time {
	anchor := in.ProvisionedAt
	if anchor.IsZero() {
		anchor = in.InstalledAt
	}
	if anchor.After(start7d) {
		return anchor
	}
	return start7d
}

type SensorHealth struct {
	AsOf                 time.Time `json:"asOf"`
	DaysInUse            int       `json:"daysInUse"`
	Score                *float64  `json:"score"`
	BatteryDrainPerDay7d *float64  `json:"batteryDrainPerDay7d"`
	UplinkCount7d        int       `json:"uplinkCount7d"`
	StateFlipCount7d     int       `json:"stateFlipCount7d"`
	StaleEventRatio7d    *float64  `json:"staleEventRatio7d"`
	AvgRssi24h           *float64  `json:"avgRssi24h"`
	AvgSnr24h            *float64  `json:"avgSnr24h"`
	SignalSamples24h     int       `json:"signalSamples24h"`
	LastRssi             *float64  `json:"lastRssi"`
	LastSnr              *float64  `json:"lastSnr"`
	FlapChanges          int       `json:"flapChanges"`
}

// Compute derives SensorHealth from samples inside the trailing 7-day window ending at AsOf.
// Metrics that cannot be computed from the data are nil, never zero-filled.
func Compute(in Input, p Policy) SensorHealth {
	asOf := in.AsOf.UTC()
	out := SensorHealth{AsOf: asOf}

	if !in.InstalledAt.IsZero() && asOf.After(in.InstalledAt) {
		out.DaysInUse = int(asOf.Sub(in.InstalledAt) / Window24h)
	}

	start7d := asOf.Add(-Window7d)
	start24h := asOf.Add(-Window24h)

	samples := make([]Sample, 0, len(in.Samples))
	for _, s := range in.Samples {
		if s.Time.After(start7d) && !s.Time.After(asOf) {
			samples = append(samples, s)
		}
	}
	sort.SliceStable(samples, func(a, b int) bool { return samples[a].Time.Before(samples[b].Time) })

	out.UplinkCount7d = len(samples)
	out.BatteryDrainPerDay7d = batteryDrain(samples)
	out.StateFlipCount7d, out.FlapChanges = flips(samples, start24h)
	out.StaleEventRatio7d = staleRatio(samples, in, start7d, p)
	signal(samples, start24h, &out)

	out.Score = score(out, stateSamples(samples), flapDays(in, asOf, start7d), p)
	return out
}

func batteryDrain(samples []Sample) *float64 {
	var first, last *Sample
	for i := range samples {
		if samples[i].BatteryPct == nil {
			continue
		}
		if first == nil {
			first = &samples[i]
		}
		last = &samples[i]
	}
	if first == nil || first == last {
		return nil
	}
	days := last.Time.Sub(first.Time).Hours() / 24
	if days <= 0 {
		return nil
	}
	drain := (*first.BatteryPct - *last.BatteryPct) / days
	if drain < 0 {
		drain = 0
	}
	return &drain
}

// flips counts state changes between consecutive state-bearing samples. A change counts for the
// 24h window when the later sample falls inside it.
func flips(samples []Sample, start24h time.Time) (week, day int) {
	var prev *bool
	for _, s := range samples {
		if s.State == nil {
			continue
		}
		if prev != nil && *prev != *s.State {
			week++
			if s.Time.After(start24h) {
				day++
			}
		}
		prev = s.State
	}
	return week, day
}

func stateSamples(samples []Sample) int {
	n := 0
	for _, s := range samples {
		if s.State != nil {
			n++
		}
	}
	return n
}

func staleRatio(samples []Sample, in Input, start7d time.Time, p Policy) *float64 {
	interval := p.ExpectedInterval[in.SensorType]
	if interval <= 0 {
		return nil
	}
	start := in.expectedFrom(start7d)
	asOf := in.AsOf.UTC()
	if !asOf.After(start) {
		return nil
	}
	slots := int(asOf.Sub(start) / interval)
	if slots == 0 {
		return nil
	}

	// sized by samples, not slots: a tiny interval must not allocate per slot
	seen := make(map[int]struct{}, len(samples))
	for _, s := range samples {
		if s.Time.Before(start) {
			continue
		}
		if idx := int(s.Time.Sub(start) / interval); idx < slots {
			seen[idx] = struct{}{}
		}
	}
	ratio := float64(slots-len(seen)) / float64(slots)
	return &ratio
}

func signal(samples []Sample, start24h time.Time, out *SensorHealth) {
	var rssiSum, snrSum float64
	var rssiN, snrN int
	for _, s := range samples {
		if s.RSSI != nil {
			out.LastRssi = s.RSSI
		}
		if s.SNR != nil {
			out.LastSnr = s.SNR
		}
		if !s.Time.After(start24h) {
			continue
		}
		if s.RSSI != nil || s.SNR != nil {
			out.SignalSamples24h++
		}
		if s.RSSI != nil {
			rssiSum += *s.RSSI
			rssiN++
		}
		if s.SNR != nil {
			snrSum += *s.SNR
			snrN++
		}
	}
	if rssiN > 0 {
		out.AvgRssi24h = common.Ptr(rssiSum / float64(rssiN))
	}
	if snrN > 0 {
		out.AvgSnr24h = common.Ptr(snrSum / float64(snrN))
	}
}

func flapDays(in Input, asOf, start7d time.Time) float64 {
	start := in.expectedFrom(start7d)
	days := asOf.Sub(start).Hours() / 24
	if days < 1 {
		days = 1
	}
	return days
}

func score(h SensorHealth, stateN int, days float64, p Policy) *float64 {
	var weighted, weights float64
	add := func(w, c float64) {
		if w <= 0 {
			return
		}
		weighted += w * c
		weights += w
	}

	var parts []float64
	if h.AvgRssi24h != nil && p.RSSISpan > 0 {
		parts = append(parts, common.Clamp01((*h.AvgRssi24h-p.RSSIFloor)/p.RSSISpan))
	}
	if h.AvgSnr24h != nil && p.SNRSpan > 0 {
		parts = append(parts, common.Clamp01((*h.AvgSnr24h-p.SNRFloor)/p.SNRSpan))
	}
	if len(parts) > 0 {
		add(p.WeightSignal, common.Reducer(parts, func(acc, v float64) float64 { return acc + v }, 0)/float64(len(parts)))
	}

	if h.StaleEventRatio7d != nil {
		add(p.WeightStaleness, 1-*h.StaleEventRatio7d)
	}

	if stateN >= 2 && p.FlapCeiling > 0 {
		add(p.WeightFlap, 1-common.Clamp01(float64(h.StateFlipCount7d)/days/p.FlapCeiling))
	}

	if weights == 0 {
		return nil
	}
	s := math.Round(1000*weighted/weights) / 10
	return &s
}
