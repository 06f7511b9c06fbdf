package video

import (
	"fmt"
	"strings"
)

// Tier selects the target script length and expected video duration.
type Tier string

const (
	TierShort  Tier = "short"
	TierMedium Tier = "medium"
	TierLong   Tier = "long"
)

// TierSpec is the script budget for a tier.
type TierSpec struct {
	Words    int
	Duration string
	MaxChars int
}

var tierSpecs = map[Tier]TierSpec{
	TierShort:  {Words: 200, Duration: "1-2 minutos", MaxChars: 1000},
	TierMedium: {Words: 400, Duration: "3-5 minutos", MaxChars: 2000},
	TierLong:   {Words: 700, Duration: "5-10 minutos", MaxChars: 3500},
}

// ParseTier accepts the wire names short, medium and long.
func ParseTier(s string) (Tier, error) {
	t := Tier(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := tierSpecs[t]; !ok {
		return "", fmt.Errorf("video: unknown duration %q (want short, medium or long)", s)
	}
	return t, nil
}

// Spec returns the budget for t. ok is false for unknown tiers.
func (t Tier) Spec() (TierSpec, bool) {
	spec, ok := tierSpecs[t]
	return spec, ok
}
