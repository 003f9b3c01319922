package sampler

// Heat is the display tier derived from an interest counter's current
// magnitude. It never gates increments.
type Heat string

const (
	HeatHot     Heat = "hot"
	HeatPopular Heat = "popular"
	HeatNew     Heat = "new"
)

// HeatOf classifies a count. Pure function of the current value.
func HeatOf(count int) Heat {
	switch {
	case count >= 1000:
		return HeatHot
	case count >= 500:
		return HeatPopular
	default:
		return HeatNew
	}
}
