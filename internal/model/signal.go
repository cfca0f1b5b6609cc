package model

// Category classifies a bar by price against its SMA20 and volume against the
// series mean volume.
type Category string

const (
	CategoryBullish      Category = "BULLISH"
	CategoryBearish      Category = "BEARISH"
	CategoryNeutral      Category = "NEUTRAL"
	CategoryUnclassified Category = "UNCLASSIFIED"
)

// Directional reports whether the category carries a bullish or bearish signal.
func (c Category) Directional() bool {
	return c == CategoryBullish || c == CategoryBearish
}

// RefreshTrigger indicates what caused a chart rebuild.
type RefreshTrigger string

const (
	TriggerStartup  RefreshTrigger = "STARTUP"
	TriggerSchedule RefreshTrigger = "SCHEDULE"
	TriggerManual   RefreshTrigger = "MANUAL"
)
