package risk

const (
	LevelHigh   = "HIGH RISK"
	LevelMedium = "MEDIUM RISK"
	LevelLow    = "LOW RISK"
)

type Level struct {
	Label string
	Emoji string
}

// LevelFor maps the number of risky sentences to a level.
func LevelFor(count int) Level {
	switch {
	case count >= 5:
		return Level{Label: LevelHigh, Emoji: "🔴"}
	case count >= 2:
		return Level{Label: LevelMedium, Emoji: "🟠"}
	default:
		return Level{Label: LevelLow, Emoji: "🟢"}
	}
}
