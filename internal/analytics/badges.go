package analytics

type BadgeID string

const (
	BadgeSharpshooter BadgeID = "sharpshooter"
	BadgeSpeedDemon   BadgeID = "speed_demon"
	BadgeThirtyClub   BadgeID = "thirty_club"
	BadgeTriggerHappy BadgeID = "trigger_happy"
	BadgeFlawless     BadgeID = "flawless"
)

type Badge struct {
	ID          BadgeID `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
}

var AllBadges = map[BadgeID]Badge{
	BadgeSharpshooter: {ID: BadgeSharpshooter, Name: "Sharpshooter", Description: "90%+ accuracy over 10+ shots", Icon: "🎯"},
	BadgeSpeedDemon:   {ID: BadgeSpeedDemon, Name: "Speed Demon", Description: "Average reaction time under 500ms", Icon: "⚡"},
	BadgeThirtyClub:   {ID: BadgeThirtyClub, Name: "Thirty Club", Description: "30+ points in a single round", Icon: "💯"},
	BadgeTriggerHappy: {ID: BadgeTriggerHappy, Name: "Trigger Happy", Description: "2+ shots per second average", Icon: "🖱️"},
	BadgeFlawless:     {ID: BadgeFlawless, Name: "Flawless", Description: "10+ hits without a single miss", Icon: "✨"},
}

// EvaluateBadges checks which badges a round earned.
func EvaluateBadges(stats Stats, score, roundSeconds int) []Badge {
	var earned []Badge

	if stats.Shots >= 10 && stats.Accuracy() >= 90.0 {
		earned = append(earned, AllBadges[BadgeSharpshooter])
	}

	if stats.Hits >= 5 && stats.AvgReactionMs() < 500 {
		earned = append(earned, AllBadges[BadgeSpeedDemon])
	}

	if score >= 30 {
		earned = append(earned, AllBadges[BadgeThirtyClub])
	}

	if stats.ShotsPerSecond(roundSeconds) >= 2.0 {
		earned = append(earned, AllBadges[BadgeTriggerHappy])
	}

	if stats.Hits >= 10 && stats.Misses == 0 {
		earned = append(earned, AllBadges[BadgeFlawless])
	}

	return earned
}
