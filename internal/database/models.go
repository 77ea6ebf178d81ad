package database

// DateLayout is the calendar-date format used for the usage ledger.
// Day boundaries are whatever the configured location considers midnight.
const DateLayout = "2006-01-02"

// Award pairs a hashtag with its point value for a single scoring event.
type Award struct {
	Hashtag string
	Points  int
}

// LeaderboardEntry is one row of a chat's standings.
type LeaderboardEntry struct {
	UserName string `db:"user_name"`
	Points   int    `db:"points"`
}
