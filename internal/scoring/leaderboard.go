package scoring

import (
	"fmt"
	"strings"

	"github.com/Ectormind/bot-punteggio-ha-repository/internal/database"
)

var medals = [...]string{"🥇", "🥈", "🥉"}

// FormatLeaderboard renders ranked standings as human-readable text. The top
// three ranks get medal decorations, every other rank a plain ordinal line.
// An empty leaderboard renders as the fixed empty message. The function has
// no side effects and performs no I/O.
func FormatLeaderboard(entries []database.LeaderboardEntry, header, empty string) string {
	if len(entries) == 0 {
		return empty
	}

	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n")
	for i, entry := range entries {
		rank := i + 1
		if i < len(medals) {
			fmt.Fprintf(&b, "%s %d. %s: %d punti\n", medals[i], rank, entry.UserName, entry.Points)
		} else {
			fmt.Fprintf(&b, "%d. %s: %d punti\n", rank, entry.UserName, entry.Points)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
