package config

import (
	"github.com/spf13/viper"

	"github.com/Ectormind/bot-punteggio-ha-repository/internal/scoring"
)

// Default values for optional configuration parameters.
const (
	DefaultLogLevel = "info"
	DefaultLogJSON  = false

	DefaultDBPath = "/data/scores.db"

	DefaultTimezone            = "Local"
	DefaultLedgerRetentionDays = 7

	DefaultWebhookListenAddr = ":8081"
)

// Default user-facing messages. The award and warning texts mirror what users
// of the original deployment already expect to see.
const (
	DefaultMsgStart             = "Invia un hashtag per guadagnare punti!\nOgni hashtag vale solo una volta al giorno!"
	DefaultMsgAlreadyUsed       = "⚠️ %s, hai già usato oggi: %s"
	DefaultMsgAwarded           = "%s ha guadagnato %d punti! 🎉"
	DefaultMsgLeaderboardHeader = "🏆 Classifica attuale:"
	DefaultMsgLeaderboardEmpty  = "Classifica vuota!"
	DefaultMsgResetDone         = "Classifica e parole resettate per questa chat!"
	DefaultMsgGeneralError      = "❌ Si è verificato un errore. Riprova più tardi."
	DefaultMsgUnauthorizedAlert = "❌ Il bot è stato usato da una chat non autorizzata.\nChat ID: %d"
)

// setDefaults registers default values for all optional parameters.
func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", DefaultLogLevel)
	v.SetDefault("logger.json", DefaultLogJSON)

	v.SetDefault("database.path", DefaultDBPath)

	v.SetDefault("scoring.hashtags", scoring.DefaultHashtags())
	v.SetDefault("scoring.timezone", DefaultTimezone)
	v.SetDefault("scoring.ledger_retention_days", DefaultLedgerRetentionDays)

	v.SetDefault("telegram.webhook.enabled", false)
	v.SetDefault("telegram.webhook.listen_addr", DefaultWebhookListenAddr)

	v.SetDefault("messages.start", DefaultMsgStart)
	v.SetDefault("messages.already_used", DefaultMsgAlreadyUsed)
	v.SetDefault("messages.awarded", DefaultMsgAwarded)
	v.SetDefault("messages.leaderboard_header", DefaultMsgLeaderboardHeader)
	v.SetDefault("messages.leaderboard_empty", DefaultMsgLeaderboardEmpty)
	v.SetDefault("messages.reset_done", DefaultMsgResetDone)
	v.SetDefault("messages.general_error", DefaultMsgGeneralError)
	v.SetDefault("messages.unauthorized_alert", DefaultMsgUnauthorizedAlert)

	v.SetDefault("scheduler.tasks.sql_maintenance.enabled", true)
	v.SetDefault("scheduler.tasks.sql_maintenance.schedule", "0 4 * * *")
	v.SetDefault("scheduler.tasks.ledger_cleanup.enabled", true)
	v.SetDefault("scheduler.tasks.ledger_cleanup.schedule", "30 4 * * *")
}
