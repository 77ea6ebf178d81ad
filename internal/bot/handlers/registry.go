package handlers

import (
	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// RegisteredHandler represents a handler with its match rule and middleware.
// When MatchFunc is set it takes precedence over Pattern/MatchType.
type RegisteredHandler struct {
	HandlerType tgbot.HandlerType
	Pattern     string
	MatchType   tgbot.MatchType
	MatchFunc   func(update *models.Update) bool
	Handler     tgbot.HandlerFunc
	Middleware  []tgbot.Middleware
}

// RegisterAllHandlers initializes and returns a map of all bot handlers,
// each gated behind the chat authorization middleware.
func RegisterAllHandlers(deps HandlerDeps) map[string]RegisteredHandler {
	handlers := make(map[string]RegisteredHandler)

	authMiddleware := []tgbot.Middleware{ChatAuthorized(deps)}

	handlers["/start"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "start",
		Handler:     NewStartHandler(deps),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
		Middleware:  authMiddleware,
	}
	handlers["/classifica"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "classifica",
		Handler:     NewLeaderboardHandler(deps),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
		Middleware:  authMiddleware,
	}
	handlers["/reset"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "reset",
		Handler:     NewResetHandler(deps),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
		Middleware:  authMiddleware,
	}
	handlers["score"] = RegisteredHandler{
		MatchFunc:  MatchScorable,
		Handler:    NewScoreHandler(deps),
		Middleware: authMiddleware,
	}

	return handlers
}
