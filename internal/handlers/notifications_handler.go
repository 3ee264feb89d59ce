package handlers

import (
	"context"

	"go.uber.org/zap"

	notificationsmodels "io.winapps.heartline/internal/models/notifications"
	"io.winapps.heartline/internal/store"
)

// DispatchRunner runs one due-notification dispatch pass.
type DispatchRunner interface {
	Run(ctx context.Context) (*notificationsmodels.Summary, error)
}

type NotificationsHandler struct {
	runner    DispatchRunner
	tokens    *store.Tokens
	profiles  *store.Profiles
	schedules *store.Schedules
	logs      *store.DeliveryLogs
	secret    string
	logger    *zap.SugaredLogger
}

func NewNotificationsHandler(runner DispatchRunner, tokens *store.Tokens, profiles *store.Profiles, schedules *store.Schedules, logs *store.DeliveryLogs, secret string, logger *zap.SugaredLogger) *NotificationsHandler {
	return &NotificationsHandler{
		runner:    runner,
		tokens:    tokens,
		profiles:  profiles,
		schedules: schedules,
		logs:      logs,
		secret:    secret,
		logger:    logger,
	}
}
