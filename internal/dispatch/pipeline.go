package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"io.winapps.heartline/internal/compose"
	"io.winapps.heartline/internal/expo"
	notificationsmodels "io.winapps.heartline/internal/models/notifications"
)

// ErrRunInProgress means another invocation holds the dispatch lease.
var ErrRunInProgress = errors.New("another dispatch run is in progress")

// ScheduleSource yields the due snapshot and records processed entries.
type ScheduleSource interface {
	Due(ctx context.Context) ([]notificationsmodels.ScheduleEntry, error)
	MarkProcessed(ctx context.Context, scheduleID string) error
}

// TokenSource resolves a user's push token.
type TokenSource interface {
	Token(ctx context.Context, userID string) (string, error)
}

// ProfileSource resolves a user's persona profile.
type ProfileSource interface {
	Profile(ctx context.Context, userID string) (*notificationsmodels.Profile, error)
}

// LogAppender records one delivery attempt.
type LogAppender interface {
	Append(ctx context.Context, rec *notificationsmodels.DeliveryLog) error
}

// Sender delivers one message through the push gateway.
type Sender interface {
	Send(ctx context.Context, msg expo.PushMessage) (map[string]interface{}, error)
}

// Lease serializes overlapping pipeline invocations. Acquire hands the run
// its own release so two runs sharing one Lease cannot release each other.
type Lease interface {
	Acquire(ctx context.Context) (release func(context.Context) error, acquired bool, err error)
}

// Pipeline processes the due snapshot one entry at a time: resolve token,
// validate its format, resolve the profile, compose, send, log, mark
// processed. Nothing an individual entry does can abort the run; the only
// run-level failures are lease acquisition and the due query itself.
type Pipeline struct {
	schedules ScheduleSource
	tokens    TokenSource
	profiles  ProfileSource
	logs      LogAppender
	sender    Sender
	composer  compose.Composer
	lease     Lease
	logger    *zap.SugaredLogger
}

func New(schedules ScheduleSource, tokens TokenSource, profiles ProfileSource, logs LogAppender, sender Sender, composer compose.Composer, lease Lease, logger *zap.SugaredLogger) *Pipeline {
	return &Pipeline{
		schedules: schedules,
		tokens:    tokens,
		profiles:  profiles,
		logs:      logs,
		sender:    sender,
		composer:  composer,
		lease:     lease,
		logger:    logger,
	}
}

// Run executes one pipeline invocation over the due snapshot taken at start.
// Entries becoming due mid-run wait for the next invocation.
func (p *Pipeline) Run(ctx context.Context) (*notificationsmodels.Summary, error) {
	if p.lease != nil {
		release, acquired, err := p.lease.Acquire(ctx)
		if err != nil {
			return nil, fmt.Errorf("acquiring dispatch lease: %w", err)
		}
		if !acquired {
			return nil, ErrRunInProgress
		}
		defer func() {
			if err := release(ctx); err != nil {
				p.logger.Warnw("failed to release dispatch lease", "error", err)
			}
		}()
	}

	due, err := p.schedules.Due(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading due schedules: %w", err)
	}

	summary := &notificationsmodels.Summary{Due: len(due), Results: []notificationsmodels.EntryResult{}}
	for _, entry := range due {
		result := p.processEntry(ctx, entry)
		summary.Results = append(summary.Results, result)
	}

	p.logger.Infow("dispatch run completed", "due", summary.Due)
	return summary, nil
}

// processEntry runs the per-entry state machine. Whatever branch is taken,
// exactly one delivery log record is appended and last_sent_at is stamped
// exactly once: a failed occurrence is terminal until the schedule is
// naturally due again.
func (p *Pipeline) processEntry(ctx context.Context, entry notificationsmodels.ScheduleEntry) notificationsmodels.EntryResult {
	result := notificationsmodels.EntryResult{
		ScheduleID: entry.ID,
		UserID:     entry.UserID,
		Label:      entry.Label,
	}
	rec := &notificationsmodels.DeliveryLog{
		ID:            uuid.New().String(),
		UserID:        entry.UserID,
		ScheduleLabel: entry.Label,
		CreatedAt:     time.Now().UTC(),
	}
	defer func() {
		rec.Status = result.Status
		rec.Error = result.Error
		p.appendLog(ctx, rec)
		p.markProcessed(ctx, entry)
	}()

	token, err := p.tokens.Token(ctx, entry.UserID)
	if err != nil || token == "" {
		result.Status = notificationsmodels.StatusNoToken
		if err != nil {
			result.Error = err.Error()
		}
		return result
	}
	rec.Token = token

	if !expo.IsLikelyExpoToken(token) {
		result.Status = notificationsmodels.StatusBadToken
		return result
	}

	profile, err := p.profiles.Profile(ctx, entry.UserID)
	if err != nil || profile == nil {
		result.Status = notificationsmodels.StatusNoProfile
		if err != nil {
			result.Error = err.Error()
		}
		return result
	}

	msg, composeErr := p.composer.Compose(ctx, profile)
	if composeErr != nil {
		// Fallback text is still delivered; the degradation is only recorded.
		result.Error = composeErr.Error()
		p.logger.Warnw("composer degraded to fallback",
			"user_id", entry.UserID, "label", entry.Label, "error", composeErr)
	}
	rec.Title = msg.Title
	rec.Body = msg.Body

	data := map[string]string{"type": "persona_message", "label": entry.Label}
	rec.Payload = data

	response, sendErr := p.sender.Send(ctx, expo.PushMessage{
		To:    token,
		Title: msg.Title,
		Body:  msg.Body,
		Sound: "default",
		Data:  data,
	})
	rec.ProviderResponse = response

	if sendErr != nil {
		result.Status = notificationsmodels.StatusFailed
		if result.Error != "" {
			result.Error = result.Error + "; " + sendErr.Error()
		} else {
			result.Error = sendErr.Error()
		}
		p.logger.Warnw("push send failed",
			"user_id", entry.UserID, "label", entry.Label, "error", sendErr)
		return result
	}

	result.Status = notificationsmodels.StatusSent
	return result
}

// appendLog is best effort: a failed log write must never abort the run.
func (p *Pipeline) appendLog(ctx context.Context, rec *notificationsmodels.DeliveryLog) {
	if err := p.logs.Append(ctx, rec); err != nil {
		p.logger.Warnw("failed to append delivery log",
			"user_id", rec.UserID, "label", rec.ScheduleLabel, "error", err)
	}
}

func (p *Pipeline) markProcessed(ctx context.Context, entry notificationsmodels.ScheduleEntry) {
	if err := p.schedules.MarkProcessed(ctx, entry.ID); err != nil {
		p.logger.Errorw("failed to mark schedule processed",
			"schedule_id", entry.ID, "user_id", entry.UserID, "error", err)
	}
}
