package mail

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dtroode/reelscore-server/internal/logger"
	"github.com/dtroode/reelscore-server/internal/model"
)

// Processor turns queued jobs into outgoing mail.
type Processor struct {
	sender Sender
	appURL string
	from   string
	logger *logger.Logger
}

func NewProcessor(sender Sender, appURL, from string, l *logger.Logger) *Processor {
	return &Processor{
		sender: sender,
		appURL: appURL,
		from:   from,
		logger: l,
	}
}

// Process handles one job. Unknown job names are logged and skipped so they
// are not redelivered forever.
func (p *Processor) Process(ctx context.Context, job model.Job) error {
	p.logger.Debug("Mail processor: processing job", "job", job.Name)

	switch job.Name {
	case model.JobConfirmation:
		var payload model.ConfirmationJob
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return fmt.Errorf("failed to decode confirmation job: %w: %w", model.ErrUnprocessableJob, err)
		}
		return p.sendConfirmation(ctx, payload)
	default:
		p.logger.Warn("Mail processor: unknown job type", "job", job.Name)
		return nil
	}
}

func (p *Processor) sendConfirmation(ctx context.Context, job model.ConfirmationJob) error {
	html, err := RenderConfirmation(job.Name, VerificationURL(p.appURL, job.Token))
	if err != nil {
		return err
	}

	err = p.sender.Send(ctx, Message{
		From:    p.from,
		To:      job.Email,
		Subject: ConfirmationSubject,
		HTML:    html,
	})
	if err != nil {
		return fmt.Errorf("failed to send confirmation email: %w", err)
	}

	p.logger.Info("Mail processor: confirmation email sent", "name", job.Name)
	return nil
}
