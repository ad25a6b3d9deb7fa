package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/St1cky1/task-portal/internal/entity"
	"github.com/St1cky1/task-portal/internal/infrastructure/client"
)

type Mailer interface {
	Send(ctx context.Context, msg *entity.EmailMessage) error
}

// EmailWorker delivers queued emails. Delivery is fire-and-forget: a failed
// send is logged and dropped.
type EmailWorker struct {
	consumer *consumer
	mailer   Mailer
	logger   *slog.Logger
}

func NewEmailWorker(opener ChannelOpener, mailer Mailer, logger *slog.Logger) *EmailWorker {
	w := &EmailWorker{
		mailer: mailer,
		logger: logger,
	}
	w.consumer = &consumer{
		opener: opener,
		queue:  client.EmailQueue,
		tag:    "email_worker",
		handle: w.Handle,
		logger: logger,
	}
	return w
}

func (w *EmailWorker) Start(ctx context.Context) {
	w.consumer.start(ctx)
}

func (w *EmailWorker) Handle(ctx context.Context, body []byte) error {
	var msg entity.EmailMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return permanent(fmt.Errorf("parsing email message: %w", err))
	}
	if msg.To == "" {
		return permanent(fmt.Errorf("email message has no recipient"))
	}

	if err := w.mailer.Send(ctx, &msg); err != nil {
		return permanent(err)
	}

	w.logger.Info("email sent", slog.String("template", msg.Template))
	return nil
}
