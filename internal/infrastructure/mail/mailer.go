package mail

import (
	"context"
	"fmt"
	"time"

	"github.com/St1cky1/task-portal/internal/entity"
)

// Sender delivers an already composed message.
type Sender interface {
	Send(ctx context.Context, from, to string, raw []byte) error
}

// Mailer renders a named template and sends it.
type Mailer struct {
	sender Sender
	from   string
	now    func() time.Time
}

func NewMailer(sender Sender, from string) *Mailer {
	return &Mailer{sender: sender, from: from, now: time.Now}
}

func (m *Mailer) Send(ctx context.Context, msg *entity.EmailMessage) error {
	subject, body, err := Render(msg.Template, msg.Params)
	if err != nil {
		return err
	}
	raw, err := Compose(m.from, msg.To, subject, body, m.now())
	if err != nil {
		return err
	}
	if err := m.sender.Send(ctx, m.from, msg.To, raw); err != nil {
		return fmt.Errorf("sending %s email: %w", msg.Template, err)
	}
	return nil
}
