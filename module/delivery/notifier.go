package delivery

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nikoksr/notify"
	"github.com/nikoksr/notify/service/mail"
)

type MailConfig struct {
	Host       string
	Port       int
	User       string
	Password   string
	Sender     string
	Recipients []string
}

// logService is always registered so notifications stay visible when no
// mail server is configured.
type logService struct{}

func (logService) Send(ctx context.Context, subject, message string) error {
	slog.InfoContext(ctx, "Notification", "title", subject, "body", message)
	return nil
}

func NewNotifier(cfg MailConfig) *notify.Notify {
	notifier := notify.New()
	notifier.UseServices(logService{})

	if cfg.Host == "" || len(cfg.Recipients) == 0 {
		return notifier
	}

	from := cfg.Sender
	if from == "" {
		from = cfg.User
	}
	mailSvc := mail.New(from, fmt.Sprintf("%s:%d", cfg.Host, cfg.Port))
	if cfg.User != "" {
		mailSvc.AuthenticateSMTP("", cfg.User, cfg.Password, cfg.Host)
	}
	mailSvc.AddReceivers(cfg.Recipients...)
	notifier.UseServices(mailSvc)
	return notifier
}
