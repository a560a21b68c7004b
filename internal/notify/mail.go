package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"linkbio-backend/internal/config"
)

// OwnerEmailSource resolves the owner's notification address.
type OwnerEmailSource interface {
	GetOwnerEmail(ctx context.Context) (string, error)
}

// MailNotifier delivers events over SMTP to the site owner. When delivery
// fails and a Discord webhook exists, the event falls back to Discord so the
// owner still hears about it.
type MailNotifier struct {
	cfg      config.SMTPConfig
	owner    OwnerEmailSource
	fallback *DiscordNotifier

	// send is swappable for tests.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewMailNotifier(cfg config.SMTPConfig, owner OwnerEmailSource, fallback *DiscordNotifier) *MailNotifier {
	return &MailNotifier{cfg: cfg, owner: owner, fallback: fallback, send: smtp.SendMail}
}

func (n *MailNotifier) Name() string { return "mail" }

func (n *MailNotifier) Send(ctx context.Context, ev Event) error {
	if !n.cfg.Enabled() {
		return nil
	}
	to, err := n.owner.GetOwnerEmail(ctx)
	if err != nil {
		return fmt.Errorf("resolve owner email: %w", err)
	}
	if to == "" {
		return fmt.Errorf("no owner email configured")
	}

	if err := n.sendMail(to, ev); err != nil {
		if n.fallback != nil {
			if fbErr := n.fallback.Send(ctx, ev); fbErr == nil {
				return nil
			}
		}
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

func (n *MailNotifier) sendMail(to string, ev Event) error {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", n.cfg.From)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", ev.Title)
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	for _, f := range ev.Fields {
		fmt.Fprintf(&b, "%s: %s\r\n", f.Name, f.Value)
	}
	fmt.Fprintf(&b, "\r\nSent %s\r\n", ev.OccurredAt.UTC().Format("2006-01-02 15:04:05 UTC"))

	addr := fmt.Sprintf("%s:%d", n.cfg.Host, n.cfg.Port)
	var a smtp.Auth
	if n.cfg.User != "" {
		a = smtp.PlainAuth("", n.cfg.User, n.cfg.Password, n.cfg.Host)
	}
	return n.send(addr, a, n.cfg.From, []string{to}, []byte(b.String()))
}
