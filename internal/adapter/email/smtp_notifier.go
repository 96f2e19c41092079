package email

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"html"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/Ismail-Mert-Eksi/GuvenOto/internal/listing/domain"
	"github.com/Ismail-Mert-Eksi/GuvenOto/internal/platform/logger"
)

const queueSize = 64

var ErrQueueFull = errors.New("notification queue is full")

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       string
}

// SMTPNotifier mails the shop owner about new listings. Messages are queued
// and sent by Run so a slow mail server never holds up a request.
type SMTPNotifier struct {
	cfg    SMTPConfig
	dialer *gomail.Dialer
	queue  chan *gomail.Message
	logger *logger.Logger
}

func NewSMTPNotifier(cfg SMTPConfig, log *logger.Logger) (*SMTPNotifier, error) {
	if cfg.Host == "" || cfg.Port == 0 || cfg.To == "" {
		return nil, fmt.Errorf("SMTP host, port and recipient must be configured")
	}
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	if cfg.From == "" {
		cfg.From = "no-reply@" + cfg.Host
	}

	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	if cfg.Port == 465 {
		dialer.SSL = true
	}
	dialer.TLSConfig = &tls.Config{ServerName: cfg.Host, MinVersion: tls.VersionTLS12}

	return &SMTPNotifier{
		cfg:    cfg,
		dialer: dialer,
		queue:  make(chan *gomail.Message, queueSize),
		logger: log.Named("SMTPNotifier"),
	}, nil
}

func (n *SMTPNotifier) NotifyListingCreated(l *domain.Listing) error {
	m := n.buildListingCreatedMessage(l)
	select {
	case n.queue <- m:
		return nil
	default:
		return ErrQueueFull
	}
}

// Run sends queued messages until ctx is done.
func (n *SMTPNotifier) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case m := <-n.queue:
			if err := n.dialer.DialAndSend(m); err != nil {
				n.logger.Error("Failed to send notification", zap.Strings("subject", m.GetHeader("Subject")), zap.Error(err))
				continue
			}
			n.logger.Info("Notification sent", zap.Strings("subject", m.GetHeader("Subject")))
		}
	}
}

func (n *SMTPNotifier) buildListingCreatedMessage(l *domain.Listing) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", n.cfg.From)
	m.SetHeader("To", n.cfg.To)
	m.SetHeader("Subject", fmt.Sprintf("Yeni ilan: %s - %s", l.ListingNumber, l.Title))

	var text strings.Builder
	fmt.Fprintf(&text, "İlan No: %s\n", l.ListingNumber)
	fmt.Fprintf(&text, "Başlık: %s\n", l.Title)
	if l.Brand != "" {
		fmt.Fprintf(&text, "Marka: %s\n", strings.TrimSpace(strings.Join([]string{l.Brand, l.Series, l.Model}, " ")))
	}
	fmt.Fprintf(&text, "Fiyat: %s\n", formatPrice(l.Price))
	fmt.Fprintf(&text, "Görsel sayısı: %d\n", len(l.Images))

	m.SetBody("text/plain", text.String())
	m.AddAlternative("text/html", "<pre>"+html.EscapeString(text.String())+"</pre>")
	return m
}

func formatPrice(p *float64) string {
	if p == nil {
		return "Fiyat sorunuz"
	}
	return fmt.Sprintf("%.0f TL", *p)
}
