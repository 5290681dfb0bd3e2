package notification

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/mail.v2"

	"natours/internal/metrics"
	"natours/internal/model"
)

// Template names, also used as metric labels.
const (
	TemplateWelcome       = "welcome"
	TemplatePasswordReset = "passwordReset"
)

// Notifier delivers account emails. Errors are returned to the caller, which
// decides whether a failed delivery matters.
type Notifier interface {
	SendWelcome(ctx context.Context, user *model.User, profileURL string) error
	SendPasswordReset(ctx context.Context, user *model.User, resetURL string) error
}

// Sender is the transport behind SMTPNotifier; *mail.Dialer implements it.
type Sender interface {
	DialAndSend(m ...*mail.Message) error
}

// SMTPNotifier sends multipart emails through an SMTP relay.
type SMTPNotifier struct {
	from   string
	sender Sender
}

// NewSMTPNotifier dials host:port with the given credentials for every message.
func NewSMTPNotifier(from, host string, port int, username, password string) *SMTPNotifier {
	return &SMTPNotifier{from: from, sender: mail.NewDialer(host, port, username, password)}
}

// NewSMTPNotifierWithSender is used when the transport is provided by the caller.
func NewSMTPNotifierWithSender(from string, sender Sender) *SMTPNotifier {
	return &SMTPNotifier{from: from, sender: sender}
}

func (n *SMTPNotifier) SendWelcome(ctx context.Context, user *model.User, profileURL string) error {
	return n.send(ctx, user, TemplateWelcome, "Welcome to the Natours Family!", profileURL)
}

func (n *SMTPNotifier) SendPasswordReset(ctx context.Context, user *model.User, resetURL string) error {
	return n.send(ctx, user, TemplatePasswordReset, "Your password reset token (valid for only 10 minutes)", resetURL)
}

func (n *SMTPNotifier) send(ctx context.Context, user *model.User, name, subject, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	html, text, err := render(name, firstName(user), url)
	if err != nil {
		return err
	}

	m := mail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", user.Email)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", text)
	m.AddAlternative("text/html", html)

	if err := n.sender.DialAndSend(m); err != nil {
		return fmt.Errorf("send %s email: %w", name, err)
	}
	return nil
}

var templates = template.Must(template.Must(template.New(TemplateWelcome).Parse(
	`<p>Hi {{.Name}},</p><p>Welcome to Natours, we're glad to have you 🎉🙏</p>` +
		`<p>Upload your user photo and get started: <a href="{{.URL}}">{{.URL}}</a></p>`,
)).New(TemplatePasswordReset).Parse(
	`<p>Hi {{.Name}},</p><p>Forgot your password? Submit a PATCH request with your new password and ` +
		`passwordConfirm to: <a href="{{.URL}}">{{.URL}}</a></p>` +
		`<p>If you didn't forget your password, please ignore this email!</p>`,
))

var plainText = map[string]string{
	TemplateWelcome:       "Hi %s,\n\nWelcome to Natours, we're glad to have you!\n\nUpload your user photo and get started: %s\n",
	TemplatePasswordReset: "Hi %s,\n\nForgot your password? Submit a PATCH request with your new password and passwordConfirm to: %s\n\nIf you didn't forget your password, please ignore this email!\n",
}

func render(name, firstName, url string) (html string, text string, err error) {
	tmpl := templates.Lookup(name)
	if tmpl == nil {
		return "", "", fmt.Errorf("unknown email template %q", name)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, struct{ Name, URL string }{firstName, url}); err != nil {
		return "", "", fmt.Errorf("render %s email: %w", name, err)
	}
	return buf.String(), fmt.Sprintf(plainText[name], firstName, url), nil
}

func firstName(u *model.User) string {
	if fields := strings.Fields(u.Name); len(fields) > 0 {
		return fields[0]
	}
	return "there"
}

// LogNotifier writes emails to the log instead of sending them. It is used
// when no SMTP relay is configured.
type LogNotifier struct {
	log *zap.Logger
}

// NewLogNotifier creates a notifier that only logs.
func NewLogNotifier(log *zap.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) SendWelcome(_ context.Context, user *model.User, profileURL string) error {
	n.log.Info("email not sent, no smtp relay configured",
		zap.String("template", TemplateWelcome), zap.String("to", user.Email), zap.String("url", profileURL))
	return nil
}

func (n *LogNotifier) SendPasswordReset(_ context.Context, user *model.User, resetURL string) error {
	n.log.Info("email not sent, no smtp relay configured",
		zap.String("template", TemplatePasswordReset), zap.String("to", user.Email), zap.String("url", resetURL))
	return nil
}

type instrumented struct {
	next    Notifier
	metrics *metrics.Metrics
}

// WithMetrics counts every delivery attempt of next.
func WithMetrics(next Notifier, m *metrics.Metrics) Notifier {
	if m == nil {
		return next
	}
	return &instrumented{next: next, metrics: m}
}

func (n *instrumented) SendWelcome(ctx context.Context, user *model.User, profileURL string) error {
	err := n.next.SendWelcome(ctx, user, profileURL)
	n.metrics.EmailSent(TemplateWelcome, err)
	return err
}

func (n *instrumented) SendPasswordReset(ctx context.Context, user *model.User, resetURL string) error {
	err := n.next.SendPasswordReset(ctx, user, resetURL)
	n.metrics.EmailSent(TemplatePasswordReset, err)
	return err
}
