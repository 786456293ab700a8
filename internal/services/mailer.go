package services

import (
	"context"
	"fmt"
	"html"
	"time"

	"stichting-asha/internal/models"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

// MailerConfig points at a ZeptoMail style HTTP mail API.
type MailerConfig struct {
	APIURL    string
	APIKey    string
	From      string
	PublicURL string
}

type mailRequest struct {
	From     mailAddress     `json:"from"`
	To       []mailRecipient `json:"to"`
	Subject  string          `json:"subject"`
	HTMLBody string          `json:"htmlbody"`
}

type mailAddress struct {
	Address string `json:"address"`
	Name    string `json:"name,omitempty"`
}

type mailRecipient struct {
	Email mailAddress `json:"email_address"`
}

// Mailer sends transactional mail. A mailer without an API URL logs and
// skips every message.
type Mailer struct {
	cfg    MailerConfig
	client *resty.Client
	log    logrus.FieldLogger
}

func NewMailer(cfg MailerConfig, log logrus.FieldLogger) *Mailer {
	client := resty.New().
		SetTimeout(15*time.Second).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json")
	if cfg.APIKey != "" {
		client.SetHeader("Authorization", cfg.APIKey)
	}

	return &Mailer{cfg: cfg, client: client, log: log}
}

func (m *Mailer) Enabled() bool {
	return m.cfg.APIURL != ""
}

func (m *Mailer) Send(ctx context.Context, to, name, subject, body string) error {
	if !m.Enabled() {
		m.log.WithField("subject", subject).Debug("mail disabled, message skipped")
		return nil
	}

	payload := mailRequest{
		From:     mailAddress{Address: m.cfg.From, Name: "Stichting Asha"},
		To:       []mailRecipient{{Email: mailAddress{Address: to, Name: name}}},
		Subject:  subject,
		HTMLBody: body,
	}

	resp, err := m.client.R().
		SetContext(ctx).
		SetBody(payload).
		Post(m.cfg.APIURL)
	if err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("send mail: mail API returned %s", resp.Status())
	}

	m.log.WithField("subject", subject).Info("mail sent")
	return nil
}

// ResetLink is the front-end URL that completes a password reset.
func (m *Mailer) ResetLink(token string) string {
	return m.cfg.PublicURL + "/reset-password?token=" + token
}

func (m *Mailer) SendPasswordReset(ctx context.Context, user *models.User, token string) error {
	link := m.ResetLink(token)
	body := fmt.Sprintf(
		`<p>Beste %s,</p><p>Je hebt gevraagd om je wachtwoord opnieuw in te stellen. Klik op de onderstaande link om een nieuw wachtwoord te kiezen. De link is een uur geldig.</p><p><a href="%s">Wachtwoord opnieuw instellen</a></p><p>Heb je dit niet aangevraagd? Dan kun je deze e-mail negeren.</p>`,
		html.EscapeString(user.DisplayName()), html.EscapeString(link),
	)
	return m.Send(ctx, user.Email, user.Name, "Wachtwoord opnieuw instellen", body)
}

func (m *Mailer) SendVolunteerDecision(ctx context.Context, v *models.Volunteer) error {
	var subject, text string
	switch v.Status {
	case models.VolunteerApproved:
		subject = "Je aanmelding als vrijwilliger is goedgekeurd"
		text = "Goed nieuws: je aanmelding als vrijwilliger bij Stichting Asha is goedgekeurd. We nemen binnenkort contact met je op."
	case models.VolunteerDenied:
		subject = "Je aanmelding als vrijwilliger"
		text = "Bedankt voor je interesse in Stichting Asha. Helaas kunnen we je aanmelding op dit moment niet aannemen."
	default:
		return nil
	}

	body := fmt.Sprintf("<p>Beste %s,</p><p>%s</p><p>Met vriendelijke groet,<br>Stichting Asha</p>",
		html.EscapeString(v.FirstName), text)
	return m.Send(ctx, v.Email, v.FullName(), subject, body)
}
