// Package managers handles the sending of emails for account activation and
// new-entry notifications using the Mailgun service and the Hermes package
// for email formatting.
package managers

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/mailgun/mailgun-go/v4"
	"github.com/matcornic/hermes/v2"
	log "github.com/sirupsen/logrus"
)

// MailMgr is an interface that outlines the contract for email management.
type MailMgr interface {
	SendActivationMail(email, username, activationLink string) error
	SendConfirmationMail(email, username string) error
	SendNewEntryMail(recipients []string, title, entryLink string) error
}

// MailManager is a concrete implementation of the MailMgr interface.
// It uses the Mailgun service for sending emails and the Hermes package for formatting them.
type MailManager struct {
	Hermes  *hermes.Hermes
	Mailgun *mailgun.MailgunImpl
}

var from = "Blog App <no-reply@mail.blogserver.dev>"
var environment string

// SendActivationMail sends an activation email containing the activation
// link that completes the registration.
func (mm *MailManager) SendActivationMail(email, username, activationLink string) error {
	if environment != "production" {
		log.Info("Skipping activation mail in development mode")
		return nil
	}

	mailBody := hermes.Email{
		Body: hermes.Body{
			Name: username,
			Intros: []string{
				"Welcome to Blog App! We're very excited to have you on board.",
			},
			Outros: []string{
				"If you did not register for Blog App, you can safely ignore this email.",
			},
			Actions: []hermes.Action{
				{
					Instructions: "To activate your account, please click the button below:",
					Button: hermes.Button{
						Text: "Activate your account",
						Link: activationLink,
					},
				},
			},
		},
	}

	emailBody, err := mm.Hermes.GenerateHTML(mailBody)
	if err != nil {
		return err
	}

	return mm.send("BlogApp: Registration Confirm", "Confirm your registration", emailBody, email)
}

// SendConfirmationMail confirms to a user that their account has been activated.
func (mm *MailManager) SendConfirmationMail(email, username string) error {
	if environment != "production" {
		log.Info("Skipping confirmation mail in development mode")
		return nil
	}

	mailBody := hermes.Email{
		Body: hermes.Body{
			Name: username,
			Intros: []string{
				"Your account has been successfully activated!",
			},
			Outros: []string{
				"Have fun writing and reading on Blog App!",
			},
		},
	}

	emailBody, err := mm.Hermes.GenerateHTML(mailBody)
	if err != nil {
		return err
	}

	return mm.send("Account successfully activated", "Your account is now active", emailBody, email)
}

// SendNewEntryMail notifies every newsletter subscriber about a freshly
// published entry.
func (mm *MailManager) SendNewEntryMail(recipients []string, title, entryLink string) error {
	if environment != "production" {
		log.Info("Skipping new-entry mail in development mode")
		return nil
	}

	if len(recipients) == 0 {
		return nil
	}

	mailBody := hermes.Email{
		Body: hermes.Body{
			Intros: []string{
				fmt.Sprintf("A new entry was just published: %s", title),
			},
			Actions: []hermes.Action{
				{
					Instructions: "Read it here:",
					Button: hermes.Button{
						Text: title,
						Link: entryLink,
					},
				},
			},
			Outros: []string{
				"You receive this mail because you subscribed to the Blog App newsletter.",
			},
		},
	}

	emailBody, err := mm.Hermes.GenerateHTML(mailBody)
	if err != nil {
		return err
	}

	return mm.send("Blog App: New Blog!", fmt.Sprintf("New entry %s", title), emailBody, recipients...)
}

func (mm *MailManager) send(subject, text, html string, recipients ...string) error {
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(5*time.Second))
	defer cancel()

	message := mm.Mailgun.NewMessage(from, subject, text, recipients...)
	message.SetHtml(html)

	if _, _, err := mm.Mailgun.Send(ctx, message); err != nil {
		log.Warning("Error sending mail: " + err.Error())
		return err
	}
	log.Debug("Mail sent to ", recipients)

	return nil
}

// NewMailManager initializes a new MailManager instance with configured
// Mailgun and Hermes settings. Outside of production, mails are logged and
// skipped instead of sent.
func NewMailManager() MailMgr {
	log.Info("Initializing mail manager")
	environment = os.Getenv("ENVIRONMENT")

	if environment != "production" {
		log.Println("Running in development mode, email will not be sent to users")
	}

	domain := os.Getenv("MAIL_DOMAIN")
	if domain == "" {
		domain = "mail.blogserver.dev"
	}

	apiKey := os.Getenv("MAILGUN_API_KEY")
	mailgunInstance := mailgun.NewMailgun(domain, apiKey)
	mailgunInstance.SetAPIBase(mailgun.APIBaseEU)

	mm := &MailManager{
		Hermes: &hermes.Hermes{
			Theme:         new(hermes.Default),
			TextDirection: hermes.TDLeftToRight,
			Product: hermes.Product{
				Name:      "Blog App",
				Link:      "https://blogserver.dev/",
				Copyright: "© Blog App",
			},
		},
		Mailgun: mailgunInstance,
	}
	log.Info("Initialized mail manager")
	return mm
}
