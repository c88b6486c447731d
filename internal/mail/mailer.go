package mail

import (
	"fmt"
	"log"
	"strings"

	"gopkg.in/gomail.v2"

	"fanpuri-backend/internal/models"
)

// Mailer sends the storefront's transactional mail. Every caller treats
// delivery as best-effort.
type Mailer interface {
	SendOrderConfirmation(to string, order models.Order) error
	SendWaitlistConfirmation(to, productName string) error
}

// SMTPMailer delivers through a plain SMTP relay.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(host string, port int, user, pass, from string) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, user, pass),
		from:   from,
	}
}

func (m *SMTPMailer) SendOrderConfirmation(to string, order models.Order) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", fmt.Sprintf("Your Fanpuri order %s", order.OrderID))
	msg.SetBody("text/plain", OrderConfirmationBody(order))
	return m.dialer.DialAndSend(msg)
}

func (m *SMTPMailer) SendWaitlistConfirmation(to, productName string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", fmt.Sprintf("You're on the waitlist for %s", productName))
	msg.SetBody("text/plain", fmt.Sprintf(
		"We'll let you know as soon as %s is back in stock.\n\n- The Fanpuri team", productName))
	return m.dialer.DialAndSend(msg)
}

// OrderConfirmationBody renders the plain-text confirmation. Separate from
// sending so it can be checked without a relay.
func OrderConfirmationBody(order models.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Thanks for your order, it's in!\n\nOrder %s\n\n", order.OrderID)
	for _, item := range order.Items {
		fmt.Fprintf(&b, "  %d x %s @ %.2f\n", item.Quantity, item.Name, item.Price)
	}
	fmt.Fprintf(&b, "\nTotal: %.2f\n\n- The Fanpuri team", order.TotalPrice)
	return b.String()
}

// LogMailer is the no-relay fallback: it records what would have been sent.
type LogMailer struct{}

func (LogMailer) SendOrderConfirmation(to string, order models.Order) error {
	log.Printf("[MAIL] [INFO] skipped order confirmation to %s for %s (no SMTP configured)", to, order.OrderID)
	return nil
}

func (LogMailer) SendWaitlistConfirmation(to, productName string) error {
	log.Printf("[MAIL] [INFO] skipped waitlist confirmation to %s for %q (no SMTP configured)", to, productName)
	return nil
}
