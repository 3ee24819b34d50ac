package mailer

import (
	"fmt"
	"strings"

	"gopkg.in/gomail.v2"

	"shop_manager/internal/services"
)

// Client delivers notifications over SMTP. It satisfies services.Notifier; the
// dispatcher owns timeouts and error handling, this client only composes and
// sends.
type Client struct {
	host     string
	port     int
	username string
	password string
	from     string
}

func NewClient(host string, port int, username, password, from string) *Client {
	return &Client{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
	}
}

func (c *Client) Notify(recipient string, data services.NotificationData) error {
	m := gomail.NewMessage()
	m.SetHeader("From", c.from)
	m.SetHeader("To", recipient)
	m.SetHeader("Subject", data.Subject)
	m.SetBody("text/plain", renderBody(data))

	d := gomail.NewDialer(c.host, c.port, c.username, c.password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send notification to %s: %w", recipient, err)
	}
	return nil
}

func renderBody(data services.NotificationData) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n", data.CustomerName)
	fmt.Fprintf(&b, "Thank you for your purchase of %s.\n", data.ProductName)
	fmt.Fprintf(&b, "Reference: %s\n", data.Reference)
	fmt.Fprintf(&b, "Amount: %s\n", data.TotalAmount)
	if data.WarrantyEnd != nil {
		fmt.Fprintf(&b, "Your warranty is valid until %s.\n", data.WarrantyEnd.Format("2 January 2006"))
	}
	if data.WarrantyRef != "" {
		fmt.Fprintf(&b, "Warranty reference: %s\n", data.WarrantyRef)
	}
	b.WriteString("\nBest regards,\nYour shop team")
	return b.String()
}
