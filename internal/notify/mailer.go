package notify

import (
	"fmt"

	"go.uber.org/zap"
	gomail "gopkg.in/gomail.v2"

	"github.com/MikeMC777/checkout-ecom/internal/order"
)

// Mailer sends transactional order confirmations: one to the customer, one to
// the store owner. It has no order-store side effects, so a retry after a
// delivery failure cannot duplicate anything but email.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
	owner  string
	log    *zap.Logger
}

func NewMailer(host string, port int, user, pass, owner string, log *zap.Logger) *Mailer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Mailer{
		dialer: gomail.NewDialer(host, port, user, pass),
		from:   user,
		owner:  owner,
		log:    log,
	}
}

func (m *Mailer) buildMessages(o *order.Order, items []order.Item) ([]*gomail.Message, error) {
	customerBody, err := render(customerTmpl, o, items)
	if err != nil {
		return nil, fmt.Errorf("render customer mail: %w", err)
	}
	ownerBody, err := render(ownerTmpl, o, items)
	if err != nil {
		return nil, fmt.Errorf("render owner mail: %w", err)
	}

	customer := gomail.NewMessage()
	customer.SetHeader("From", m.from)
	customer.SetHeader("To", o.Email)
	customer.SetHeader("Subject", "Order Confirmation from Seelaikaari Store")
	customer.SetBody("text/html", customerBody)

	owner := gomail.NewMessage()
	owner.SetHeader("From", m.from)
	owner.SetHeader("To", m.owner)
	owner.SetHeader("Subject", "New Order Received - Seelaikaari Store")
	owner.SetBody("text/html", ownerBody)

	return []*gomail.Message{customer, owner}, nil
}

// SendOrderConfirmation delivers both messages over one SMTP dial.
func (m *Mailer) SendOrderConfirmation(o *order.Order, items []order.Item) error {
	msgs, err := m.buildMessages(o, items)
	if err != nil {
		return err
	}
	if err := m.dialer.DialAndSend(msgs...); err != nil {
		return fmt.Errorf("send order confirmation: %w", err)
	}
	m.log.Info("order confirmation sent",
		zap.String("order_id", o.OrderID),
		zap.String("customer", o.Email),
		zap.String("owner", m.owner))
	return nil
}
