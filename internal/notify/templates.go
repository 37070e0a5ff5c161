package notify

import (
	"bytes"
	"html/template"

	"github.com/MikeMC777/checkout-ecom/internal/order"
)

type mailData struct {
	Order *order.Order
	Items []order.Item
}

var customerTmpl = template.Must(template.New("customer").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: auto;">
  <h2>Thank You for Your Order, {{.Order.CustomerName}}!</h2>
  <p>Your payment was successful, and your order has been placed.</p>
  <h3>Order Details:</h3>
  <table style="width: 100%; border-collapse: collapse;">
    <thead>
      <tr><th align="left">Item</th><th align="center">Quantity</th><th align="right">Price</th></tr>
    </thead>
    <tbody>
      {{range .Items}}
      <tr>
        <td>{{.Name}}{{if .Image}}<br/><img src="{{.Image}}" alt="{{.Name}}" width="60px"/>{{end}}</td>
        <td align="center">{{.Quantity}}</td>
        <td align="right">&#8377;{{.Price}}</td>
      </tr>
      {{end}}
    </tbody>
  </table>
  <h3 align="right">Total Amount Paid: &#8377;{{.Order.TotalAmount}}</h3>
  <p>You will receive a tracking link once your order is shipped.</p>
</div>
`))

var ownerTmpl = template.Must(template.New("owner").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: auto;">
  <h2>New Order Received</h2>
  <p>A new order has been placed by <strong>{{.Order.CustomerName}}</strong>.</p>
  <h3>Customer Details:</h3>
  <p><strong>Name:</strong> {{.Order.CustomerName}}</p>
  <p><strong>Email:</strong> {{.Order.Email}}</p>
  <p><strong>Phone:</strong> {{.Order.Phone}}</p>
  <p><strong>Address:</strong> {{.Order.Address}}{{if .Order.Address2}}, {{.Order.Address2}}{{end}}, {{.Order.City}}, {{.Order.State}}, {{.Order.Pincode}}</p>
  <h3>Order Summary:</h3>
  <table style="width: 100%; border-collapse: collapse;">
    <thead>
      <tr><th align="left">Item</th><th align="center">Quantity</th><th align="right">Price</th></tr>
    </thead>
    <tbody>
      {{range .Items}}
      <tr>
        <td>{{.Name}}</td>
        <td align="center">{{.Quantity}}</td>
        <td align="right">&#8377;{{.Price}}</td>
      </tr>
      {{end}}
    </tbody>
  </table>
  <h3 align="right">Total Amount Paid: &#8377;{{.Order.TotalAmount}}</h3>
  <p>Please process the order accordingly.</p>
</div>
`))

func render(t *template.Template, o *order.Order, items []order.Item) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, mailData{Order: o, Items: items}); err != nil {
		return "", err
	}
	return buf.String(), nil
}
