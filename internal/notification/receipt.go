package notification

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"smarthome-be/internal/order"
	"smarthome-be/internal/payment"
)

//go:embed templates/receipt.html
var templateFS embed.FS

var receiptTmpl = template.Must(template.New("receipt.html").ParseFS(templateFS, "templates/receipt.html"))

type Branding struct {
	BrandName  string
	WhishPhone string
	Currency   string
}

type receiptLine struct {
	Title string
	Qty   int
	Price string
	Total string
}

type receiptView struct {
	Brand    string
	Order    *order.Order
	Lines    []receiptLine
	Total    string
	Currency string
	Address  []string
	Whish    bool
	Phone    string
	Note     string
	Link     template.URL
	Steps    []string
}

// RenderReceipt returns the subject and HTML body of the order receipt.
func RenderReceipt(o *order.Order, b Branding) (string, string, error) {
	currency := o.Currency
	if currency == "" {
		currency = b.Currency
	}

	view := receiptView{
		Brand:    b.BrandName,
		Order:    o,
		Total:    payment.FormatAmount(o.Total),
		Currency: currency,
		Address:  addressLines(o),
		Whish:    o.Method == order.MethodWhish,
		Phone:    b.WhishPhone,
	}
	for _, it := range o.Items {
		view.Lines = append(view.Lines, receiptLine{
			Title: it.Title,
			Qty:   it.Qty,
			Price: payment.FormatAmount(it.Price),
			Total: payment.FormatAmount(it.Subtotal()),
		})
	}

	if view.Whish {
		view.Note = payment.WhishNote(o.Number, o.Titles())
		// whish:// is not a scheme html/template lets through on its own.
		view.Link = template.URL(payment.WhishLink(b.WhishPhone, o.Total, view.Note))
		view.Steps = payment.Steps(payment.MethodWhish, o.Number, b.WhishPhone, o.Total, view.Note)
	} else {
		view.Steps = payment.Steps(payment.MethodCash, o.Number, b.WhishPhone, o.Total, "")
	}

	var buf bytes.Buffer
	if err := receiptTmpl.Execute(&buf, view); err != nil {
		return "", "", fmt.Errorf("render receipt: %w", err)
	}

	subject := fmt.Sprintf("%s order %s", b.BrandName, o.Number)
	return subject, buf.String(), nil
}

func addressLines(o *order.Order) []string {
	var lines []string
	for _, s := range []string{o.Name, o.Address1, o.Address2} {
		if s = strings.TrimSpace(s); s != "" {
			lines = append(lines, s)
		}
	}
	if city := strings.TrimSpace(strings.Join(nonEmpty(o.City, o.Postal), " ")); city != "" {
		lines = append(lines, city)
	}
	if c := strings.TrimSpace(o.Country); c != "" {
		lines = append(lines, c)
	}
	return lines
}

func nonEmpty(values ...string) []string {
	out := values[:0:0]
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
