package payment

import (
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
)

// FormatAmount renders money with exactly two decimal places.
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

// WhishNote is the transfer note a customer must send with the payment.
// It always starts with the order number.
func WhishNote(number string, titles []string) string {
	note := "Order " + number
	if len(titles) > 0 {
		note += ": " + strings.Join(titles, ", ")
	}
	return note
}

// WhishLink builds the app deep link. An unset phone stays an empty
// parameter so the link still opens the transfer screen.
func WhishLink(phone string, amount decimal.Decimal, note string) string {
	q := url.Values{}
	q.Set("phone", phone)
	q.Set("amount", FormatAmount(amount))
	q.Set("note", note)
	return "whish://send?" + q.Encode()
}

// Steps returns the method's instructions with order details filled in.
func Steps(method, number, phone string, amount decimal.Decimal, note string) []string {
	return InjectVariables(GetInstructions(method), InstructionVars{
		"amount": FormatAmount(amount),
		"phone":  phone,
		"note":   note,
		"number": number,
	})
}
