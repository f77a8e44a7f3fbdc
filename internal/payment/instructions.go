package payment

import "strings"

const (
	MethodWhish = "whish"
	MethodCash  = "cash"
)

var InstructionMap = map[string][]string{
	MethodWhish: {
		"Open the Whish app on your phone",
		"Choose Send Money and enter the recipient number {{phone}}",
		"Send exactly {{amount}}",
		"Write {{note}} in the transfer note so we can match your payment",
		"Keep the confirmation until order {{number}} ships",
	},

	MethodCash: {
		"Your order will be delivered to the shipping address you entered",
		"Prepare {{amount}} in cash for the courier",
		"Pay the courier directly when order {{number}} arrives",
		"Keep the delivery receipt as proof of payment",
	},
}

func GetInstructions(method string) []string {
	if steps, ok := InstructionMap[method]; ok {
		return steps
	}

	return []string{
		"Follow the payment instructions shown on this page",
	}
}

type InstructionVars map[string]string

func InjectVariables(steps []string, vars InstructionVars) []string {
	result := make([]string, 0, len(steps))

	for _, step := range steps {
		updated := step
		for key, value := range vars {
			updated = strings.ReplaceAll(updated, "{{"+key+"}}", value)
		}
		result = append(result, updated)
	}

	return result
}
