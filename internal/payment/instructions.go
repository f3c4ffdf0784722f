package payment

import (
	"strings"

	"nextgen-storefront/internal/pricing"
)

// InstructionMap holds the next steps shown on the confirmation screen,
// per payment type. Placeholders are filled by InjectVariables.
var InstructionMap = map[pricing.PaymentType][]string{
	pricing.Card: {
		"Your card was charged {{amount}}",
		"A receipt for order {{order_id}} (ref {{reference}}) has been sent to your email",
	},
	pricing.EFT: {
		"Transfer {{amount}} from your {{bank}} account",
		"Use {{reference}} as the payment reference",
		"Your order is released once the transfer clears",
	},
	pricing.Instalment: {
		"Your first instalment of {{monthly}} has been paid",
		"{{remaining}} more monthly payments of {{monthly}} are due",
		"Pay each instalment from your orders page using your account number",
	},
}

var deliveryInstructions = map[pricing.Delivery]string{
	pricing.Pickup:       "Collect your order in store when the countdown reaches zero",
	pricing.HomeDelivery: "Your order will be delivered to {{address}}",
}

func GetInstructions(paymentType pricing.PaymentType, delivery pricing.Delivery) []string {
	steps := append([]string(nil), InstructionMap[paymentType]...)
	if d, ok := deliveryInstructions[delivery]; ok {
		steps = append(steps, d)
	}
	return steps
}

type InstructionVars map[string]string

// InjectVariables replaces {{key}} placeholders. Unknown placeholders are
// left as they are.
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
