package service

import "strings"

// Payment methods accepted at the register.
const (
	MethodCash  = "cash"
	MethodCard  = "card"
	MethodMixed = "mixed"
)

// splitTender returns the cash and card parts of total.  For a mixed
// payment the caller's split must add up to total.
func splitTender(method string, total, cash, card int) (string, int, int, error) {
	method = strings.ToLower(strings.TrimSpace(method))
	switch method {
	case "", MethodCash:
		return MethodCash, total, 0, nil
	case MethodCard:
		return MethodCard, 0, total, nil
	case MethodMixed:
		if cash < 0 || card < 0 || cash+card != total {
			return "", 0, 0, invalidInput("cash %d and card %d do not add up to %d", cash, card, total)
		}
		return MethodMixed, cash, card, nil
	}
	return "", 0, 0, invalidInput("unknown payment method %q", method)
}
