package valueobject

import "fmt"

// PaymentMethod identifies how a client paid.
type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "CASH"
	PaymentMethodTransfer PaymentMethod = "TRANSFER"
	PaymentMethodYape     PaymentMethod = "YAPE" // mobile wallet
	PaymentMethodPlin     PaymentMethod = "PLIN" // mobile wallet
)

var paymentMethodAliases = map[string]PaymentMethod{
	"CASH":          PaymentMethodCash,
	"EFECTIVO":      PaymentMethodCash,
	"TRANSFER":      PaymentMethodTransfer,
	"TRANSFERENCIA": PaymentMethodTransfer,
	"YAPE":          PaymentMethodYape,
	"PLIN":          PaymentMethodPlin,
}

// ParsePaymentMethod resolves a method name, accepting legacy spellings.
// An empty string defaults to cash.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	if normalise(s) == "" {
		return PaymentMethodCash, nil
	}
	m, ok := paymentMethodAliases[normalise(s)]
	if !ok {
		return "", fmt.Errorf("invalid payment method: %q", s)
	}
	return m, nil
}

func (m PaymentMethod) String() string { return string(m) }
