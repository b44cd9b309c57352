package domain

import "context"

// Prices holds the subscription price table.
type Prices struct {
	Monthly float64 `json:"monthly"`
	Yearly  float64 `json:"yearly"` // per month, billed annually
}

// GooglePay holds the payment-gateway identifiers the checkout client needs.
type GooglePay struct {
	MerchantName      string `json:"merchantName"`
	MerchantID        string `json:"merchantId"`
	Gateway           string `json:"gateway"`
	GatewayMerchantID string `json:"gatewayMerchantId"`
}

// Settings is the platform configuration singleton. It is always read and
// replaced wholesale; there are no partial-field updates.
type Settings struct {
	Prices    Prices    `json:"prices"`
	GooglePay GooglePay `json:"googlePay"`
}

// SettingsRepository defines access to the configuration singleton.
type SettingsRepository interface {
	Get(ctx context.Context) (*Settings, error)
	Save(ctx context.Context, s *Settings) error
}

// DefaultSettings returns the configuration used before an operator has ever
// saved one.
func DefaultSettings() *Settings {
	return &Settings{
		Prices: Prices{Monthly: 49.90, Yearly: 39.90},
	}
}
