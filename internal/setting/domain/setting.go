package domain

import "time"

const (
	KeyStoreName             = "store_name"
	KeyCurrency              = "currency"
	KeyShippingFee           = "shipping_fee"
	KeyFreeShippingThreshold = "free_shipping_threshold"
)

type Setting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	Public    bool      `json:"public"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// Defaults apply whenever a key has never been written.
var Defaults = []Setting{
	{Key: KeyStoreName, Value: "Tech Store", Public: true},
	{Key: KeyCurrency, Value: "IDR", Public: true},
	{Key: KeyShippingFee, Value: "15000", Public: true},
	{Key: KeyFreeShippingThreshold, Value: "0", Public: true},
}

// Numeric keys must hold non-negative integers in minor currency units.
var Numeric = map[string]bool{
	KeyShippingFee:           true,
	KeyFreeShippingThreshold: true,
}
