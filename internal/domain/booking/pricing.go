package booking

import "fmt"

// DefaultServiceFeeBps is the platform fee in basis points (1%).
const DefaultServiceFeeBps int64 = 100

// Quote is the amount a client pays at checkout. The fee is derived from the
// package price each time and never stored.
type Quote struct {
	PriceMinor int64  `json:"price_minor"`
	FeeMinor   int64  `json:"fee_minor"`
	TotalMinor int64  `json:"total_minor"`
	Currency   string `json:"currency"`
}

// PricingStrategy defines the interface for pricing a package at checkout.
type PricingStrategy interface {
	Quote(priceMinor int64) (Quote, error)
}

// FlatFeePricing adds a fixed percentage service fee on top of the package price.
type FlatFeePricing struct {
	feeBps   int64
	currency string
}

// NewFlatFeePricing creates a FlatFeePricing charging feeBps basis points.
func NewFlatFeePricing(feeBps int64, currency string) *FlatFeePricing {
	return &FlatFeePricing{feeBps: feeBps, currency: currency}
}

// Quote computes price + fee.
func (p *FlatFeePricing) Quote(priceMinor int64) (Quote, error) {
	if priceMinor < 0 {
		return Quote{}, fmt.Errorf("price cannot be negative")
	}
	fee := ServiceFee(priceMinor, p.feeBps)
	return Quote{
		PriceMinor: priceMinor,
		FeeMinor:   fee,
		TotalMinor: priceMinor + fee,
		Currency:   p.currency,
	}, nil
}

// ServiceFee returns priceMinor * bps / 10000 rounded half up.
func ServiceFee(priceMinor, bps int64) int64 {
	return (priceMinor*bps + 5000) / 10000
}
