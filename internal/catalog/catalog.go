package catalog

import "github.com/shopspring/decimal"

// FeeSchedule is the surcharge applied on top of a payment amount:
// amount * Percentage/100 + Fixed.
type FeeSchedule struct {
	Percentage decimal.Decimal `json:"percentage"`
	Fixed      decimal.Decimal `json:"fixed"`
}

type Method struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	Fee            FeeSchedule `json:"fee"`
	Enabled        bool        `json:"enabled"`
	ProcessingTime string      `json:"processing_time"`
}

// Catalog is a static registry of payment methods. Immutable at runtime.
type Catalog struct {
	methods map[string]Method
	order   []string
}

func New(methods []Method) *Catalog {
	c := &Catalog{methods: make(map[string]Method, len(methods))}
	for _, m := range methods {
		if _, exists := c.methods[m.ID]; !exists {
			c.order = append(c.order, m.ID)
		}
		c.methods[m.ID] = m
	}
	return c
}

// Default returns the catalog observed in production: credit card carries a
// 2.5% surcharge, every other method is free.
func Default() *Catalog {
	pct := func(p string) FeeSchedule {
		return FeeSchedule{Percentage: decimal.RequireFromString(p), Fixed: decimal.Zero}
	}

	return New([]Method{
		{ID: "cash", Name: "Cash", Fee: pct("0"), Enabled: true, ProcessingTime: "instant"},
		{ID: "credit_card", Name: "Credit Card", Fee: pct("2.5"), Enabled: true, ProcessingTime: "instant"},
		{ID: "bank_transfer", Name: "Bank Transfer", Fee: pct("0"), Enabled: true, ProcessingTime: "1-2 business days"},
		{ID: "mobile_money", Name: "Mobile Money", Fee: pct("0"), Enabled: true, ProcessingTime: "instant"},
	})
}

func (c *Catalog) Get(id string) (Method, bool) {
	m, ok := c.methods[id]
	return m, ok
}

// Methods returns the registered methods in registration order.
func (c *Catalog) Methods() []Method {
	out := make([]Method, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.methods[id])
	}
	return out
}

// Fee computes the surcharge for amount under the given method. An unknown
// method yields a zero fee rather than an error; callers that need to reject
// unknown methods must check the catalog first.
func (c *Catalog) Fee(amount decimal.Decimal, methodID string) decimal.Decimal {
	m, ok := c.methods[methodID]
	if !ok {
		return decimal.Zero
	}

	hundred := decimal.NewFromInt(100)
	return amount.Mul(m.Fee.Percentage).Div(hundred).Add(m.Fee.Fixed)
}
