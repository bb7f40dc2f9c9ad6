package billing

import (
	"github.com/shopspring/decimal"

	"sitewizard/internal/catalog"
	"sitewizard/internal/types"
)

// LineItem is one priced row of a quote.
type LineItem struct {
	Kind  string          `json:"kind"` // "plan" or "add_on"
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// Quote is the itemised monthly price of a (plan, add-ons) pair.
type Quote struct {
	Plan     types.PlanID    `json:"plan"`
	Items    []LineItem      `json:"items"`
	Total    decimal.Decimal `json:"total"`
	Currency string          `json:"currency"`
}

// MonthlyTotal returns the recurring monthly price.
//
//   - no plan (or an unknown plan): zero.
//   - entry and builder-full: the fixed plan price; add-ons never contribute.
//   - builder: the plan price plus each distinct owned add-on's price.
func MonthlyTotal(plan types.PlanID, owned []types.AddOnID) decimal.Decimal {
	return NewQuote(plan, owned).Total
}

// NewQuote itemises MonthlyTotal. Add-on items follow catalog order so the
// result does not depend on the order of owned.
func NewQuote(plan types.PlanID, owned []types.AddOnID) Quote {
	q := Quote{Plan: plan, Items: []LineItem{}, Total: decimal.Zero, Currency: catalog.Currency}

	p, ok := catalog.PlanByID(plan)
	if !ok {
		return q
	}
	q.Items = append(q.Items, LineItem{Kind: "plan", ID: string(p.ID), Name: p.Name, Price: p.Price})
	q.Total = p.Price

	if !p.AddOnsPurchasable {
		return q
	}
	for _, a := range catalog.AddOns() {
		if !owns(owned, a.ID) {
			continue
		}
		q.Items = append(q.Items, LineItem{Kind: "add_on", ID: string(a.ID), Name: a.Name, Price: a.Price})
		q.Total = q.Total.Add(a.Price)
	}
	return q
}
