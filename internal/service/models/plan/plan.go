package plan

import (
	"errors"

	"github.com/arvenlabs/billing-svc/internal/service/models/currency"
)

var ErrPlanNotFound = errors.New("plan not found")

// MaintenancePlan is a catalog entry used to price new subscriptions.
// The catalog is immutable at runtime.
type MaintenancePlan struct {
	ID                string            `json:"id"`
	Name              string            `json:"name"`
	PriceMonthlyCents int64             `json:"priceMonthlyCents"`
	Currency          currency.Currency `json:"currency"`
	Features          []string          `json:"features"`
	SupportTier       string            `json:"supportTier"`
}

// Predefined maintenance plans.
var (
	PlanBasic = MaintenancePlan{
		ID:                "basic-maintenance",
		Name:              "Mantenimiento Básico",
		PriceMonthlyCents: 4900, // 49 EUR
		Currency:          currency.CurrencyEUR,
		Features:          []string{"security-updates", "monthly-backup", "uptime-monitoring"},
		SupportTier:       "email",
	}

	PlanStandard = MaintenancePlan{
		ID:                "standard-maintenance",
		Name:              "Mantenimiento Estándar",
		PriceMonthlyCents: 9900, // 99 EUR
		Currency:          currency.CurrencyEUR,
		Features: []string{
			"security-updates",
			"weekly-backup",
			"uptime-monitoring",
			"content-updates",
			"performance-reports",
		},
		SupportTier: "priority-email",
	}

	PlanPremium = MaintenancePlan{
		ID:                "premium-maintenance",
		Name:              "Mantenimiento Premium",
		PriceMonthlyCents: 19900, // 199 EUR
		Currency:          currency.CurrencyEUR,
		Features: []string{
			"security-updates",
			"daily-backup",
			"uptime-monitoring",
			"content-updates",
			"performance-reports",
			"seo-audits",
			"emergency-fixes",
		},
		SupportTier: "phone",
	}

	// AllPlans is the ordered list of available plans.
	AllPlans = []MaintenancePlan{PlanBasic, PlanStandard, PlanPremium}
)

// ByID looks up a plan by its identifier.
func ByID(id string) (*MaintenancePlan, error) {
	for i := range AllPlans {
		if AllPlans[i].ID == id {
			p := AllPlans[i]
			return &p, nil
		}
	}

	return nil, ErrPlanNotFound
}
