package subscription

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// Plan is a purchasable subscription plan.
// PriceID is the billing provider's price identifier.
type Plan struct {
	ID          string   `yaml:"id" json:"id"`
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description" json:"description,omitempty"`
	PriceID     string   `yaml:"price_id" json:"-"`
	Interval    string   `yaml:"interval" json:"interval"`
	TrialDays   int      `yaml:"trial_days" json:"trial_days"`
	Features    []string `yaml:"features" json:"features,omitempty"`
}

// Tier is the tier a subscriber of this plan resolves to.
func (p Plan) Tier() Tier {
	return TierForInterval(p.Interval)
}

// Plans is an ordered, validated plan catalog.
type Plans struct {
	list []Plan
}

type plansFile struct {
	Plans []Plan `yaml:"plans"`
}

// DefaultPlans returns the built-in yearly and monthly plans.
func DefaultPlans() *Plans {
	p, err := NewPlans(
		Plan{
			ID:          "yearly",
			Name:        "Premium Plus Yearly",
			Description: "7-day free trial included",
			PriceID:     "pri_premium_plus_yearly",
			Interval:    IntervalYear,
			TrialDays:   7,
			Features:    []string{"summaries", "audio", "library", "recommendations"},
		},
		Plan{
			ID:          "monthly",
			Name:        "Premium Monthly",
			Description: "No trial included",
			PriceID:     "pri_premium_monthly",
			Interval:    IntervalMonth,
			Features:    []string{"summaries", "audio", "library"},
		},
	)
	if err != nil {
		panic(err)
	}
	return p
}

// NewPlans validates and wraps the given plans.
func NewPlans(plans ...Plan) (*Plans, error) {
	if len(plans) == 0 {
		return nil, fmt.Errorf("%w: at least one plan is required", ErrInvalidPlan)
	}
	seen := make(map[string]struct{}, len(plans))
	for _, p := range plans {
		switch {
		case p.ID == "":
			return nil, fmt.Errorf("%w: plan id is empty", ErrInvalidPlan)
		case p.PriceID == "":
			return nil, fmt.Errorf("%w: plan %q has no price id", ErrInvalidPlan, p.ID)
		case p.Interval != IntervalYear && p.Interval != IntervalMonth:
			return nil, fmt.Errorf("%w: plan %q has interval %q", ErrInvalidPlan, p.ID, p.Interval)
		case p.TrialDays < 0:
			return nil, fmt.Errorf("%w: plan %q has negative trial", ErrInvalidPlan, p.ID)
		}
		if _, dup := seen[p.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate plan id %q", ErrInvalidPlan, p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return &Plans{list: slices.Clone(plans)}, nil
}

// ParsePlans reads a YAML document of the form:
//
//	plans:
//	  - id: yearly
//	    name: Premium Plus Yearly
//	    price_id: pri_01h...
//	    interval: year
//	    trial_days: 7
func ParsePlans(data []byte) (*Plans, error) {
	var f plansFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Join(ErrFailedToLoadPlans, err)
	}
	return NewPlans(f.Plans...)
}

// LoadPlans reads plans from a YAML file. An empty path yields DefaultPlans.
func LoadPlans(path string) (*Plans, error) {
	if path == "" {
		return DefaultPlans(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadPlans, err)
	}
	return ParsePlans(data)
}

// Get returns the plan with the given id.
func (p *Plans) Get(id string) (Plan, bool) {
	for _, plan := range p.list {
		if plan.ID == id {
			return plan, true
		}
	}
	return Plan{}, false
}

// ByPriceID returns the plan billed with the given provider price.
func (p *Plans) ByPriceID(priceID string) (Plan, bool) {
	for _, plan := range p.list {
		if plan.PriceID == priceID {
			return plan, true
		}
	}
	return Plan{}, false
}

// List returns the plans in declaration order.
func (p *Plans) List() []Plan {
	return slices.Clone(p.list)
}
