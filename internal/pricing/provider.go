package pricing

import "context"

// RateQuote is the result of one provider lookup: the derived unit rates
// and, when the provider could resolve it, the node shape they were derived
// from.
type RateQuote struct {
	Rates Rates
	Node  *NodeShape
}

// Provider fetches live unit rates from a cloud pricing API.
type Provider interface {
	// Quote returns the current rates for the provider's region and
	// instance type.
	Quote(ctx context.Context) (*RateQuote, error)

	// Name identifies the provider ("aws", "azure", "gcp").
	Name() string
}

// SpendReporter is implemented by providers that can also report the
// account's actual spend over the trailing 30 days.
type SpendReporter interface {
	SpendLast30Days(ctx context.Context) (float64, error)
}
