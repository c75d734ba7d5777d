package domain

import "math"

// DefaultAnnualRate is used when no rate is configured.
const DefaultAnnualRate = 0.07

// Loan durations accepted by the flows, in years.
const (
	MinLoanYears = 1
	MaxLoanYears = 30
)

// LoanSimulation is the amortization summary of a fixed-rate loan.
type LoanSimulation struct {
	Amount         float64 `json:"amount"`
	Years          int     `json:"years"`
	AnnualRate     float64 `json:"annual_rate"`
	MonthlyPayment float64 `json:"monthly_payment"`
	TotalPayment   float64 `json:"total_payment"`
	TotalInterest  float64 `json:"total_interest"`
}

// Round3 rounds to the millime, the minor unit of the dinar.
func Round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// MonthlyPayment returns the rounded annuity for principal over years at annualRate.
func MonthlyPayment(principal float64, years int, annualRate float64) float64 {
	n := float64(years * 12)
	m := annualRate / 12
	if m == 0 {
		return Round3(principal / n)
	}
	growth := math.Pow(1+m, n)
	return Round3(principal * m * growth / (growth - 1))
}

// SimulateLoan computes the amortization summary. The total is derived from the
// rounded monthly payment so that MonthlyPayment*12*Years matches TotalPayment.
func SimulateLoan(principal float64, years int, annualRate float64) (LoanSimulation, error) {
	if principal <= 0 {
		return LoanSimulation{}, ErrInvalidAmount
	}
	if years < MinLoanYears || years > MaxLoanYears {
		return LoanSimulation{}, ErrInvalidDuration
	}
	if annualRate < 0 {
		return LoanSimulation{}, ErrInvalidRate
	}

	monthly := MonthlyPayment(principal, years, annualRate)
	total := Round3(monthly * float64(years*12))
	return LoanSimulation{
		Amount:         principal,
		Years:          years,
		AnnualRate:     annualRate,
		MonthlyPayment: monthly,
		TotalPayment:   total,
		TotalInterest:  Round3(total - principal),
	}, nil
}
