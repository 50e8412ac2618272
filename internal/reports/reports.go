package reports

import (
	"context"
	"fmt"
	"math"
	"property-backoffice/internal/models"
	"sort"
	"time"
)

// MaxYearSpan bounds how many years one report may cover
const MaxYearSpan = 25

// Source supplies the rows a report is built from. It is satisfied by the
// database store on the server and by the REST client on the command line.
type Source interface {
	ListAllProperties(ctx context.Context) ([]models.Property, error)
	RentLogsForYear(ctx context.Context, propertyID uint, year int) ([]models.RentLog, error)
	PaymentLogsForYear(ctx context.Context, propertyID uint, year int) ([]models.PaymentLog, error)
	TransactionsFor(ctx context.Context, propertyID uint) ([]models.Transaction, error)
}

// YearSummary holds one property's totals for one calendar year
type YearSummary struct {
	Year         int                `json:"year"`
	Rent         float64            `json:"rent"`
	RentMonths   int                `json:"rent_months"`
	Payments     float64            `json:"payments"`
	Transactions float64            `json:"transactions"`
	ByType       map[string]float64 `json:"by_type"`
	Net          float64            `json:"net"`
}

// PropertyReport holds one property's totals across the report range
type PropertyReport struct {
	PropertyID   uint          `json:"property_id"`
	PropertyName string        `json:"property_name"`
	Years        []YearSummary `json:"years"`
	Rent         float64       `json:"rent"`
	Payments     float64       `json:"payments"`
	Transactions float64       `json:"transactions"`
	Net          float64       `json:"net"`
}

// Report is the aggregated rent, payment and transaction activity of every
// property over a range of years.
type Report struct {
	StartYear   int              `json:"start_year"`
	EndYear     int              `json:"end_year"`
	GeneratedAt time.Time        `json:"generated_at"`
	Properties  []PropertyReport `json:"properties"`
}

// Totals sums a report across properties
type Totals struct {
	Rent         float64            `json:"rent"`
	Payments     float64            `json:"payments"`
	Transactions float64            `json:"transactions"`
	ByType       map[string]float64 `json:"by_type"`
	Net          float64            `json:"net"`
}

// ValidateRange checks a requested year range
func ValidateRange(startYear, endYear int) error {
	if startYear <= 0 || endYear <= 0 {
		return fmt.Errorf("start_year and end_year are required")
	}
	if endYear < startYear {
		return fmt.Errorf("end_year %d is before start_year %d", endYear, startYear)
	}
	if endYear-startYear+1 > MaxYearSpan {
		return fmt.Errorf("year range is limited to %d years", MaxYearSpan)
	}
	return nil
}

// Build fetches every property's rent and payment logs year by year, plus its
// transactions, and sums them. Net is rent minus loan payments minus transactions.
func Build(ctx context.Context, src Source, startYear, endYear int) (*Report, error) {
	if err := ValidateRange(startYear, endYear); err != nil {
		return nil, err
	}

	properties, err := src.ListAllProperties(ctx)
	if err != nil {
		return nil, fmt.Errorf("list properties: %w", err)
	}
	sort.Slice(properties, func(i, j int) bool { return properties[i].ID < properties[j].ID })

	report := &Report{
		StartYear:   startYear,
		EndYear:     endYear,
		GeneratedAt: time.Now().UTC(),
		Properties:  make([]PropertyReport, 0, len(properties)),
	}

	for _, p := range properties {
		pr, err := buildProperty(ctx, src, p, startYear, endYear)
		if err != nil {
			return nil, err
		}
		report.Properties = append(report.Properties, *pr)
	}
	return report, nil
}

func buildProperty(ctx context.Context, src Source, p models.Property, startYear, endYear int) (*PropertyReport, error) {
	pr := &PropertyReport{
		PropertyID:   p.ID,
		PropertyName: p.PropertyName,
		Years:        make([]YearSummary, 0, endYear-startYear+1),
	}

	transactions, err := src.TransactionsFor(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("transactions for property %d: %w", p.ID, err)
	}
	byYear := make(map[int][]models.Transaction)
	for _, t := range transactions {
		y := t.TransactionDate.Year()
		byYear[y] = append(byYear[y], t)
	}

	for year := startYear; year <= endYear; year++ {
		ys := YearSummary{Year: year, ByType: make(map[string]float64)}

		rents, err := src.RentLogsForYear(ctx, p.ID, year)
		if err != nil {
			return nil, fmt.Errorf("rent logs for property %d/%d: %w", p.ID, year, err)
		}
		for _, r := range rents {
			if r.RentAmount != nil {
				ys.Rent += *r.RentAmount
				ys.RentMonths++
			}
		}

		payments, err := src.PaymentLogsForYear(ctx, p.ID, year)
		if err != nil {
			return nil, fmt.Errorf("payment logs for property %d/%d: %w", p.ID, year, err)
		}
		for _, pl := range payments {
			if pl.PaymentAmount != nil {
				ys.Payments += *pl.PaymentAmount
			}
		}

		for _, t := range byYear[year] {
			ys.Transactions += t.TransactionAmount
			ys.ByType[t.TransactionType] += t.TransactionAmount
		}

		ys.Rent = round2(ys.Rent)
		ys.Payments = round2(ys.Payments)
		ys.Transactions = round2(ys.Transactions)
		ys.Net = round2(ys.Rent - ys.Payments - ys.Transactions)

		pr.Years = append(pr.Years, ys)
		pr.Rent += ys.Rent
		pr.Payments += ys.Payments
		pr.Transactions += ys.Transactions
	}

	pr.Rent = round2(pr.Rent)
	pr.Payments = round2(pr.Payments)
	pr.Transactions = round2(pr.Transactions)
	pr.Net = round2(pr.Rent - pr.Payments - pr.Transactions)
	return pr, nil
}

// Totals sums the report across all properties
func (r *Report) Totals() Totals {
	t := Totals{ByType: make(map[string]float64)}
	for _, p := range r.Properties {
		t.Rent += p.Rent
		t.Payments += p.Payments
		t.Transactions += p.Transactions
		for _, y := range p.Years {
			for typ, amount := range y.ByType {
				t.ByType[typ] += amount
			}
		}
	}
	t.Rent = round2(t.Rent)
	t.Payments = round2(t.Payments)
	t.Transactions = round2(t.Transactions)
	t.Net = round2(t.Rent - t.Payments - t.Transactions)
	for typ, amount := range t.ByType {
		t.ByType[typ] = round2(amount)
	}
	return t
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
