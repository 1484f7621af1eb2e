package types

import "time"

// DateLayout is the day key used by the rolling revenue window.
const DateLayout = "2006-01-02"

// DailyRevenuePoint is one day's recognized platform revenue.
type DailyRevenuePoint struct {
	Date         string `json:"date"`
	RevenueCents int64  `json:"revenue_cents"`
}

// DailyRevenueWindow is a rolling per-day revenue series, oldest first.
// It is persisted as a jsonb column on the platform stats row.
type DailyRevenueWindow []DailyRevenuePoint

// Add records amountCents on the given day and trims entries older than
// windowDays. Negative amounts reverse previously recognized revenue.
func (w DailyRevenueWindow) Add(at time.Time, amountCents int64, windowDays int) DailyRevenueWindow {
	day := at.UTC().Format(DateLayout)

	updated := false
	for i := range w {
		if w[i].Date == day {
			w[i].RevenueCents += amountCents
			updated = true
			break
		}
	}
	if !updated {
		w = append(w, DailyRevenuePoint{Date: day, RevenueCents: amountCents})
	}

	if windowDays <= 0 {
		return w
	}
	cutoff := at.UTC().AddDate(0, 0, -windowDays).Format(DateLayout)
	trimmed := w[:0]
	for _, point := range w {
		if point.Date > cutoff {
			trimmed = append(trimmed, point)
		}
	}
	return trimmed
}

// Total sums the window.
func (w DailyRevenueWindow) Total() int64 {
	var total int64
	for _, point := range w {
		total += point.RevenueCents
	}
	return total
}
