package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// SettlementMetrics records settlement engine outcomes.
type SettlementMetrics struct {
	settlements    *prometheus.CounterVec
	reversalCents  prometheus.Counter
	payoutCents    prometheus.Counter
	stockConflicts prometheus.Counter
}

// NewSettlementMetrics registers the settlement metrics on the provided
// registerer. A nil registerer yields a no-op collector for tests.
func NewSettlementMetrics(reg prometheus.Registerer) *SettlementMetrics {
	if reg == nil {
		return &SettlementMetrics{}
	}
	settlements := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "settlement_operations_total",
		Help: "Settlement engine operations by kind and outcome.",
	}, []string{"operation", "outcome"})
	reversalCents := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "settlement_reversal_cents_total",
		Help: "Total cents reversed out of seller balances.",
	})
	payoutCents := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "settlement_payout_cents_total",
		Help: "Total cents credited to seller balances.",
	})
	stockConflicts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "inventory_stock_conflicts_total",
		Help: "Stock decrements rejected by the conditional update.",
	})
	reg.MustRegister(settlements, reversalCents, payoutCents, stockConflicts)
	return &SettlementMetrics{
		settlements:    settlements,
		reversalCents:  reversalCents,
		payoutCents:    payoutCents,
		stockConflicts: stockConflicts,
	}
}

// ObserveOperation counts one engine operation.
func (m *SettlementMetrics) ObserveOperation(operation, outcome string) {
	if m == nil || m.settlements == nil {
		return
	}
	m.settlements.WithLabelValues(operation, outcome).Inc()
}

// AddPayout accumulates credited cents.
func (m *SettlementMetrics) AddPayout(cents int64) {
	if m == nil || m.payoutCents == nil || cents <= 0 {
		return
	}
	m.payoutCents.Add(float64(cents))
}

// AddReversal accumulates reversed cents.
func (m *SettlementMetrics) AddReversal(cents int64) {
	if m == nil || m.reversalCents == nil || cents <= 0 {
		return
	}
	m.reversalCents.Add(float64(cents))
}

// IncStockConflict counts one rejected stock decrement.
func (m *SettlementMetrics) IncStockConflict() {
	if m == nil || m.stockConflicts == nil {
		return
	}
	m.stockConflicts.Inc()
}
