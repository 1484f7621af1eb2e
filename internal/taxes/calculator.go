package taxes

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fekt2016/eaz-back-sub005/pkg/config"
)

const bpsScale = 10000

// Breakdown decomposes a VAT-inclusive gross price into its components.
// The parts always sum exactly to the gross amount: each levy is rounded to
// the cent and the residue lands on the base price.
type Breakdown struct {
	GrossCents     int64
	BaseCents      int64
	VATCents       int64
	NHILCents      int64
	GETFundCents   int64
	COVIDLevyCents int64
}

// Calculator is a pure price decomposition and earnings engine. Rates are
// fixed at construction; per-order commission overrides come from the
// snapshot stored on the sub-order.
type Calculator struct {
	vat        decimal.Decimal
	nhil       decimal.Decimal
	getfund    decimal.Decimal
	covid      decimal.Decimal
	commission int
}

// NewCalculator builds a calculator from configured basis-point rates.
func NewCalculator(rates config.RatesConfig) (*Calculator, error) {
	for name, bps := range map[string]int{
		"vat":        rates.VATBps,
		"nhil":       rates.NHILBps,
		"getfund":    rates.GETFundBps,
		"covid levy": rates.COVIDLevyBps,
	} {
		if bps < 0 || bps > bpsScale {
			return nil, fmt.Errorf("%s rate out of range: %d bps", name, bps)
		}
	}
	if rates.CommissionBps < 0 || rates.CommissionBps > bpsScale {
		return nil, fmt.Errorf("commission rate out of range: %d bps", rates.CommissionBps)
	}
	return &Calculator{
		vat:        bpsToDecimal(rates.VATBps),
		nhil:       bpsToDecimal(rates.NHILBps),
		getfund:    bpsToDecimal(rates.GETFundBps),
		covid:      bpsToDecimal(rates.COVIDLevyBps),
		commission: rates.CommissionBps,
	}, nil
}

// DefaultCommissionBps returns the platform commission used when a
// sub-order carries no snapshot.
func (c *Calculator) DefaultCommissionBps() int {
	return c.commission
}

// DecomposePrice splits a tax-inclusive gross amount into base price plus
// VAT, NHIL, GETFund and COVID levy.
func (c *Calculator) DecomposePrice(grossCents int64) (Breakdown, error) {
	if grossCents < 0 {
		return Breakdown{}, fmt.Errorf("gross amount must not be negative: %d", grossCents)
	}

	gross := decimal.NewFromInt(grossCents)
	divisor := decimal.NewFromInt(1).
		Add(c.vat).
		Add(c.nhil).
		Add(c.getfund).
		Add(c.covid)

	base := gross.Div(divisor)

	vat := base.Mul(c.vat).Round(0)
	nhil := base.Mul(c.nhil).Round(0)
	getfund := base.Mul(c.getfund).Round(0)
	covid := base.Mul(c.covid).Round(0)

	breakdown := Breakdown{
		GrossCents:     grossCents,
		VATCents:       vat.IntPart(),
		NHILCents:      nhil.IntPart(),
		GETFundCents:   getfund.IntPart(),
		COVIDLevyCents: covid.IntPart(),
	}
	// Residue goes to the base so the components reassemble the gross.
	breakdown.BaseCents = grossCents - breakdown.VATCents - breakdown.NHILCents -
		breakdown.GETFundCents - breakdown.COVIDLevyCents
	return breakdown, nil
}

// SellerEarnings computes (base + shipping) x (1 - commission), rounded to
// the cent. snapshotBps, when non-nil, is the commission rate captured on
// the sub-order at order-creation time and takes precedence over the live
// platform default.
func (c *Calculator) SellerEarnings(basePriceCents, shippingCents int64, snapshotBps *int) (int64, error) {
	if basePriceCents < 0 || shippingCents < 0 {
		return 0, fmt.Errorf("earnings inputs must not be negative")
	}

	bps := c.commission
	if snapshotBps != nil {
		if *snapshotBps < 0 || *snapshotBps > bpsScale {
			return 0, fmt.Errorf("snapshot commission out of range: %d bps", *snapshotBps)
		}
		bps = *snapshotBps
	}

	payable := decimal.NewFromInt(basePriceCents + shippingCents)
	keepRate := decimal.NewFromInt(int64(bpsScale - bps)).
		Div(decimal.NewFromInt(bpsScale))
	return payable.Mul(keepRate).Round(0).IntPart(), nil
}

// PlatformFee is the complement of SellerEarnings for the same sub-order,
// so fee + earnings always reassembles base + shipping to the cent.
func (c *Calculator) PlatformFee(basePriceCents, shippingCents int64, snapshotBps *int) (int64, error) {
	earnings, err := c.SellerEarnings(basePriceCents, shippingCents, snapshotBps)
	if err != nil {
		return 0, err
	}
	return basePriceCents + shippingCents - earnings, nil
}

func bpsToDecimal(bps int) decimal.Decimal {
	return decimal.NewFromInt(int64(bps)).Div(decimal.NewFromInt(bpsScale))
}
