package product

import (
	"strconv"

	"github.com/rustyeddy/priips/dates"
)

// REOColumns is the fixed column order of the regulatory output table.
// Every variant fills the shared columns from its base state; columns
// that do not apply to a variant stay blank.
var REOColumns = []string{
	"ID",
	"ProductType",
	"Subtype",
	"DeliveryType",
	"CcyFor",
	"CcyDom",
	"CcySettlement",
	"Position",
	"TenorRHP",
	"TenorIntermediate",
	"TradeDate",
	"SpotDate",
	"SettlementDate",
	"FixingDate",
	"NTradingDaysRHP",
	"YearFractionRHP",
	"MRM",
	"CRM",
	"SRI",
	"SpotRate",
	"Strike",
	"OptionValue",
	"OptionType",
	"DiscountRate",
	"DepositRate",
	"ScalingFactor",
	"NotionalInvested",
	"TotalCostsRHP",
	"GrossAmountFavourable",
	"GrossAmountModerate",
	"GrossAmountUnfavourable",
	"GrossAmountStressed",
	"NetAmountFavourable",
	"NetAmountModerate",
	"NetAmountUnfavourable",
	"NetAmountStressed",
	"NetReturnFavourable",
	"NetReturnModerate",
	"NetReturnUnfavourable",
	"NetReturnStressed",
	"RIYEntry",
	"RIYRHP",
}

func reoFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// reoRecord assembles the shared columns and merges the variant's extra
// fields, returning values in REOColumns order.
func (b *Base) reoRecord(productType string, extra map[string]string) []string {
	values := map[string]string{
		"ID":                      b.id,
		"ProductType":             productType,
		"CcyFor":                  b.CcyFor,
		"CcyDom":                  b.CcyDom,
		"CcySettlement":           b.CcySettle,
		"Position":                b.Position.String(),
		"TenorRHP":                b.TenorRHP,
		"TradeDate":               dates.AttributeDate(b.TradeDate),
		"SpotDate":                dates.AttributeDate(b.spotDate),
		"SettlementDate":          dates.AttributeDate(b.settlementDate),
		"FixingDate":              dates.AttributeDate(b.fixingDate),
		"NTradingDaysRHP":         strconv.Itoa(b.nDaysRHP),
		"YearFractionRHP":         reoFloat(b.tRHP),
		"MRM":                     strconv.Itoa(b.MRM),
		"CRM":                     strconv.Itoa(b.CRM),
		"SRI":                     strconv.Itoa(b.SRI),
		"SpotRate":                reoFloat(b.spot),
		"ScalingFactor":           reoFloat(b.ScalingFactor),
		"NotionalInvested":        reoFloat(b.NotionalInvested),
		"TotalCostsRHP":           reoFloat(b.TotalCostsRHP),
		"GrossAmountFavourable":   reoFloat(b.GrossAmounts.Favourable),
		"GrossAmountModerate":     reoFloat(b.GrossAmounts.Moderate),
		"GrossAmountUnfavourable": reoFloat(b.GrossAmounts.Unfavourable),
		"GrossAmountStressed":     reoFloat(b.GrossAmounts.Stressed),
		"NetAmountFavourable":     reoFloat(b.NetAmounts.Favourable),
		"NetAmountModerate":       reoFloat(b.NetAmounts.Moderate),
		"NetAmountUnfavourable":   reoFloat(b.NetAmounts.Unfavourable),
		"NetAmountStressed":       reoFloat(b.NetAmounts.Stressed),
		"NetReturnFavourable":     reoFloat(b.NetReturns.Favourable),
		"NetReturnModerate":       reoFloat(b.NetReturns.Moderate),
		"NetReturnUnfavourable":   reoFloat(b.NetReturns.Unfavourable),
		"NetReturnStressed":       reoFloat(b.NetReturns.Stressed),
		"RIYEntry":                reoFloat(b.RIY),
		"RIYRHP":                  reoFloat(b.RIY),
	}
	for k, v := range extra {
		values[k] = v
	}

	record := make([]string, len(REOColumns))
	for i, col := range REOColumns {
		record[i] = values[col]
	}
	return record
}

// baseAttributes is the attribute block every variant shares; dates are
// rendered YYYY-MM-DD. The bullion flag marks gold-denominated trades.
func (b *Base) baseAttributes(productName, subtype string) map[string]string {
	bullion := "0"
	if b.CcyFor == "XAU" || b.CcyDom == "XAU" {
		bullion = "1"
	}
	return map[string]string{
		"FXRate":                     reoFloat(b.spot),
		"Illustrative":               "1",
		"IsReportingCurrencyBullion": bullion,
		"NotionalAmount":             reoFloat(RegulatoryNotional),
		"ProductName":                productName,
		"ReportingCurrency":          b.CcySettle,
		"SettlementDate":             dates.AttributeDate(b.settlementDate),
		"SettlementExpiration":       dates.AttributeDate(b.fixingDate),
		"Subtype":                    subtype,
		"TableDate":                  dates.AttributeDate(b.TradeDate),
		"TenorMultiplier":            strconv.Itoa(b.tenor.N),
		"TenorPeriod":                b.tenor.Unit.String(),
		"TradeDate":                  dates.AttributeDate(b.TradeDate),
	}
}

// baseLogFields is the product-log block every variant shares.
func (b *Base) baseLogFields(productType string) map[string]any {
	fields := map[string]any{
		"id":                b.id,
		"product_type":      productType,
		"ccy_for":           b.CcyFor,
		"ccy_dom":           b.CcyDom,
		"ccy_settlement":    b.CcySettle,
		"position":          b.Position.String(),
		"tenor_rhp":         b.TenorRHP,
		"cost":              b.Cost,
		"trade_date":        dates.AttributeDate(b.TradeDate),
		"spot_date":         dates.AttributeDate(b.spotDate),
		"settlement_date":   dates.AttributeDate(b.settlementDate),
		"fixing_date":       dates.AttributeDate(b.fixingDate),
		"n_trading_days":    b.nDaysRHP,
		"year_fraction_rhp": b.tRHP,
		"spot":              b.spot,
		"scaling_factor":    b.ScalingFactor,
		"total_costs_rhp":   b.TotalCostsRHP,
		"gross_amounts":     b.GrossAmounts,
		"net_amounts":       b.NetAmounts,
		"net_returns":       b.NetReturns,
		"riy":               b.RIY,
	}
	if b.failure != nil {
		fields["error_kind"] = b.failure.Kind
		fields["error"] = b.failure.Err.Error()
	}
	return fields
}
