package pricing

import (
	"context"
	"strings"

	"github.com/meenmo/moderiv/bond"
	"github.com/meenmo/moderiv/calendar"
	"github.com/meenmo/moderiv/config"
	"github.com/meenmo/moderiv/errs"
	"github.com/meenmo/moderiv/logger"
	"github.com/meenmo/moderiv/marketdata"
	"github.com/meenmo/moderiv/schedule"
	"github.com/meenmo/moderiv/utils"
)

// ConvertibleBondRequest describes a fixed-coupon convertible bond and its
// market. Prices and amounts are per 100 of face; rates are decimals.
type ConvertibleBondRequest struct {
	TaskID          string  `json:"task_id,omitempty"`
	RiskFreeRate    float64 `json:"risk_free_rate"`
	CreditSpread    float64 `json:"credit_spread"`
	Volatility      float64 `json:"volatility"`
	Spot            float64 `json:"underlying"`
	DividendYield   float64 `json:"dividend_yield,omitempty"`
	ConversionRatio float64 `json:"conversion_ratio"`
	Steps           int     `json:"steps"`

	MaturityDate   string `json:"maturity_date"`
	SettlementDate string `json:"settlement_date"`
	IssueDate      string `json:"issue_date"`

	CouponRate float64 `json:"coupon_rate"`
	// CouponFrequencyCode is the number of coupons per year: 1, 2, 3, 4, 6 or 12.
	CouponFrequencyCode int `json:"frequency"`
	// DayCountCode is a basis code, see utils.DayCountFromBasis.
	DayCountCode int `json:"day_count"`

	// CallType applies to every callability row: "call" or "0" for issuer
	// calls, "put" or "1" for holder puts.
	CallType string `json:"call_type"`
	// DividendType applies to every dividend row: "fixed" or "0" for cash
	// amounts, "proportional" or "1" for fractions of spot.
	DividendType string `json:"dividend_type"`
	// CallPriceType is clean (default) or dirty.
	CallPriceType string `json:"call_price_type,omitempty"`

	DividendSchedule    []ScheduleRow `json:"dividends"`
	CallabilitySchedule []ScheduleRow `json:"callability"`

	// Redemption defaults to bond.redemption.
	Redemption float64 `json:"redemption,omitempty"`
}

type ConvertibleBondResult struct {
	PresentValue          float64 `json:"present_value"`
	CleanPrice            float64 `json:"clean_price"`
	AccruedAmount         float64 `json:"accrued_amount"`
	BondFloor             float64 `json:"bond_floor"`
	ConversionValue       float64 `json:"conversion_value"`
	ConversionProbability float64 `json:"conversion_probability"`
	// Yield is the continuously compounded yield implied by PresentValue.
	Yield       float64 `json:"yield"`
	SkippedRows int     `json:"skipped_rows"`
}

// Rounded returns r with every price rounded to places decimals.
func (r ConvertibleBondResult) Rounded(places int32) ConvertibleBondResult {
	return ConvertibleBondResult{
		PresentValue:          Round(r.PresentValue, places),
		CleanPrice:            Round(r.CleanPrice, places),
		AccruedAmount:         Round(r.AccruedAmount, places),
		BondFloor:             Round(r.BondFloor, places),
		ConversionValue:       Round(r.ConversionValue, places),
		ConversionProbability: Round(r.ConversionProbability, places),
		Yield:                 Round(r.Yield, places),
		SkippedRows:           r.SkippedRows,
	}
}

// ConvertibleBond prices a convertible bond on a Tsiveriotis-Fernandes tree.
//
// Valuation happens bond.settlement_days business days before the
// settlement date on bond.calendar. Malformed schedule rows are skipped and
// counted in SkippedRows rather than failing the request.
func ConvertibleBond(ctx context.Context, req ConvertibleBondRequest) (ConvertibleBondResult, error) {
	const op = "pricing.ConvertibleBond"
	cfg := config.GetConfig()

	if err := errs.RequireFinite(op,
		[]string{"risk-free rate", "credit spread", "volatility", "underlying", "dividend yield", "conversion ratio", "coupon rate", "redemption"},
		req.RiskFreeRate, req.CreditSpread, req.Volatility, req.Spot, req.DividendYield, req.ConversionRatio, req.CouponRate, req.Redemption); err != nil {
		return ConvertibleBondResult{}, err
	}

	issue, err := utils.ParseDate(req.IssueDate)
	if err != nil {
		return ConvertibleBondResult{}, errs.Domain(op, "issue_date: %v", err)
	}
	maturity, err := utils.ParseDate(req.MaturityDate)
	if err != nil {
		return ConvertibleBondResult{}, errs.Domain(op, "maturity_date: %v", err)
	}
	settlement, err := utils.ParseDate(req.SettlementDate)
	if err != nil {
		return ConvertibleBondResult{}, errs.Domain(op, "settlement_date: %v", err)
	}

	dayCount, err := utils.DayCountFromBasis(req.DayCountCode)
	if err != nil {
		return ConvertibleBondResult{}, errs.Domain(op, "%v", err)
	}
	freq, err := schedule.FrequencyFromCode(req.CouponFrequencyCode)
	if err != nil {
		return ConvertibleBondResult{}, errs.Domain(op, "%v", err)
	}
	side, err := parseCallType(req.CallType)
	if err != nil {
		return ConvertibleBondResult{}, err
	}
	divKind, err := parseDividendType(req.DividendType)
	if err != nil {
		return ConvertibleBondResult{}, err
	}
	priceType, err := bond.ParsePriceType(req.CallPriceType)
	if err != nil {
		return ConvertibleBondResult{}, err
	}

	divRows, skippedDivs := parseSchedule("dividends", req.DividendSchedule, issue, maturity)
	callRows, skippedCalls := parseSchedule("callability", req.CallabilitySchedule, issue, maturity)

	redemption := req.Redemption
	if redemption == 0 {
		redemption = cfg.Bond.Redemption
	}
	cal := calendar.CalendarID(strings.ToUpper(cfg.Bond.Calendar))

	cb := &bond.ConvertibleBond{
		IssueDate:       issue,
		MaturityDate:    maturity,
		Face:            cfg.Bond.Face,
		Redemption:      redemption,
		ConversionRatio: req.ConversionRatio,
		CouponRate:      req.CouponRate,
		Frequency:       freq,
		DayCount:        dayCount,
		Calendar:        cal,
		SettlementDays:  cfg.Bond.SettlementDays,
	}
	for _, row := range divRows {
		cb.Dividends = append(cb.Dividends, bond.Dividend{Date: row.Date, Amount: row.Amount, Kind: divKind})
	}
	for _, row := range callRows {
		cb.Callability = append(cb.Callability, bond.Callability{Date: row.Date, Price: row.Amount, Side: side, PriceType: priceType})
	}

	today := calendar.AddBusinessDays(cal, settlement, -cfg.Bond.SettlementDays)
	process := marketdata.NewBlackScholesProcess(
		marketdata.NewQuote("underlying", marketdata.KindSpot, req.Spot),
		marketdata.NewFlatForward(today, marketdata.NewQuote("dividend yield", marketdata.KindRate, req.DividendYield), dayCount),
		marketdata.NewFlatForward(today, marketdata.NewQuote("risk-free rate", marketdata.KindRate, req.RiskFreeRate), dayCount),
		marketdata.NewBlackConstantVol(today, marketdata.NewQuote("volatility", marketdata.KindVolatility, req.Volatility), dayCount),
	)
	spread := marketdata.NewQuote("credit spread", marketdata.KindSpread, req.CreditSpread)

	done := logger.LogDuration(ctx, "convertible bond", "steps", req.Steps, "dividends", len(cb.Dividends), "callability", len(cb.Callability))
	res, err := bond.NewBinomialConvertibleEngine(process, spread, req.Steps).Calculate(cb)
	done()
	if err != nil {
		return ConvertibleBondResult{}, err
	}

	out := ConvertibleBondResult{
		PresentValue:          res.Value,
		CleanPrice:            res.Value - res.AccruedAmount,
		AccruedAmount:         res.AccruedAmount,
		BondFloor:             res.BondFloor,
		ConversionValue:       res.ConversionValue,
		ConversionProbability: res.ConversionProbability,
		SkippedRows:           skippedDivs + skippedCalls,
	}

	cfs, err := cb.Cashflows()
	if err != nil {
		return ConvertibleBondResult{}, err
	}
	if y, _, err := bond.YieldFromPrice(cfs, res.SettlementDate, dayCount, res.Value); err != nil {
		logger.Get().WarnContext(ctx, "convertible yield not solved", "error", err)
	} else {
		out.Yield = y
	}
	return out, nil
}

func parseCallType(s string) (bond.Side, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "0", "call":
		return bond.Call, nil
	case "1", "put":
		return bond.Put, nil
	default:
		return 0, errs.Domain("pricing.ConvertibleBond", "unknown call_type %q", s)
	}
}

func parseDividendType(s string) (bond.DividendKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "0", "fixed":
		return bond.FixedDividend, nil
	case "1", "proportional":
		return bond.ProportionalDividend, nil
	default:
		return 0, errs.Domain("pricing.ConvertibleBond", "unknown dividend_type %q", s)
	}
}
