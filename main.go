package main

import (
	"context"
	"fmt"

	"github.com/meenmo/moderiv/pricing"
)

func main() {
	ctx := context.Background()

	iv, err := pricing.ImpliedVolatility(ctx, pricing.ImpliedVolatilityRequest{
		OptionType:      "call",
		TargetPrice:     10.450583572185565,
		Spot:            100,
		Strike:          100,
		RiskFreeRate:    0.05,
		TimeToMaturity:  1,
		VolatilityGuess: 0.3,
	})
	if err != nil {
		fmt.Println("implied volatility:", err)
		return
	}
	fmt.Printf("Implied vol: %.6f\n", iv.ImpliedVolatility)

	cb, err := pricing.ConvertibleBond(ctx, pricing.ConvertibleBondRequest{
		RiskFreeRate:        0.05,
		CreditSpread:        0.005,
		Volatility:          0.3,
		Spot:                50,
		ConversionRatio:     1.8,
		Steps:               801,
		IssueDate:           "2022-03-15",
		MaturityDate:        "2032-03-15",
		SettlementDate:      "2025-11-21",
		CouponRate:          0.04,
		CouponFrequencyCode: 2,
		DayCountCode:        2,
		CallType:            "call",
		DividendType:        "fixed",
		DividendSchedule: []pricing.ScheduleRow{
			{Date: "2026-06-15", Amount: "0.5"},
			{Date: "2027-06-15", Amount: "0.5"},
		},
		CallabilitySchedule: []pricing.ScheduleRow{
			{Date: "2028-03-15", Amount: "103"},
			{Date: "2030-03-15", Amount: "101"},
		},
	})
	if err != nil {
		fmt.Println("convertible bond:", err)
		return
	}

	fmt.Printf("Convertible PV: %.4f\n", cb.PresentValue)
	fmt.Printf("Clean price: %.4f\n", cb.CleanPrice)
	fmt.Printf("Bond floor: %.4f\n", cb.BondFloor)
	fmt.Printf("Conversion value: %.4f\n", cb.ConversionValue)
}
