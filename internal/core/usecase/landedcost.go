package usecase

import (
	"strings"

	"github.com/atulgupta100/tariff-watch/internal/core/domain"
)

// Destinations that administer duty on free-on-board value. Everything else
// uses CIF as the dutiable base. This is policy, not configuration.
var fobBasisDestinations = map[string]struct{}{
	"united states": {},
	"canada":        {},
	"australia":     {},
}

// IsFOBBasis reports whether the destination assesses duty on the FOB value.
func IsFOBBasis(destination string) bool {
	_, ok := fobBasisDestinations[strings.ToLower(strings.TrimSpace(destination))]
	return ok
}

// ComputeLandedCost maps shipment inputs and the current duty rate to a
// landed-cost breakdown. It is deterministic, never mutates its inputs, and
// has no failure modes: values arrive already coerced to numbers.
//
// Every additional duty layer is assessed against the same dutiable base as
// the classification rate; layers do not compound on each other.
func ComputeLandedCost(in domain.ShipmentInputs, dutyRate float64, destination string) domain.CostResult {
	fob := in.UnitPrice * float64(in.Quantity)

	cif := fob
	if in.IncludeFreight {
		cif += in.Freight
	}
	if in.IncludeInsurance {
		cif += in.Insurance
	}

	dutyBase := cif
	if IsFOBBasis(destination) {
		dutyBase = fob
	}

	dutyAmount := dutyBase * (dutyRate / 100)
	totalRate := dutyRate
	for _, layer := range in.AdditionalDuties {
		dutyAmount += dutyBase * (layer.Rate / 100)
		totalRate += layer.Rate
	}

	var otherFees float64
	for _, fee := range in.AdditionalFees {
		if fee.Included {
			otherFees += fee.Amount
		}
	}

	return domain.CostResult{
		FOBValue:        fob,
		CIFValue:        cif,
		DutyAmount:      dutyAmount,
		OtherFeesTotal:  otherFees,
		TotalLandedCost: cif + dutyAmount + otherFees,
		TotalDutyRate:   totalRate,
	}
}
