package usecase

import (
	"math"
	"testing"

	"github.com/atulgupta100/tariff-watch/internal/core/domain"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestComputeLandedCostFOBBasis(t *testing.T) {
	in := domain.ShipmentInputs{
		UnitPrice:        100,
		Quantity:         10,
		Freight:          50,
		IncludeFreight:   true,
		Insurance:        0,
		IncludeInsurance: false,
	}

	result := ComputeLandedCost(in, 5.3, "United States")

	if !almostEqual(result.FOBValue, 1000) {
		t.Fatalf("fob = %v, want 1000", result.FOBValue)
	}
	if !almostEqual(result.CIFValue, 1050) {
		t.Fatalf("cif = %v, want 1050", result.CIFValue)
	}
	if !almostEqual(result.DutyAmount, 53.0) {
		t.Fatalf("duty = %v, want 53.0 (5.3%% of fob)", result.DutyAmount)
	}
	if !almostEqual(result.TotalLandedCost, 1103.0) {
		t.Fatalf("total = %v, want 1103.0", result.TotalLandedCost)
	}
}

func TestComputeLandedCostCIFBasis(t *testing.T) {
	in := domain.ShipmentInputs{
		UnitPrice:      100,
		Quantity:       10,
		Freight:        50,
		IncludeFreight: true,
	}

	result := ComputeLandedCost(in, 5.3, "Germany")

	if !almostEqual(result.DutyAmount, 55.65) {
		t.Fatalf("duty = %v, want 55.65 (5.3%% of cif)", result.DutyAmount)
	}
	if !almostEqual(result.TotalLandedCost, 1105.65) {
		t.Fatalf("total = %v, want 1105.65", result.TotalLandedCost)
	}
}

func TestComputeLandedCostAdditionalDutiesShareBase(t *testing.T) {
	in := domain.ShipmentInputs{
		UnitPrice: 10,
		Quantity:  100,
		AdditionalDuties: []domain.AdditionalDuty{
			{ID: "d1", Label: "Section 301", Rate: 25},
			{ID: "d2", Label: "Safeguard", Rate: 10},
		},
	}

	result := ComputeLandedCost(in, 5, "United States")

	// Each layer against fob=1000, never compounded: 50 + 250 + 100.
	if !almostEqual(result.DutyAmount, 400) {
		t.Fatalf("duty = %v, want 400", result.DutyAmount)
	}
	if !almostEqual(result.TotalDutyRate, 40) {
		t.Fatalf("combined rate = %v, want 40", result.TotalDutyRate)
	}
}

func TestComputeLandedCostIncludedFeesOnly(t *testing.T) {
	in := domain.ShipmentInputs{
		UnitPrice: 1,
		Quantity:  1,
		AdditionalFees: []domain.AdditionalFee{
			{ID: "f1", Label: "Drayage", Amount: 120, Included: true},
			{ID: "f2", Label: "Warehousing", Amount: 500, Included: false},
			{ID: "f3", Label: "Broker", Amount: 80, Included: true},
		},
	}

	result := ComputeLandedCost(in, 0, "Germany")

	if !almostEqual(result.OtherFeesTotal, 200) {
		t.Fatalf("fees = %v, want 200", result.OtherFeesTotal)
	}
	if !almostEqual(result.TotalLandedCost, result.CIFValue+result.DutyAmount+result.OtherFeesTotal) {
		t.Fatalf("landed cost identity violated: %+v", result)
	}
}

func TestComputeLandedCostIdentityHolds(t *testing.T) {
	cases := []struct {
		name        string
		in          domain.ShipmentInputs
		rate        float64
		destination string
	}{
		{"zero everything", domain.ShipmentInputs{}, 0, "Japan"},
		{"insurance excluded", domain.ShipmentInputs{UnitPrice: 9.99, Quantity: 3, Insurance: 40, IncludeInsurance: false}, 7.5, "United Kingdom"},
		{"negative price propagates", domain.ShipmentInputs{UnitPrice: -5, Quantity: 2, Freight: 10, IncludeFreight: true}, 4, "Canada"},
		{"fees and duties", domain.ShipmentInputs{
			UnitPrice:        42,
			Quantity:         7,
			Freight:          33,
			IncludeFreight:   true,
			Insurance:        12,
			IncludeInsurance: true,
			AdditionalDuties: []domain.AdditionalDuty{{Rate: 2.5}},
			AdditionalFees:   []domain.AdditionalFee{{Amount: 15, Included: true}},
		}, 6.2, "Australia"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := ComputeLandedCost(tc.in, tc.rate, tc.destination)
			want := result.CIFValue + result.DutyAmount + result.OtherFeesTotal
			if !almostEqual(result.TotalLandedCost, want) {
				t.Fatalf("total = %v, want cif+duty+fees = %v", result.TotalLandedCost, want)
			}
		})
	}
}

func TestComputeLandedCostIsDeterministic(t *testing.T) {
	in := domain.ShipmentInputs{
		UnitPrice:        19.5,
		Quantity:         40,
		Freight:          75,
		IncludeFreight:   true,
		AdditionalDuties: []domain.AdditionalDuty{{Label: "301", Rate: 25}},
	}

	first := ComputeLandedCost(in, 3.1, "United States")
	second := ComputeLandedCost(in, 3.1, "United States")
	if first != second {
		t.Fatalf("recomputation differs: %+v vs %+v", first, second)
	}
	if in.AdditionalDuties[0].Rate != 25 {
		t.Fatalf("inputs were mutated")
	}
}

func TestIsFOBBasis(t *testing.T) {
	for _, dest := range []string{"United States", "canada", "AUSTRALIA", "  United States "} {
		if !IsFOBBasis(dest) {
			t.Fatalf("expected %q to be FOB basis", dest)
		}
	}
	for _, dest := range []string{"Germany", "Japan", "European Union", ""} {
		if IsFOBBasis(dest) {
			t.Fatalf("expected %q to be CIF basis", dest)
		}
	}
}
