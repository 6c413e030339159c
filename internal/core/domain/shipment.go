package domain

// AdditionalDuty is a user-added duty layer (for example a trade-remedy
// surcharge) rated independently of the resolved classification.
type AdditionalDuty struct {
	ID    string  `json:"id"`
	Label string  `json:"label"`
	Rate  float64 `json:"rate"`
}

// AdditionalFee is a flat cost line item; only included fees count toward
// the landed-cost total.
type AdditionalFee struct {
	ID       string  `json:"id"`
	Label    string  `json:"label"`
	Amount   float64 `json:"amount"`
	Included bool    `json:"included"`
}

// ShipmentInputs is the full set of calculator inputs for one shipment.
// Monetary fields are treated as non-negative by convention; negative values
// are not rejected and propagate unmodified through the cost computation.
type ShipmentInputs struct {
	UnitPrice        float64          `json:"unit_price"`
	Quantity         int              `json:"quantity"`
	Freight          float64          `json:"freight"`
	IncludeFreight   bool             `json:"include_freight"`
	Insurance        float64          `json:"insurance"`
	IncludeInsurance bool             `json:"include_insurance"`
	OriginCountry    string           `json:"origin_country"`
	AdditionalDuties []AdditionalDuty `json:"additional_duties,omitempty"`
	AdditionalFees   []AdditionalFee  `json:"additional_fees,omitempty"`
}

// DefaultShipmentInputs returns the session-start calculator state.
func DefaultShipmentInputs() ShipmentInputs {
	return ShipmentInputs{
		UnitPrice:        0,
		Quantity:         1,
		IncludeFreight:   true,
		IncludeInsurance: true,
		OriginCountry:    "China",
		AdditionalDuties: []AdditionalDuty{},
		AdditionalFees:   []AdditionalFee{},
	}
}

// CostResult is the derived landed-cost breakdown. It is a pure projection of
// ShipmentInputs plus the current duty rate and is never persisted.
type CostResult struct {
	FOBValue        float64 `json:"fob_value"`
	CIFValue        float64 `json:"cif_value"`
	DutyAmount      float64 `json:"duty_amount"`
	OtherFeesTotal  float64 `json:"other_fees_total"`
	TotalLandedCost float64 `json:"total_landed_cost"`
	TotalDutyRate   float64 `json:"total_duty_rate"`
}
