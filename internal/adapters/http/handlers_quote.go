package httpadapter

import (
	"net/http"
	"strings"

	"github.com/atulgupta100/tariff-watch/internal/core/domain"
	"github.com/atulgupta100/tariff-watch/internal/core/usecase"
)

// quote computes the landed-cost projection for one shipment. Absent fields
// fall back to the session-start defaults (quantity 1, freight and insurance
// included, origin China).
func (rt *Router) quote(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	defaults := domain.DefaultShipmentInputs()
	var req struct {
		UnitPrice        *float64                `json:"unit_price"`
		Quantity         *int                    `json:"quantity"`
		Freight          float64                 `json:"freight"`
		IncludeFreight   *bool                   `json:"include_freight"`
		Insurance        float64                 `json:"insurance"`
		IncludeInsurance *bool                   `json:"include_insurance"`
		OriginCountry    string                  `json:"origin_country"`
		AdditionalDuties []domain.AdditionalDuty `json:"additional_duties"`
		AdditionalFees   []domain.AdditionalFee  `json:"additional_fees"`
		DutyRate         float64                 `json:"duty_rate"`
		Destination      string                  `json:"destination"`
	}
	if !readJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Destination) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "destination is required"})
		return
	}

	in := defaults
	if req.UnitPrice != nil {
		in.UnitPrice = *req.UnitPrice
	}
	if req.Quantity != nil {
		in.Quantity = *req.Quantity
	}
	in.Freight = req.Freight
	if req.IncludeFreight != nil {
		in.IncludeFreight = *req.IncludeFreight
	}
	in.Insurance = req.Insurance
	if req.IncludeInsurance != nil {
		in.IncludeInsurance = *req.IncludeInsurance
	}
	if strings.TrimSpace(req.OriginCountry) != "" {
		in.OriginCountry = req.OriginCountry
	}
	if req.AdditionalDuties != nil {
		in.AdditionalDuties = req.AdditionalDuties
	}
	if req.AdditionalFees != nil {
		in.AdditionalFees = req.AdditionalFees
	}

	result := usecase.ComputeLandedCost(in, req.DutyRate, req.Destination)

	if rt.metrics != nil {
		basis := "cif"
		if usecase.IsFOBBasis(req.Destination) {
			basis = "fob"
		}
		rt.metrics.RecordQuote(serviceName, basis)
	}
	writeJSON(w, http.StatusOK, result)
}
