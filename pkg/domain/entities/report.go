package entities

import "github.com/shopspring/decimal"

// ShortageDocumentComparison cross-checks calculated shortages against an
// externally maintained shortage list
type ShortageDocumentComparison struct {
	Matched        []string `json:"matched"`
	OnlyCalculated []string `json:"only_calculated"`
	OnlyExternal   []string `json:"only_external"`
	Available      bool     `json:"available"`
}

// SmartSubstitute ranks a substitute for the limiting ingredient
type SmartSubstitute struct {
	Substitute
	CoversShortage bool            `json:"covers_shortage"`
	Coverage       decimal.Decimal `json:"coverage_percent"`
}

// ProductionReport is the comprehensive production analysis for one product
type ProductionReport struct {
	ProductID         ProductID                  `json:"product_id"`
	TargetQuantity    decimal.Decimal            `json:"target_quantity"`
	Delivery          DeliverySimulationResult   `json:"delivery"`
	Substitutes       SubstituteAnalysis         `json:"substitutes"`
	SmartSubstitutes  []SmartSubstitute          `json:"smart_substitutes,omitempty"`
	PurchasePlan      []PurchaseSuggestion       `json:"purchase_plan,omitempty"`
	ShortageDocuments ShortageDocumentComparison `json:"shortage_documents"`
	Recommendations   []string                   `json:"recommendations"`
	Markdown          string                     `json:"markdown"`
	Error             string                     `json:"error,omitempty"`
}
