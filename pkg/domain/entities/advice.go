package entities

import "github.com/shopspring/decimal"

// Advice is a production analysis with the narrator's purchasing recommendation
type Advice struct {
	ProductID      ProductID         `json:"product_id"`
	Quantity       decimal.Decimal   `json:"quantity"`
	Analysis       string            `json:"analysis"`
	Recommendation string            `json:"llm_recommendation"`
	LLMAvailable   bool              `json:"llm_available"`
	Report         *ProductionReport `json:"report,omitempty"`
}

// StructuredAdvice is the machine-readable shape narrators are asked to answer in
type StructuredAdvice struct {
	Assessment string   `json:"assessment" jsonschema_description:"Short assessment of the production situation"`
	Priority   string   `json:"priority" jsonschema:"enum=high,enum=medium,enum=low" jsonschema_description:"Urgency of purchasing action"`
	Actions    []string `json:"actions" jsonschema_description:"Concrete steps for the purchasing department"`
	Risks      []string `json:"risks" jsonschema_description:"Risks and alternatives such as substitutes"`
}
