package subclass

import (
	"time"

	"github.com/freitasmatheusrn/supplier-sync/internal/rules"
	"github.com/freitasmatheusrn/supplier-sync/internal/synthesis"
)

type CreateSubClassInput struct {
	Name string `json:"name" form:"name"`
}

type SubClassOutput struct {
	ID                     string                        `json:"id"`
	Name                   string                        `json:"name"`
	AttributeModifications rules.RuleSet                 `json:"attribute_modifications"`
	DimensionOperations    synthesis.DimensionOperations `json:"dimension_operations"`
	UpdatedAt              time.Time                     `json:"updated_at"`
}
