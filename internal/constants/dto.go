package constants

import (
	"time"

	"github.com/shopspring/decimal"
)

type ConstantInput struct {
	Name  string          `json:"name" form:"name"`
	Value decimal.Decimal `json:"value" form:"value"`
}

type ConstantOutput struct {
	ID        int32           `json:"id"`
	Name      string          `json:"name"`
	Value     decimal.Decimal `json:"value"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
