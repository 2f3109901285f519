package validation

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iudanet/portfolio-tracker/internal/models"
)

// MaxPriceDecimals is the precision accepted for prices.
const MaxPriceDecimals = 2

// ValidateAssetType checks the asset type enum.
func ValidateAssetType(assetType string) error {
	if _, err := models.ParseAssetType(assetType); err != nil {
		return fmt.Errorf("asset_type must be one of STOCK, BOND, MUTUAL_FUND")
	}
	return nil
}

// ValidateAssetCode checks that the asset code is present and has no spaces.
func ValidateAssetCode(code string) error {
	if strings.TrimSpace(code) == "" {
		return fmt.Errorf("code cannot be empty")
	}
	if strings.ContainsAny(code, " \t\n") {
		return fmt.Errorf("code must not contain whitespace")
	}
	return nil
}

// ValidateQuantity requires a strictly positive quantity.
func ValidateQuantity(q decimal.Decimal) error {
	if !q.IsPositive() {
		return fmt.Errorf("quantity must be greater than 0")
	}
	return nil
}

// ValidateUpdateQuantity allows zero, which removes the asset.
func ValidateUpdateQuantity(q decimal.Decimal) error {
	if q.IsNegative() {
		return fmt.Errorf("quantity must not be negative")
	}
	return nil
}

// ValidatePrice requires a positive price with at most two decimals.
func ValidatePrice(p decimal.Decimal) error {
	if !p.IsPositive() {
		return fmt.Errorf("price must be greater than 0")
	}
	if !p.Equal(p.Truncate(MaxPriceDecimals)) {
		return fmt.Errorf("price must have at most %d decimal places", MaxPriceDecimals)
	}
	return nil
}
