// Package checkout holds the order input rules shared by every checkout path.
package checkout

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/angelmondragon/shopfront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/shopfront-backend/pkg/errors"
	"github.com/angelmondragon/shopfront-backend/pkg/types"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	return v
}

// LineViolationDetail describes one rejected order line.
type LineViolationDetail struct {
	Index     int       `json:"index"`
	ProductID uuid.UUID `json:"productId"`
	Reason    string    `json:"reason"`
}

// ValidateShipment requires every contact field and a well-formed email.
func ValidateShipment(shipment types.Shipment) error {
	err := validate.Struct(shipment)
	if err == nil {
		return nil
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid shipment")
	}
	details := map[string]string{}
	for _, fe := range errs {
		switch fe.Tag() {
		case "required":
			details[fe.Field()] = "is required"
		case "email":
			details[fe.Field()] = "must be a valid email"
		default:
			details[fe.Field()] = "is invalid"
		}
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "invalid shipment").WithDetails(details)
}

// ValidateLines rejects empty orders, missing product ids and negative
// quantities. A zero quantity means one unit.
func ValidateLines(lines []types.CartLine) error {
	if len(lines) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "order must contain at least one item")
	}
	var violations []LineViolationDetail
	for i, line := range lines {
		switch {
		case line.ProductID == uuid.Nil:
			violations = append(violations, LineViolationDetail{Index: i, Reason: "productId is required"})
		case line.Quantity < 0:
			violations = append(violations, LineViolationDetail{Index: i, ProductID: line.ProductID, Reason: "quantity must be at least 1"})
		case line.VariantIndex != nil && *line.VariantIndex < 0:
			violations = append(violations, LineViolationDetail{Index: i, ProductID: line.ProductID, Reason: "variantIndex out of range"})
		}
	}
	if len(violations) == 0 {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid order items: %d violation(s)", len(violations))).
		WithDetails(map[string]any{"violations": violations})
}

// ValidatePayment checks the method and that online payments carry a reference.
func ValidatePayment(method enums.PaymentMethod, reference *string) error {
	if !method.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method").
			WithDetails(map[string]any{"paymentMethod": method})
	}
	hasRef := reference != nil && strings.TrimSpace(*reference) != ""
	if method.RequiresReference() && !hasRef {
		return pkgerrors.New(pkgerrors.CodeValidation, "paymentReference is required for online payments")
	}
	return nil
}
