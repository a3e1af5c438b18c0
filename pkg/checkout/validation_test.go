package checkout

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/shopfront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/shopfront-backend/pkg/errors"
	"github.com/angelmondragon/shopfront-backend/pkg/types"
)

func validShipment() types.Shipment {
	return types.Shipment{Name: "Ada", Email: "ada@example.com", Phone: "+1 555 0100", Address: "1 Loop Rd"}
}

func TestValidateShipment(t *testing.T) {
	require.NoError(t, ValidateShipment(validShipment()))

	bad := validShipment()
	bad.Email = "not-an-email"
	bad.Phone = ""
	err := ValidateShipment(bad)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	details, ok := typed.Details().(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "must be a valid email", details["email"])
	assert.Equal(t, "is required", details["phone"])
}

func TestValidateLines(t *testing.T) {
	assert.True(t, pkgerrors.HasCode(ValidateLines(nil), pkgerrors.CodeValidation))
	require.NoError(t, ValidateLines([]types.CartLine{{ProductID: uuid.New()}, {ProductID: uuid.New(), Quantity: 3}}))

	neg := -1
	err := ValidateLines([]types.CartLine{
		{ProductID: uuid.New(), Quantity: 1},
		{ProductID: uuid.New(), Quantity: -2},
		{Quantity: 1},
		{ProductID: uuid.New(), VariantIndex: &neg},
	})
	require.Error(t, err)
	details := pkgerrors.As(err).Details().(map[string]any)
	violations := details["violations"].([]LineViolationDetail)
	require.Len(t, violations, 3)
	assert.Equal(t, 1, violations[0].Index)
	assert.Equal(t, "productId is required", violations[1].Reason)
	assert.Equal(t, 3, violations[2].Index)
}

func TestValidatePayment(t *testing.T) {
	ref := "pi_123"
	blank := "  "
	require.NoError(t, ValidatePayment(enums.PaymentMethodDelivery, nil))
	require.NoError(t, ValidatePayment(enums.PaymentMethodOnline, &ref))
	assert.True(t, pkgerrors.HasCode(ValidatePayment(enums.PaymentMethodOnline, &blank), pkgerrors.CodeValidation))
	assert.True(t, pkgerrors.HasCode(ValidatePayment("crypto", nil), pkgerrors.CodeValidation))
}
