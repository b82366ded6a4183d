package vouchers

import (
	"context"
	"io"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-WalkBookingService/internal/service/vouchers/models"
	"github.com/m04kA/SMC-WalkBookingService/internal/testutil/memstore"
	"github.com/m04kA/SMC-WalkBookingService/pkg/logger"
	"github.com/m04kA/SMC-WalkBookingService/pkg/ptr"
)

func TestService_Lifecycle(t *testing.T) {
	svc := NewService(memstore.New().Vouchers(), logger.NewWithWriter(io.Discard, "error"))
	ctx := context.Background()

	created, err := svc.Create(ctx, &models.CreateVoucherRequest{
		Type:            "PROMO_CODE",
		Code:            " SPRING ",
		DiscountPercent: ptr.Ptr(decimal.NewFromInt(15)),
	})
	require.NoError(t, err)
	assert.Equal(t, "SPRING", created.Code)
	assert.Equal(t, "ACTIVE", created.Status)
	assert.True(t, created.DiscountAbsolute.IsZero())

	_, err = svc.Create(ctx, &models.CreateVoucherRequest{Type: "PROMO_CODE", Code: "SPRING"})
	assert.ErrorIs(t, err, ErrDuplicateCode)

	_, err = svc.Create(ctx, &models.CreateVoucherRequest{Type: "GIFT", Code: "X"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	expired, err := svc.Expire(ctx, "SPRING")
	require.NoError(t, err)
	assert.Equal(t, "EXPIRED", expired.Status)

	_, err = svc.Expire(ctx, "SPRING")
	assert.ErrorIs(t, err, ErrCannotExpire)

	_, err = svc.GetByCode(ctx, "MISSING")
	assert.ErrorIs(t, err, ErrVoucherNotFound)

	list, err := svc.List(ctx, &models.ListRequest{Status: ptr.Ptr("EXPIRED")})
	require.NoError(t, err)
	assert.Equal(t, 1, list.Total)
}

func TestErrors_CarryPackagePrefix(t *testing.T) {
	for _, err := range []error{ErrVoucherNotFound, ErrDuplicateCode, ErrCannotExpire, ErrInvalidInput, ErrInternal} {
		assert.Regexp(t, "^vouchers: ", err.Error())
	}
}
