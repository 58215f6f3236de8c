package booking

import (
	"errors"
	"fmt"
	"testing"

	"slotbook/models"

	"github.com/stretchr/testify/assert"
)

func TestKindOfWrappedError(t *testing.T) {
	err := fmt.Errorf("handler: %w", NewConflictError("slot %s taken", "10:00"))
	assert.Equal(t, KindConflict, KindOf(err))
	assert.Equal(t, "slot 10:00 taken", MessageOf(err))

	assert.Equal(t, ErrorKind(""), KindOf(errors.New("boom")))
	assert.Equal(t, "internal error", MessageOf(errors.New("boom")))
}

func TestUpstreamErrorUnwraps(t *testing.T) {
	cause := errors.New("timeout")
	err := NewUpstreamError(cause, "geocoder failed")
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "timeout")
}

func TestPermissions(t *testing.T) {
	b := &models.Booking{UserID: "user-1", ProviderID: "prov-1"}
	superAdmin := models.Actor{UserID: "root", Role: models.RoleSuperAdmin}

	assert.True(t, CanRelease(customer, b))
	assert.True(t, CanRelease(superAdmin, b))
	assert.False(t, CanRelease(providerSelf, b))

	assert.True(t, CanUpdateStatus(providerSelf, b))
	assert.True(t, CanUpdateStatus(admin, b))
	assert.False(t, CanUpdateStatus(customer, b))

	assert.True(t, CanView(customer, b))
	assert.True(t, CanView(providerSelf, b))
	assert.False(t, CanView(otherUser, b))

	assert.True(t, CanPay(customer, b))
	assert.False(t, CanPay(admin, b))

	assert.True(t, IsBookableProvider(&models.User{Role: models.RoleServiceProvider}))
	assert.True(t, IsBookableProvider(&models.User{Role: models.RoleAdmin}))
	assert.False(t, IsBookableProvider(&models.User{Role: models.RoleUser}))
	assert.False(t, IsBookableProvider(nil))
}
