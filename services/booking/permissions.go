package booking

import "slotbook/models"

// IsBookableProvider reports whether u can receive bookings.
func IsBookableProvider(u *models.User) bool {
	return u != nil && (u.Role == models.RoleServiceProvider || u.Role == models.RoleAdmin)
}

// CanRelease: the owning user, or an admin.
func CanRelease(actor models.Actor, b *models.Booking) bool {
	return actor.UserID == b.UserID || actor.Role.IsAdmin()
}

// CanUpdateStatus: the booked provider, or an admin.
func CanUpdateStatus(actor models.Actor, b *models.Booking) bool {
	return actor.UserID == b.ProviderID || actor.Role.IsAdmin()
}

// CanView: either party of the booking, or an admin.
func CanView(actor models.Actor, b *models.Booking) bool {
	return actor.UserID == b.UserID || actor.UserID == b.ProviderID || actor.Role.IsAdmin()
}

// CanPay: only the owning user opens a checkout for a booking.
func CanPay(actor models.Actor, b *models.Booking) bool {
	return actor.UserID == b.UserID
}
