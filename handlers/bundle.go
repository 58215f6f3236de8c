// File: handlers/bundle.go
package handlers

// HandlerBundle groups the endpoint handlers the router mounts.
type HandlerBundle struct {
	Booking *BookingHandler
	Payment *PaymentHandler
	Socket  *SocketHandler
	Device  *DeviceHandler
}
