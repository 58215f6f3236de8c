// models/service_type.go
package models

import "time"

// Service is a bookable offering of a provider.
type Service struct {
	ID          string    `bson:"id" json:"id"`
	ProviderID  string    `bson:"providerId" json:"providerId"`
	Name        string    `bson:"name" json:"name"`               // e.g., "Cleaning"
	Description string    `bson:"description" json:"description"` //
	Price       float64   `bson:"price" json:"price"`             // in the checkout currency
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
}

// Summary returns the client-facing subset of the service.
func (s *Service) Summary() *ServiceSummary {
	return &ServiceSummary{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		Price:       s.Price,
	}
}
