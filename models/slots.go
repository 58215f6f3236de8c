package models

import "time"

// SlotDefinition describes one entry of the fixed daily schedule.
type SlotDefinition struct {
	StartTime string `bson:"startTime" json:"startTime"` // "HH:MM", also the slot label
	EndTime   string `bson:"endTime" json:"endTime"`     // StartTime + 1h
}

// SlotState is a slot inside an Availability day record.
type SlotState struct {
	StartTime  string     `bson:"startTime" json:"startTime"`
	EndTime    string     `bson:"endTime" json:"endTime"`
	IsBooked   bool       `bson:"isBooked" json:"isBooked"`
	BookingRef *string    `bson:"bookingRef" json:"bookingRef"`                       // booking currently bound to the slot, nil when free
	ClaimedAt  *time.Time `bson:"claimedAt,omitempty" json:"claimedAt,omitempty"` // set together with BookingRef
}

// Availability is the per-provider, per-day cache of claimed slots.
type Availability struct {
	ID         string      `bson:"id" json:"id"`
	ProviderID string      `bson:"providerId" json:"providerId"`
	Date       time.Time   `bson:"date" json:"date"` // 00:00 UTC of the calendar day
	TimeSlots  []SlotState `bson:"timeSlots" json:"timeSlots"`
	CreatedAt  time.Time   `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time   `bson:"updatedAt" json:"updatedAt"`
}

// Slot returns the entry for label, or nil when the label is not part of the day.
func (a *Availability) Slot(label string) *SlotState {
	for i := range a.TimeSlots {
		if a.TimeSlots[i].StartTime == label {
			return &a.TimeSlots[i]
		}
	}
	return nil
}

// CanonicalSlots is the schedule shared by every provider and every day:
// nine one-hour slots starting 09:00 through 17:00.
var CanonicalSlots = []SlotDefinition{
	{StartTime: "09:00", EndTime: "10:00"},
	{StartTime: "10:00", EndTime: "11:00"},
	{StartTime: "11:00", EndTime: "12:00"},
	{StartTime: "12:00", EndTime: "13:00"},
	{StartTime: "13:00", EndTime: "14:00"},
	{StartTime: "14:00", EndTime: "15:00"},
	{StartTime: "15:00", EndTime: "16:00"},
	{StartTime: "16:00", EndTime: "17:00"},
	{StartTime: "17:00", EndTime: "18:00"},
}

// IsCanonicalSlot reports whether label is one of the nine schedule labels.
func IsCanonicalSlot(label string) bool {
	for _, s := range CanonicalSlots {
		if s.StartTime == label {
			return true
		}
	}
	return false
}

// NewDaySlots returns a fresh, all-free copy of the canonical schedule.
func NewDaySlots() []SlotState {
	slots := make([]SlotState, 0, len(CanonicalSlots))
	for _, s := range CanonicalSlots {
		slots = append(slots, SlotState{StartTime: s.StartTime, EndTime: s.EndTime})
	}
	return slots
}

// SlotStatus is the public view of a slot.
type SlotStatus string

const (
	SlotAvailable SlotStatus = "Available"
	SlotBooked    SlotStatus = "Booked"
)

// SlotAvailability is one row of the availability query response.
type SlotAvailability struct {
	StartTime string     `json:"startTime"`
	EndTime   string     `json:"endTime"`
	Status    SlotStatus `json:"status"`
}
