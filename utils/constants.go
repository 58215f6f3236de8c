// File: utils/constants.go
package utils

import "time"

// AvailabilityCachePrefix is the prefix used for Redis availability view keys.
const AvailabilityCachePrefix = "availability:"

// NotifyChannelPrefix is the prefix of per-user Redis pub/sub channels.
const NotifyChannelPrefix = "notify:"

// DefaultAvailabilityTTL applies when no TTL is configured.
const DefaultAvailabilityTTL = 30 * time.Second

// DateLayout is the calendar-day format used on the wire and in cache keys.
const DateLayout = "2006-01-02"
