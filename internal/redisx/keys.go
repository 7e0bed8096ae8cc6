package redisx

import "time"

// dedup:{service}:{event_id}, written by the notification relay before it
// forwards an event.
const (
	KeyDedup = "dedup:%s:%s"
	TTLDedup = 48 * time.Hour
)
