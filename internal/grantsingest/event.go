package grantsingest

import (
	"fmt"
	"strings"
	"time"
)

// ScheduledEvent is the payload delivered by the daily schedule.
type ScheduledEvent struct {
	Timestamp time.Time `json:"timestamp"`
}

// GrantsURL returns the extract URL published for the event's calendar date.
func (e ScheduledEvent) GrantsURL(base string) string {
	return fmt.Sprintf("%s/extract/GrantsDBExtract%sv2.zip",
		strings.TrimRight(base, "/"),
		e.Timestamp.Format("20060102"),
	)
}

// DestinationKey returns the object key the archive is stored under.
func (e ScheduledEvent) DestinationKey() string {
	return fmt.Sprintf("sources/%s/grants.gov/archive.zip", e.Timestamp.Format("2006/01/02"))
}
