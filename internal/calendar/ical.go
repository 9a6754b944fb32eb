// Package calendar exports events as an iCalendar feed.
package calendar

import (
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-ical"

	"github.com/eventlist-manager/backend/internal/storage/models"
)

// ProductID identifies this application in exported feeds.
const ProductID = "-//eventlist-manager//events//EN"

// Encode writes events as a VCALENDAR of all-day VEVENTs. DTEND is the day
// after End, since iCalendar end dates are exclusive. Events whose dates do
// not parse are skipped.
func Encode(w io.Writer, events []models.Event, now time.Time) (int, error) {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, ProductID)

	written := 0
	for _, e := range events {
		ve, err := toVEvent(e, now)
		if err != nil {
			continue
		}
		cal.Children = append(cal.Children, ve)
		written++
	}

	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return 0, fmt.Errorf("encoding calendar: %w", err)
	}
	return written, nil
}

func toVEvent(e models.Event, now time.Time) (*ical.Component, error) {
	start, err := e.StartDate()
	if err != nil {
		return nil, fmt.Errorf("event %s start: %w", e.ID, err)
	}
	end, err := e.EndDate()
	if err != nil {
		return nil, fmt.Errorf("event %s end: %w", e.ID, err)
	}
	if end.Before(start) {
		end = start
	}

	ve := ical.NewComponent(ical.CompEvent)
	ve.Props.SetText(ical.PropUID, e.ID.String()+"@eventlist-manager")
	ve.Props.SetText(ical.PropSummary, e.Name)
	ve.Props.SetDateTime(ical.PropDateTimeStamp, now.UTC())
	ve.Props.SetDate(ical.PropDateTimeStart, start)
	ve.Props.SetDate(ical.PropDateTimeEnd, end.AddDate(0, 0, 1))
	return ve, nil
}
