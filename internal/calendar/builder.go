package calendar

import (
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/aasan/postgang/internal/domain"
)

const (
	// ProductID PRODID of every generated document
	ProductID = "-//Aasan//Aasan Postgang//EN"
	// InfoURL informational page attached to every event
	InfoURL = "https://www.posten.no/levering-av-post/"

	transparent = "TRANSPARENT"
)

// Builder renders delivery dates as an iCalendar document
type Builder struct {
	clock func() time.Time
}

// NewBuilder creates a Builder stamping documents with the current time
func NewBuilder() *Builder {
	return &Builder{clock: time.Now}
}

// NewBuilderWithClock creates a Builder with a fixed time source
func NewBuilderWithClock(clock func() time.Time) *Builder {
	return &Builder{clock: clock}
}

// Render produces the document for code, one all-day VEVENT per date in ascending order.
// Lines end in CRLF on every platform.
// All events share a single DTSTAMP captured before the first event is built.
func (b *Builder) Render(code domain.PostalCode, dates domain.DeliveryDateSet) string {
	stamp := b.clock().UTC().Truncate(time.Second)

	cal := &ics.Calendar{}
	cal.SetVersion("2.0")
	cal.SetProductId(ProductID)
	cal.SetCalscale("GREGORIAN")
	cal.SetMethod(ics.MethodPublish)

	for _, date := range dates.Sorted() {
		cal.AddVEvent(newEvent(code, date, stamp))
	}

	return cal.Serialize(ics.WithNewLineWindows)
}

// newEvent builds one VEVENT. Property order is fixed: DTSTAMP, DTEND, DTSTART, SUMMARY,
// TRANSP, UID, URL.
func newEvent(code domain.PostalCode, date domain.DeliveryDate, stamp time.Time) *ics.VEvent {
	event := &ics.VEvent{}
	event.SetDtStampTime(stamp)
	event.SetAllDayEndAt(EndDate(date).Time())
	event.SetAllDayStartAt(date.Time())
	event.SetSummary(Summary(code, date))
	event.SetProperty(ics.ComponentPropertyTransp, transparent)
	event.SetProperty(ics.ComponentPropertyUniqueId, UID(code, date))
	event.SetURL(InfoURL)
	return event
}

// EndDate exclusive end of the all-day event on date
func EndDate(date domain.DeliveryDate) domain.DeliveryDate {
	return date.AddDays(1)
}

// Summary e.g. "0357: Posten kommer mandag 6."
func Summary(code domain.PostalCode, date domain.DeliveryDate) string {
	return fmt.Sprintf("%s: Posten kommer %s %d.", code, WeekdayName(date), date.Day)
}

// UID stable identifier, e.g. "postgang-0357-2023-02-06". Calendar clients rely on it to
// update events in place across regenerations.
func UID(code domain.PostalCode, date domain.DeliveryDate) string {
	return fmt.Sprintf("postgang-%s-%04d-%02d-%02d", code, date.Year, int(date.Month), date.Day)
}
