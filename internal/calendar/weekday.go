package calendar

import "github.com/aasan/postgang/internal/domain"

// weekdayNames Norwegian weekday names indexed by ISO weekday - 1
var weekdayNames = [7]string{
	"mandag",
	"tirsdag",
	"onsdag",
	"torsdag",
	"fredag",
	"lørdag",
	"søndag",
}

// WeekdayName lowercase Norwegian name of the date's weekday
func WeekdayName(date domain.DeliveryDate) string {
	return weekdayNames[date.ISOWeekday()-1]
}
