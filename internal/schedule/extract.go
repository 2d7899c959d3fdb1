// Package schedule recovers a proposed meeting time from free text such as
// "Thu Oct 23, 2:00 PM PT".
//
// Extraction is heuristic and never fails: text without a recognisable
// phrase yields no schedule, and an unknown timezone abbreviation is treated
// as UTC.
package schedule

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/roach88/opptrack/internal/ident"
	"github.com/roach88/opptrack/internal/model"
)

var phrase = regexp.MustCompile(`(?i)\b(?:mon|tue|tues|wed|thu|thur|thurs|fri|sat|sun)[a-z]*\.?,?\s+` +
	`([a-z]{3})[a-z]*\.?\s+(\d{1,2})(?:st|nd|rd|th)?,?\s+(?:at\s+)?` +
	`(\d{1,2}):(\d{2})\s*(am|pm)\s+([a-z]{2,4})\b`)

var months = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// Extractor finds schedule phrases and resolves them to UTC.
type Extractor struct {
	resolver OffsetResolver
}

// New returns an Extractor using resolver, or DefaultOffsets when nil.
func New(resolver OffsetResolver) *Extractor {
	if resolver == nil {
		resolver = DefaultOffsets
	}
	return &Extractor{resolver: resolver}
}

// Extract uses DefaultOffsets.
func Extract(body string, year int) *model.Schedule {
	return New(nil).Extract(body, year)
}

// Extract returns the first schedule phrase in body resolved against year,
// or nil when there is none.
func (e *Extractor) Extract(body string, year int) *model.Schedule {
	m := phrase.FindStringSubmatch(body)
	if m == nil {
		return nil
	}
	monthText, dayText, hourText, minuteText, meridiem, zone := m[1], m[2], m[3], m[4], m[5], m[6]

	month, ok := months[strings.ToLower(monthText)]
	if !ok {
		return nil
	}
	day, _ := strconv.Atoi(dayText)
	hour, _ := strconv.Atoi(hourText)
	minute, _ := strconv.Atoi(minuteText)
	if day < 1 || day > 31 || minute > 59 {
		return nil
	}

	hour = To24Hour(hour, meridiem)
	offset, ok := e.resolver.Offset(zone)
	if !ok {
		offset = 0
	}

	at := time.Date(year, month, day, hour-offset, minute, 0, 0, time.UTC)
	return &model.Schedule{
		At:       at,
		ISO:      ident.FormatTime(at),
		Display:  fmt.Sprintf("%s %s, %s:%s %s %s", monthText, dayText, hourText, minuteText, meridiem, zone),
		Timezone: strings.ToUpper(zone),
	}
}

// To24Hour converts a 12-hour clock reading. PM before noon adds 12 and
// 12 AM becomes 0; every other combination passes through unchanged.
func To24Hour(hour int, meridiem string) int {
	switch strings.ToUpper(meridiem) {
	case "PM":
		if hour < 12 {
			return hour + 12
		}
	case "AM":
		if hour == 12 {
			return 0
		}
	}
	return hour
}
