// Package hours extracts a weekly business-hours range from free text and
// evaluates it against an instant. It backs the deterministic fast path for
// open/closed questions, so nothing here touches a model endpoint.
package hours

import (
	"fmt"
	"strings"
	"time"
)

// weekdaysFull is indexed by weekday with Monday = 0.
var weekdaysFull = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// dayAliases maps full names and standard abbreviations to weekday indices.
var dayAliases = map[string]int{
	"monday": 0, "mon": 0,
	"tuesday": 1, "tue": 1, "tues": 1,
	"wednesday": 2, "wed": 2,
	"thursday": 3, "thu": 3, "thur": 3, "thurs": 3,
	"friday": 4, "fri": 4,
	"saturday": 5, "sat": 5,
	"sunday": 6, "sun": 6,
}

// Clock is a time of day in 24-hour form.
type Clock struct {
	Hour   int
	Minute int
}

// Minutes returns the clock as minutes since midnight.
func (c Clock) Minutes() int {
	return c.Hour*60 + c.Minute
}

// Range is a parsed weekly schedule: the covered weekday indices
// (Monday = 0, contiguous and possibly wrapping past Sunday) and the daily
// opening window.
type Range struct {
	Days  []int
	Start Clock
	End   Clock
}

// Status is the result of evaluating a Range against an instant.
type Status struct {
	Open       bool
	Message    string
	HumanRange string
}

// ParseRange extracts the first `Day - Day [,] Time - Time` schedule from
// text. Day matches a weekday name or standard abbreviation
// (case-insensitive); Time is 12-hour with optional minutes and a mandatory
// am/pm suffix. Returns false when no schedule is found.
func ParseRange(text string) (*Range, bool) {
	tokens := tokenize(text)

	for i := range tokens {
		if r, ok := matchRangeAt(tokens, i); ok {
			return r, true
		}
	}
	return nil, false
}

// matchRangeAt runs the range grammar against the token stream starting at
// position i: DAY DASH DAY [COMMA] TIME DASH TIME.
func matchRangeAt(tokens []token, i int) (*Range, bool) {
	day1, i, ok := matchDay(tokens, i)
	if !ok {
		return nil, false
	}
	i, ok = matchKind(tokens, i, tokenDash)
	if !ok {
		return nil, false
	}
	day2, i, ok := matchDay(tokens, i)
	if !ok {
		return nil, false
	}
	// Optional comma between the day span and the time span.
	if j, ok := matchKind(tokens, i, tokenComma); ok {
		i = j
	}
	start, i, ok := matchTime(tokens, i)
	if !ok {
		return nil, false
	}
	i, ok = matchKind(tokens, i, tokenDash)
	if !ok {
		return nil, false
	}
	end, _, ok := matchTime(tokens, i)
	if !ok {
		return nil, false
	}

	return &Range{
		Days:  coveredDays(day1, day2),
		Start: start,
		End:   end,
	}, true
}

// matchDay consumes a weekday word token.
func matchDay(tokens []token, i int) (int, int, bool) {
	if i >= len(tokens) || tokens[i].kind != tokenWord {
		return 0, i, false
	}
	day, ok := dayAliases[tokens[i].text]
	if !ok {
		return 0, i, false
	}
	return day, i + 1, true
}

// matchKind consumes a single token of the given kind.
func matchKind(tokens []token, i int, kind tokenKind) (int, bool) {
	if i >= len(tokens) || tokens[i].kind != kind {
		return i, false
	}
	return i + 1, true
}

// matchTime consumes a clock token followed by its am/pm word, converting to
// 24-hour form. A 12-hour value of 12 maps to 0 before pm adds 12.
func matchTime(tokens []token, i int) (Clock, int, bool) {
	if i+1 >= len(tokens) || tokens[i].kind != tokenClock || tokens[i+1].kind != tokenWord {
		return Clock{}, i, false
	}

	meridiem := tokens[i+1].text
	if meridiem != "am" && meridiem != "pm" {
		return Clock{}, i, false
	}

	hour := tokens[i].hour
	minute := tokens[i].minute
	if hour < 1 || hour > 12 || minute < 0 || minute > 59 {
		return Clock{}, i, false
	}

	if hour == 12 {
		hour = 0
	}
	if meridiem == "pm" {
		hour += 12
	}

	return Clock{Hour: hour, Minute: minute}, i + 2, true
}

// coveredDays returns the inclusive weekday span from day1 to day2, wrapping
// past Sunday when day1 > day2 (e.g. Friday-Monday).
func coveredDays(day1, day2 int) []int {
	var days []int
	if day1 <= day2 {
		for d := day1; d <= day2; d++ {
			days = append(days, d)
		}
		return days
	}
	for d := day1; d < 7; d++ {
		days = append(days, d)
	}
	for d := 0; d <= day2; d++ {
		days = append(days, d)
	}
	return days
}

// Evaluate compares the range against now and returns the open/closed status
// with a human-readable message.
func (r *Range) Evaluate(now time.Time) Status {
	humanRange := fmt.Sprintf("%s–%s", FormatClock(r.Start), FormatClock(r.End))
	weekday := mondayIndex(now.Weekday())

	covered := false
	for _, d := range r.Days {
		if d == weekday {
			covered = true
			break
		}
	}

	if !covered {
		msg := fmt.Sprintf("Today is %s; regular hours are %s, %s–%s.",
			weekdaysFull[weekday], humanRange,
			weekdaysFull[r.Days[0]], weekdaysFull[r.Days[len(r.Days)-1]])
		return Status{Open: false, Message: msg, HumanRange: humanRange}
	}

	nowMinutes := now.Hour()*60 + now.Minute()
	startMinutes := r.Start.Minutes()
	endMinutes := r.End.Minutes()

	if startMinutes <= nowMinutes && nowMinutes <= endMinutes {
		left := endMinutes - nowMinutes
		hrs, mins := left/60, left%60
		leftStr := fmt.Sprintf("%dm", mins)
		if hrs > 0 {
			leftStr = fmt.Sprintf("%dh %dm", hrs, mins)
		}
		return Status{
			Open:       true,
			Message:    fmt.Sprintf("Open now; closes in about %s.", leftStr),
			HumanRange: humanRange,
		}
	}

	if nowMinutes < startMinutes {
		return Status{
			Open:       false,
			Message:    fmt.Sprintf("Closed now; opens today at %s.", FormatClock(r.Start)),
			HumanRange: humanRange,
		}
	}

	return Status{
		Open:       false,
		Message:    fmt.Sprintf("Closed now; closed for the day (regular hours %s).", humanRange),
		HumanRange: humanRange,
	}
}

// FormatClock renders a 24-hour clock in 12-hour form with minute padding
// and an AM/PM suffix.
func FormatClock(c Clock) string {
	suffix := "AM"
	if c.Hour >= 12 {
		suffix = "PM"
	}
	h12 := c.Hour % 12
	if h12 == 0 {
		h12 = 12
	}
	return fmt.Sprintf("%d:%02d %s", h12, c.Minute, suffix)
}

// mondayIndex converts Go's Sunday-based weekday to the Monday = 0 indexing
// used by the alias table.
func mondayIndex(w time.Weekday) int {
	return (int(w) + 6) % 7
}

// tokenKind identifies the token classes the range grammar consumes.
type tokenKind int

const (
	tokenWord tokenKind = iota
	tokenClock
	tokenDash
	tokenComma
)

// token is one lexical unit from the input text. Clock tokens carry the
// parsed hour and minute digits; word tokens carry lowercased text.
type token struct {
	kind   tokenKind
	text   string
	hour   int
	minute int
}

// tokenize splits text into word, clock-number, dash and comma tokens.
// The three dash variants (hyphen, en dash, em dash) collapse to one dash
// token; any other rune acts as a separator.
func tokenize(text string) []token {
	var tokens []token
	runes := []rune(strings.ToLower(text))
	i := 0

	for i < len(runes) {
		r := runes[i]
		switch {
		case r == '-' || r == '–' || r == '—':
			tokens = append(tokens, token{kind: tokenDash})
			i++
		case r == ',':
			tokens = append(tokens, token{kind: tokenComma})
			i++
		case isLetter(r):
			start := i
			for i < len(runes) && isLetter(runes[i]) {
				i++
			}
			tokens = append(tokens, token{kind: tokenWord, text: string(runes[start:i])})
		case isDigit(r):
			hour := 0
			for i < len(runes) && isDigit(runes[i]) {
				hour = hour*10 + int(runes[i]-'0')
				i++
			}
			minute := 0
			if i+2 < len(runes) && runes[i] == ':' && isDigit(runes[i+1]) && isDigit(runes[i+2]) {
				minute = int(runes[i+1]-'0')*10 + int(runes[i+2]-'0')
				i += 3
			}
			tokens = append(tokens, token{kind: tokenClock, hour: hour, minute: minute})
		default:
			i++
		}
	}

	return tokens
}

func isLetter(r rune) bool {
	return r >= 'a' && r <= 'z'
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
