package request

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"courtpilot/models"
)

// flexibilityMin is the half-width of the window produced by "around X"
// phrases and the step used downstream when widening windows.
const flexibilityMin = 30

var (
	courtPattern    = regexp.MustCompile(`court\s*#?\s*(\d+)`)
	clockPattern    = regexp.MustCompile(`\b(\d{1,2})(?::(\d{2}))?\s*(am|pm)\b`)
	clock24Pattern  = regexp.MustCompile(`\b(\d{1,2}):(\d{2})\b`)
	oclockPattern   = regexp.MustCompile(`\b(\d{1,2})\s*o'?clock\b`)
	afterPattern    = regexp.MustCompile(`\b(?:after|from)\s+(\d{1,2}(?::\d{2})?\s*(?:am|pm)|\d{1,2}:\d{2}|noon)\b`)
	beforePattern   = regexp.MustCompile(`\bbefore\s+(\d{1,2}(?::\d{2})?\s*(?:am|pm)|\d{1,2}:\d{2}|noon)\b`)
	aroundPattern   = regexp.MustCompile(`\b(?:around|about)\s+(\d{1,2}(?::\d{2})?\s*(?:am|pm)|\d{1,2}:\d{2}|noon)\b`)
	noonPattern     = regexp.MustCompile(`\bnoon\b`)
	hoursPattern    = regexp.MustCompile(`\b(\d+(?:\.\d+)?)\s*(?:hours?|hrs?)\b`)
	minutesPattern  = regexp.MustCompile(`\b(\d+)\s*(?:minutes?|mins?)\b`)
	isoDatePattern  = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
	slashPattern    = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})(?:/(\d{4}))?\b`)
	nextDayPattern  = regexp.MustCompile(`\bnext\s+(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)
	weekdayPattern  = regexp.MustCompile(`\b(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)
	monthDayPattern = regexp.MustCompile(`\b(january|february|march|april|may|june|july|august|september|october|november|december|jan|feb|mar|apr|jun|jul|aug|sep|sept|oct|nov|dec)\s+(\d{1,2})(?:st|nd|rd|th)?(?:\s*,?\s*(\d{4}))?\b`)
	dayMonthPattern = regexp.MustCompile(`\b(\d{1,2})(?:st|nd|rd|th)?\s+(january|february|march|april|may|june|july|august|september|october|november|december|jan|feb|mar|apr|jun|jul|aug|sep|sept|oct|nov|dec)(?:\s+(\d{4}))?\b`)
)

var weekdays = map[string]time.Weekday{
	"sunday": time.Sunday, "monday": time.Monday, "tuesday": time.Tuesday,
	"wednesday": time.Wednesday, "thursday": time.Thursday,
	"friday": time.Friday, "saturday": time.Saturday,
}

var months = map[string]time.Month{
	"january": time.January, "jan": time.January,
	"february": time.February, "feb": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"may": time.May,
	"june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sep": time.September, "sept": time.September,
	"october": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
}

// Parser converts free-form booking text into a structured constraint set.
// Unrecognized fragments are ignored, never fatal: a request with zero
// extractable constraints is valid and means "show full availability".
// Now is injectable so relative dates resolve deterministically in tests.
type Parser struct {
	Location   *time.Location
	Now        func() time.Time
	OpeningMin int // minutes from midnight
	ClosingMin int
}

func NewParser(loc *time.Location, openingMin, closingMin int) *Parser {
	if loc == nil {
		loc = time.UTC
	}
	return &Parser{
		Location:   loc,
		Now:        time.Now,
		OpeningMin: openingMin,
		ClosingMin: closingMin,
	}
}

// Parse extracts whatever constraints the text carries.
func (p *Parser) Parse(text string) models.BookingRequest {
	lower := strings.ToLower(text)
	req := models.BookingRequest{}

	if date, ok := p.parseDate(lower); ok {
		req.Date = &date
	}
	if w := p.parseWindow(lower); w != nil {
		req.Window = w
	}
	if m := courtPattern.FindStringSubmatch(lower); m != nil {
		if court, err := strconv.Atoi(m[1]); err == nil && court > 0 {
			req.Court = &court
		}
	}
	if d := parseDuration(lower); d > 0 {
		req.DurationMin = &d
	}
	return req
}

func (p *Parser) today() time.Time {
	now := p.Now().In(p.Location)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, p.Location)
}

// parseDate resolves relative and absolute date phrases. Year-less absolute
// dates resolve to their next occurrence rather than a fixed year.
func (p *Parser) parseDate(text string) (string, bool) {
	today := p.today()

	if strings.Contains(text, "tomorrow") {
		return models.FormatDate(today.AddDate(0, 0, 1)), true
	}
	if strings.Contains(text, "today") || strings.Contains(text, "tonight") {
		return models.FormatDate(today), true
	}

	if m := isoDatePattern.FindStringSubmatch(text); m != nil {
		if _, err := models.ParseDate(m[0], p.Location); err == nil {
			return m[0], true
		}
	}

	if m := nextDayPattern.FindStringSubmatch(text); m != nil {
		target := weekdays[m[1]]
		ahead := (int(target) - int(today.Weekday()) + 7) % 7
		if ahead == 0 {
			ahead = 7
		}
		return models.FormatDate(today.AddDate(0, 0, ahead)), true
	}

	if m := monthDayPattern.FindStringSubmatch(text); m != nil {
		return p.resolveMonthDay(m[1], m[2], m[3], today)
	}
	if m := dayMonthPattern.FindStringSubmatch(text); m != nil {
		return p.resolveMonthDay(m[2], m[1], m[3], today)
	}

	if m := slashPattern.FindStringSubmatch(text); m != nil {
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		if month >= 1 && month <= 12 && day >= 1 && day <= 31 {
			year := today.Year()
			if m[3] != "" {
				year, _ = strconv.Atoi(m[3])
			}
			date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, p.Location)
			if m[3] == "" && date.Before(today) {
				date = date.AddDate(1, 0, 0)
			}
			return models.FormatDate(date), true
		}
	}

	// A bare weekday means its next occurrence, today included.
	if m := weekdayPattern.FindStringSubmatch(text); m != nil {
		target := weekdays[m[1]]
		ahead := (int(target) - int(today.Weekday()) + 7) % 7
		return models.FormatDate(today.AddDate(0, 0, ahead)), true
	}

	return "", false
}

func (p *Parser) resolveMonthDay(monthName, dayStr, yearStr string, today time.Time) (string, bool) {
	month, ok := months[monthName]
	if !ok {
		return "", false
	}
	day, err := strconv.Atoi(dayStr)
	if err != nil || day < 1 || day > 31 {
		return "", false
	}
	year := today.Year()
	if yearStr != "" {
		year, _ = strconv.Atoi(yearStr)
	}
	date := time.Date(year, month, day, 0, 0, 0, 0, p.Location)
	if yearStr == "" && date.Before(today) {
		date = date.AddDate(1, 0, 0)
	}
	return models.FormatDate(date), true
}

// parseWindow resolves time-of-day phrases into an acceptable start-time
// range. Precedence: bounded phrases ("after", "before", "around") beat bare
// clock times, which beat day parts.
func (p *Parser) parseWindow(text string) *models.TimeWindow {
	if m := afterPattern.FindStringSubmatch(text); m != nil {
		if t, ok := parseClockPhrase(m[1]); ok {
			return p.clamp(t, p.ClosingMin)
		}
	}
	if m := beforePattern.FindStringSubmatch(text); m != nil {
		if t, ok := parseClockPhrase(m[1]); ok {
			return p.clamp(p.OpeningMin, t)
		}
	}
	if m := aroundPattern.FindStringSubmatch(text); m != nil {
		if t, ok := parseClockPhrase(m[1]); ok {
			return p.clamp(t-flexibilityMin, t+flexibilityMin+1)
		}
	}

	if m := clockPattern.FindStringSubmatch(text); m != nil {
		if t, ok := parseClockPhrase(m[0]); ok {
			return p.clamp(t, t+1)
		}
	}
	if noonPattern.MatchString(text) {
		return p.clamp(720, 721)
	}
	if m := clock24Pattern.FindStringSubmatch(text); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		if hour <= 23 && minute <= 59 {
			t := hour*60 + minute
			return p.clamp(t, t+1)
		}
	}
	if m := oclockPattern.FindStringSubmatch(text); m != nil {
		hour, _ := strconv.Atoi(m[1])
		if hour >= 1 && hour <= 12 {
			// No meridiem: hours below 8 are taken as evening play.
			t := hour * 60
			if hour <= 7 {
				t += 12 * 60
			}
			return p.clamp(t, t+1)
		}
	}

	switch {
	case strings.Contains(text, "morning"):
		return p.clamp(p.OpeningMin, 720)
	case strings.Contains(text, "afternoon"):
		return p.clamp(720, 1020)
	case strings.Contains(text, "evening") || strings.Contains(text, "tonight"):
		return p.clamp(1020, p.ClosingMin)
	}

	return nil
}

func (p *Parser) clamp(start, end int) *models.TimeWindow {
	if start < p.OpeningMin {
		start = p.OpeningMin
	}
	if end > p.ClosingMin {
		end = p.ClosingMin
	}
	if end <= start {
		// Out-of-hours phrases pin to the nearest operating boundary so the
		// matcher still has an anchor to widen from.
		if start >= p.ClosingMin {
			start = p.ClosingMin - 1
		}
		return &models.TimeWindow{Start: start, End: start + 1}
	}
	return &models.TimeWindow{Start: start, End: end}
}

// parseClockPhrase handles "5pm", "5:30 pm", "17:30" and "noon".
func parseClockPhrase(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "noon" {
		return 720, true
	}
	if m := clockPattern.FindStringSubmatch(s); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute := 0
		if m[2] != "" {
			minute, _ = strconv.Atoi(m[2])
		}
		if hour < 1 || hour > 12 || minute > 59 {
			return 0, false
		}
		if m[3] == "pm" && hour != 12 {
			hour += 12
		}
		if m[3] == "am" && hour == 12 {
			hour = 0
		}
		return hour*60 + minute, true
	}
	if m := clock24Pattern.FindStringSubmatch(s); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		if hour > 23 || minute > 59 {
			return 0, false
		}
		return hour*60 + minute, true
	}
	return 0, false
}

// parseDuration handles "90 minutes", "2 hours", "1.5 hrs" and the common
// spoken forms for an hour and a half.
func parseDuration(text string) int {
	if strings.Contains(text, "hour and a half") || strings.Contains(text, "hour and half") {
		return 90
	}
	if strings.Contains(text, "half an hour") || strings.Contains(text, "half hour") {
		return 30
	}
	if m := hoursPattern.FindStringSubmatch(text); m != nil {
		if h, err := strconv.ParseFloat(m[1], 64); err == nil && h > 0 {
			return int(h * 60)
		}
	}
	if m := minutesPattern.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			return n
		}
	}
	if strings.Contains(text, "an hour") || strings.Contains(text, "one hour") {
		return 60
	}
	return 0
}
