// Package extract pulls dates, times and counts out of free-text guest messages.
// Every function is pure and reports a miss with ok=false instead of an error.
package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
)

const DateLayout = "02.01.2006"

var (
	dateRe       = regexp.MustCompile(`\b(\d{1,2})[./](\d{1,2})[./](\d{2,4})\b`)
	timeRe       = regexp.MustCompile(`\b(\d{1,2})[:.](\d{2})\b`)
	inDaysRe     = regexp.MustCompile(`(?:čez|cez)\s+(\d{1,3})\s+(?:dni|dan|dneva)`)
	inWeeksRe    = regexp.MustCompile(`(?:čez|cez)\s+(\d{1,2})\s+(?:teden|tedna|tedne|tednov)`)
	nightWordRe  = regexp.MustCompile(`(\d{1,3})\s*(?:nočit|noči|noč|nocit|noci|night|nächte|naechte|nacht)`)
	plusRe       = regexp.MustCompile(`(\d{1,2})\s*\+\s*(\d{1,2})`)
	numberRe     = regexp.MustCompile(`\b(\d{1,3})\b`)
	bareNumberRe = regexp.MustCompile(`^\d{1,3}$`)
	shortTimeRe  = regexp.MustCompile(`^(\d{1,2})(?:[:.](\d{2}))?$`)
	emailRe      = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9\-]+(?:\.[a-zA-Z0-9\-]+)+`)
)

// weekday words are matched as prefixes of whole tokens so that declensions
// ("soboto", "nedeljo") resolve too.
var weekdayStems = []struct {
	stem string
	day  time.Weekday
}{
	{"sobot", time.Saturday},
	{"nedelj", time.Sunday},
	{"petek", time.Friday},
	{"vikend", time.Saturday},
}

var peopleWords = []string{"oseb", "odrasl", "otrok", "ljudi", "person", "people", "gost"}

// Date finds an arrival date and returns it as DD.MM.YYYY.
// Explicit D.M.YYYY / D.M.YY dates win over relative vocabulary.
func Date(text string, now time.Time) (string, bool) {
	t := strings.ToLower(text)

	if m := dateRe.FindStringSubmatch(t); m != nil {
		return pad2(m[1]) + "." + pad2(m[2]) + "." + normalizeYear(m[3]), true
	}

	today := truncateDay(now)
	switch {
	case strings.Contains(t, "pojutrišnjem") || strings.Contains(t, "pojutrisnjem"):
		return today.AddDate(0, 0, 2).Format(DateLayout), true
	case hasWord(t, "danes"):
		return today.Format(DateLayout), true
	case hasWord(t, "jutri"):
		return today.AddDate(0, 0, 1).Format(DateLayout), true
	}

	if m := inDaysRe.FindStringSubmatch(t); m != nil {
		n, _ := strconv.Atoi(m[1])
		return today.AddDate(0, 0, n).Format(DateLayout), true
	}
	if m := inWeeksRe.FindStringSubmatch(t); m != nil {
		n, _ := strconv.Atoi(m[1])
		return today.AddDate(0, 0, 7*n).Format(DateLayout), true
	}

	for _, tok := range tokens(t) {
		for _, w := range weekdayStems {
			if strings.HasPrefix(tok, w.stem) {
				return nextWeekday(today, w.day).Format(DateLayout), true
			}
		}
	}
	return "", false
}

// Time finds an H:MM or H.MM time and returns it as HH:MM.
func Time(text string) (string, bool) {
	t := dateRe.ReplaceAllString(strings.ToLower(text), " ")
	m := timeRe.FindStringSubmatch(t)
	if m == nil {
		return "", false
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	if hour > 23 || minute > 59 {
		return "", false
	}
	return pad2(m[1]) + ":" + m[2], true
}

// NormalizeTime accepts the short answers guests give when asked for a time
// ("13", "13h", "ob 13.30") and returns HH:MM.
func NormalizeTime(text string) (string, bool) {
	if v, ok := Time(text); ok {
		return v, true
	}
	t := strings.ToLower(strings.TrimSpace(text))
	t = strings.TrimPrefix(t, "ob ")
	t = strings.TrimSuffix(t, "h")
	t = strings.TrimSuffix(t, " uri")
	t = strings.TrimSpace(t)
	m := shortTimeRe.FindStringSubmatch(t)
	if m == nil {
		return "", false
	}
	hour, _ := strconv.Atoi(m[1])
	minute := 0
	if m[2] != "" {
		minute, _ = strconv.Atoi(m[2])
	}
	if hour > 23 || minute > 59 {
		return "", false
	}
	return time.Date(0, 1, 1, hour, minute, 0, 0, time.UTC).Format("15:04"), true
}

// Nights finds a night count between 1 and 30. shortAnswer tells the extractor the
// guest was just asked "how many nights", so a bare or embedded number counts.
// Numbers that belong to a date and the word "vikend" are never taken as nights.
func Nights(text string, shortAnswer bool) (int, bool) {
	t := strings.TrimSpace(stripDates(strings.ToLower(text)))

	if m := nightWordRe.FindStringSubmatch(t); m != nil {
		return inRange(m[1], 1, 30)
	}
	if !shortAnswer {
		return 0, false
	}
	if bareNumberRe.MatchString(t) {
		return inRange(t, 1, 30)
	}
	for _, w := range peopleWords {
		if strings.Contains(t, w) {
			return 0, false
		}
	}
	if m := numberRe.FindStringSubmatch(t); m != nil {
		return inRange(m[1], 1, 30)
	}
	return 0, false
}

// People finds a party size. "2+2" is summed, otherwise the first number wins.
func People(text string) (int, bool) {
	t := stripDates(strings.ToLower(text))

	if m := plusRe.FindStringSubmatch(t); m != nil {
		a, _ := strconv.Atoi(m[1])
		b, _ := strconv.Atoi(m[2])
		if a+b > 0 {
			return a + b, true
		}
	}
	if m := numberRe.FindStringSubmatch(t); m != nil {
		return inRange(m[1], 1, 99)
	}
	return 0, false
}

// Digits returns only the digits of s.
func Digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Phone returns a cleaned phone number when the text carries at least seven digits.
func Phone(text string) (string, bool) {
	digits := Digits(text)
	if len(digits) < 7 {
		return "", false
	}
	if strings.HasPrefix(strings.TrimSpace(text), "+") {
		return "+" + digits, true
	}
	return digits, true
}

func Email(text string) (string, bool) {
	m := emailRe.FindString(text)
	if m == "" {
		return "", false
	}
	return strings.ToLower(m), true
}

// ParseDate parses a DD.MM.YYYY date in the local time zone.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{DateLayout, "2.1.2006"} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// HasWord reports whether word appears as a whole token of text.
func HasWord(text, word string) bool {
	return hasWord(strings.ToLower(text), word)
}

// Tokens splits text into lowercase letter/digit runs.
func Tokens(text string) []string {
	return tokens(strings.ToLower(text))
}

func tokens(t string) []string {
	return strings.FieldsFunc(t, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func hasWord(t, word string) bool {
	for _, tok := range tokens(t) {
		if tok == word {
			return true
		}
	}
	return false
}

func stripDates(t string) string {
	t = dateRe.ReplaceAllString(t, " ")
	return timeRe.ReplaceAllString(t, " ")
}

func inRange(s string, lo, hi int) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < lo || n > hi {
		return 0, false
	}
	return n, true
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

func normalizeYear(y string) string {
	switch len(y) {
	case 4:
		return y
	case 3:
		return "20" + y[1:]
	default:
		return "20" + pad2(y)
	}
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// nextWeekday returns the next occurrence of day strictly after today.
func nextWeekday(today time.Time, day time.Weekday) time.Time {
	delta := (int(day) - int(today.Weekday()) + 7) % 7
	if delta == 0 {
		delta = 7
	}
	return today.AddDate(0, 0, delta)
}

var (
	yesWords = []string{"da", "ja", "yes", "ok", "okej", "potrdi", "potrdim", "potrjujem", "seveda", "drži", "velja", "jawohl"}
	noWords  = []string{"ne", "no", "nein", "nikakor", "nočem"}
)

// Confirmation reads a yes/no answer. Both results are false when the text is neither.
func Confirmation(text string) (yes bool, no bool) {
	toks := tokens(strings.ToLower(text))
	for _, tok := range toks {
		for _, w := range noWords {
			if tok == w {
				return false, true
			}
		}
	}
	for _, tok := range toks {
		for _, w := range yesWords {
			if tok == w {
				return true, false
			}
		}
	}
	return false, false
}
