package extract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Friday
var fixedNow = time.Date(2026, time.October, 16, 10, 30, 0, 0, time.Local)

func TestDate_ExplicitFormats(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "padded", input: "15.07.2027", expected: "15.07.2027"},
		{name: "single digits", input: "1.1.2027", expected: "01.01.2027"},
		{name: "inside sentence", input: "Prišel bom 20.12.2026", expected: "20.12.2026"},
		{name: "two digit year", input: "5.8.27", expected: "05.08.2027"},
		{name: "slashes", input: "3/4/2027", expected: "03.04.2027"},
		{name: "three digit year", input: "3.4.027", expected: "03.04.2027"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Date(tc.input, fixedNow)
			require.True(t, ok)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestDate_RelativeVocabulary(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{input: "danes", expected: "16.10.2026"},
		{input: "jutri zvečer", expected: "17.10.2026"},
		{input: "pojutrišnjem", expected: "18.10.2026"},
		{input: "čez 5 dni", expected: "21.10.2026"},
		{input: "cez 10 dni", expected: "26.10.2026"},
		{input: "čez 2 tedna", expected: "30.10.2026"},
		{input: "ta sobota", expected: "17.10.2026"},
		{input: "naslednja nedelja", expected: "18.10.2026"},
		{input: "to nedeljo", expected: "18.10.2026"},
		{input: "naslednji vikend", expected: "17.10.2026"},
		{input: "v petek", expected: "23.10.2026"},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got, ok := Date(tc.input, fixedNow)
			require.True(t, ok)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestDate_WeekdayRollsForwardAtLeastOneDay(t *testing.T) {
	saturday := time.Date(2026, time.October, 17, 9, 0, 0, 0, time.Local)
	got, ok := Date("ta sobota", saturday)
	require.True(t, ok)
	assert.Equal(t, "24.10.2026", got)
}

func TestDate_NoMatch(t *testing.T) {
	for _, input := range []string{"pozdravljeni", "kaj imate za jest", "soba za 2"} {
		_, ok := Date(input, fixedNow)
		assert.False(t, ok, input)
	}
}

func TestTime(t *testing.T) {
	got, ok := Time("ob 13:00")
	require.True(t, ok)
	assert.Equal(t, "13:00", got)

	got, ok = Time("pridemo 9.30")
	require.True(t, ok)
	assert.Equal(t, "09:30", got)

	_, ok = Time("25:00")
	assert.False(t, ok)
	_, ok = Time("12:75")
	assert.False(t, ok)
	_, ok = Time("15.07.2027")
	assert.False(t, ok, "date components must not be read as a time")
	_, ok = Time("brez ure")
	assert.False(t, ok)
}

func TestNormalizeTime(t *testing.T) {
	for input, expected := range map[string]string{
		"13":       "13:00",
		"13h":      "13:00",
		"ob 14":    "14:00",
		"12.30":    "12:30",
		"ob 12:30": "12:30",
	} {
		got, ok := NormalizeTime(input)
		require.True(t, ok, input)
		assert.Equal(t, expected, got, input)
	}
	_, ok := NormalizeTime("kmalu")
	assert.False(t, ok)
}

func TestNights(t *testing.T) {
	testCases := []struct {
		name        string
		input       string
		shortAnswer bool
		expected    int
		ok          bool
	}{
		{name: "nocitve word", input: "3 nočitve", expected: 3, ok: true},
		{name: "nocitev word", input: "5 nočitev", expected: 5, ok: true},
		{name: "noci word", input: "za 2 noči", expected: 2, ok: true},
		{name: "english", input: "bookng room for 3 nights", expected: 3, ok: true},
		{name: "in sentence", input: "potrebujem sobo za 3 noči", expected: 3, ok: true},
		{name: "ignores date numbers", input: "15.07.2027 za 3 nočitve", expected: 3, ok: true},
		{name: "bare number short answer", input: "6", shortAnswer: true, expected: 6, ok: true},
		{name: "bare ten", input: "10", shortAnswer: true, expected: 10, ok: true},
		{name: "embedded short answer", input: "ostali bi 4", shortAnswer: true, expected: 4, ok: true},
		{name: "bare number without context", input: "6", shortAnswer: false, ok: false},
		{name: "above ceiling", input: "50", shortAnswer: true, ok: false},
		{name: "zero", input: "0", shortAnswer: true, ok: false},
		{name: "above ceiling with word", input: "45 nočitev", ok: false},
		{name: "naslednji vikend", input: "naslednji vikend", shortAnswer: true, ok: false},
		{name: "ta vikend", input: "ta vikend", shortAnswer: true, ok: false},
		{name: "za vikend", input: "za vikend", ok: false},
		{name: "only a date", input: "12.8.2027", shortAnswer: true, ok: false},
		{name: "people count is not nights", input: "2 osebi", shortAnswer: true, ok: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Nights(tc.input, tc.shortAnswer)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.expected, got)
			}
		})
	}
}

func TestPeople(t *testing.T) {
	testCases := []struct {
		input    string
		expected int
	}{
		{input: "4", expected: 4},
		{input: "6 oseb", expected: 6},
		{input: "za 5 oseb", expected: 5},
		{input: "2+2", expected: 4},
		{input: "2 + 2", expected: 4},
		{input: "3+1", expected: 4},
		{input: "2 odrasla in 2 otroka", expected: 2},
		{input: "rezerveru sobo za 4", expected: 4},
		{input: "12.9.2027 za 3", expected: 3},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got, ok := People(tc.input)
			require.True(t, ok)
			assert.Equal(t, tc.expected, got)
		})
	}

	_, ok := People("nas bo kar nekaj")
	assert.False(t, ok)
}

func TestPhoneAndEmail(t *testing.T) {
	phone, ok := Phone("041 123 456")
	require.True(t, ok)
	assert.Equal(t, "041123456", phone)

	phone, ok = Phone("+386 41 123 456")
	require.True(t, ok)
	assert.Equal(t, "+38641123456", phone)

	_, ok = Phone("041 12")
	assert.False(t, ok)

	email, ok := Email("moj mail je Test@Example.si hvala")
	require.True(t, ok)
	assert.Equal(t, "test@example.si", email)

	_, ok = Email("nimam maila")
	assert.False(t, ok)
}

func TestParseDate(t *testing.T) {
	d, ok := ParseDate("05.08.2027")
	require.True(t, ok)
	assert.Equal(t, time.August, d.Month())
	assert.Equal(t, "05.08.2027", FormatDate(d))

	_, ok = ParseDate("45.13.2027")
	assert.False(t, ok)
}

func TestConfirmation(t *testing.T) {
	yes, no := Confirmation("Da, potrjujem")
	assert.True(t, yes)
	assert.False(t, no)

	yes, no = Confirmation("ne hvala")
	assert.False(t, yes)
	assert.True(t, no)

	yes, no = Confirmation("mogoče")
	assert.False(t, yes)
	assert.False(t, no)
}
