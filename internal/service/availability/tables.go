package availability

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Domenick1991/farmstay/internal/domain"
	"github.com/Domenick1991/farmstay/internal/extract"
)

type TableResult struct {
	Available   bool
	Location    string   // dining area the party was assigned to
	Suggestions []string // "DD.MM.YYYY ob HH:MM (area)"
}

type slotKey struct {
	date string
	time string
	area string
}

// ValidateTableRules checks the dining day and the arrival time.
func (e *Engine) ValidateTableRules(date, hhmm string) error {
	day, err := e.parseFuture(date, "15.6.2027")
	if err != nil {
		return err
	}
	if !e.catalog.IsTableDay(day.Weekday()) {
		return &RuleError{Msg: fmt.Sprintf("%s je %s. %s", extract.FormatDate(day), weekdayName(day.Weekday()), e.tableDaysMessage())}
	}
	if hhmm == "" {
		return nil
	}
	return e.validateTableTime(hhmm)
}

func (e *Engine) tableDaysMessage() string {
	return fmt.Sprintf("Za mize sprejemamo rezervacije ob sobotah in nedeljah med %02d:00 in %02d:00.",
		e.catalog.KitchenOpenHour, e.catalog.KitchenCloseHour)
}

func (e *Engine) validateTableTime(hhmm string) error {
	normalized, ok := extract.NormalizeTime(hhmm)
	if !ok {
		return ruleErr("Uro prosim vpišite v obliki HH:MM (npr. 12:30).")
	}
	hour, minute, ok := splitTime(normalized)
	if !ok {
		return ruleErr("Uro prosim vpišite v obliki HH:MM (npr. 12:30).")
	}
	if hour < e.catalog.KitchenOpenHour || hour > e.catalog.KitchenCloseHour {
		return ruleErr("Kuhinja obratuje med %02d:00 in %02d:00. Prosimo izberite uro znotraj tega okna.",
			e.catalog.KitchenOpenHour, e.catalog.KitchenCloseHour)
	}
	if hour > e.catalog.LastArrivalHour || (hour == e.catalog.LastArrivalHour && minute > 0) {
		return ruleErr("Zadnji prihod na kosilo je ob %02d:00. Prosimo izberite zgodnejšo uro.", e.catalog.LastArrivalHour)
	}
	return nil
}

// CheckTable assigns the party to the first dining area with room at the exact date and
// time. When none fits, or the combined capacity would be exceeded, it returns
// suggestions instead.
func (e *Engine) CheckTable(ctx context.Context, date, hhmm string, people int) (TableResult, error) {
	slot, ok := extract.NormalizeTime(hhmm)
	if !ok || people <= 0 {
		return TableResult{}, nil
	}

	reservations, err := e.holding(ctx, domain.ReservationTypeTable)
	if err != nil {
		return TableResult{}, err
	}
	occupancy := e.tableOccupancy(reservations)

	if area, ok := e.assign(occupancy, date, slot, people); ok {
		return TableResult{Available: true, Location: area}, nil
	}
	return TableResult{Suggestions: e.suggestSlots(occupancy, date, slot, people)}, nil
}

func (e *Engine) tableOccupancy(reservations []domain.Reservation) map[slotKey]int {
	fallback := ""
	if n := len(e.catalog.DiningAreas); n > 0 {
		fallback = e.catalog.DiningAreas[n-1].Name
	}

	occupancy := make(map[slotKey]int)
	for _, r := range reservations {
		slot, ok := extract.NormalizeTime(r.Time)
		if !ok {
			continue
		}
		area := r.Location
		if area == "" {
			area = fallback
		}
		occupancy[slotKey{date: r.Date, time: slot, area: area}] += r.People
	}
	return occupancy
}

func (e *Engine) assign(occupancy map[slotKey]int, date, slot string, people int) (string, bool) {
	used := 0
	for _, a := range e.catalog.DiningAreas {
		used += occupancy[slotKey{date: date, time: slot, area: a.Name}]
	}
	if used+people > e.catalog.TotalTableCapacity() {
		return "", false
	}

	for _, a := range e.catalog.DiningAreas {
		if occupancy[slotKey{date: date, time: slot, area: a.Name}]+people <= a.Capacity {
			return a.Name, true
		}
	}
	return "", false
}

// suggestSlots scans the other slots of the same day, then the table days of the
// look-ahead window, in chronological order.
func (e *Engine) suggestSlots(occupancy map[slotKey]int, date, requested string, people int) []string {
	limit := e.catalog.TableSuggestionLimit
	var out []string

	scanDay := func(day string, skip string) bool {
		for _, slot := range e.catalog.TableSlots() {
			if slot == skip {
				continue
			}
			if area, ok := e.assign(occupancy, day, slot, people); ok {
				out = append(out, fmt.Sprintf("%s ob %s (%s)", day, slot, area))
				if len(out) >= limit {
					return true
				}
			}
		}
		return false
	}

	if scanDay(date, requested) {
		return out
	}

	start, ok := extract.ParseDate(date)
	if !ok {
		return out
	}
	for delta := 1; delta <= e.catalog.TableLookaheadDays; delta++ {
		candidate := start.AddDate(0, 0, delta)
		if !e.catalog.IsTableDay(candidate.Weekday()) {
			continue
		}
		if scanDay(extract.FormatDate(candidate), "") {
			return out
		}
	}
	return out
}

func splitTime(hhmm string) (int, int, bool) {
	parts := strings.Split(hhmm, ":")
	if len(parts) != 2 {
		return 0, 0, false
	}
	hour, err1 := strconv.Atoi(parts[0])
	minute, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}

// weekdayName returns the Slovene name of a weekday.
func weekdayName(d time.Weekday) string {
	return [...]string{"nedelja", "ponedeljek", "torek", "sreda", "četrtek", "petek", "sobota"}[d]
}
