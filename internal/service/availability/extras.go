package availability

import (
	"math"
	"strconv"
	"strings"

	"github.com/Domenick1991/farmstay/internal/extract"
)

// Wellness, meal and package requests are validated against fixed windows and party
// limits only. They do not consult existing reservations.

func (e *Engine) ValidateWellness(date, hhmm string, hours, people int) error {
	if _, err := e.parseFuture(date, "15.6.2027"); err != nil {
		return err
	}
	if hhmm != "" {
		if err := e.validateWellnessTime(hhmm, hours); err != nil {
			return err
		}
	}
	if hours != 0 && !e.validDuration(hours) {
		return ruleErr("Trajanje wellness obiska je lahko %s ure.", e.durationList())
	}
	return e.validateParty(people, e.catalog.WellnessMaxPeople,
		"Za skupine večje od %d oseb nas prosimo kontaktirajte telefonsko na %s.")
}

func (e *Engine) validateWellnessTime(hhmm string, hours int) error {
	normalized, ok := extract.NormalizeTime(hhmm)
	if !ok {
		return ruleErr("Uro prosimo v obliki HH:MM (npr. 14:00).")
	}
	hour, _, _ := splitTime(normalized)
	if hour < e.catalog.WellnessOpenHour || hour >= e.catalog.WellnessCloseHour {
		return ruleErr("Wellness je na voljo med %d:00 in %d:00.", e.catalog.WellnessOpenHour, e.catalog.WellnessCloseHour-1)
	}
	if hours > 0 && hour+hours > e.catalog.WellnessCloseHour {
		return ruleErr("Z izbranim trajanjem (%dh) bi wellness presegel obratovalni čas. Prosimo izberite zgodnejšo uro.", hours)
	}
	return nil
}

func (e *Engine) validDuration(hours int) bool {
	for _, d := range e.catalog.WellnessDurations {
		if d == hours {
			return true
		}
	}
	return false
}

// durationList renders the allowed durations as "2, 3 ali 4".
func (e *Engine) durationList() string {
	parts := make([]string, len(e.catalog.WellnessDurations))
	for i, d := range e.catalog.WellnessDurations {
		parts[i] = strconv.Itoa(d)
	}
	if len(parts) < 2 {
		return strings.Join(parts, "")
	}
	return strings.Join(parts[:len(parts)-1], ", ") + " ali " + parts[len(parts)-1]
}

// WellnessPrice is the price per person per two hours, prorated by the hour.
func (e *Engine) WellnessPrice(hours, people int) float64 {
	total := float64(people) * e.catalog.WellnessPricePer2h / 2 * float64(hours)
	return math.Round(total*100) / 100
}

func (e *Engine) ValidateMeal(mealType, date string, people int) error {
	day, err := e.parseFuture(date, "15.6.2027")
	if err != nil {
		return err
	}
	if !e.catalog.IsMealDay(day.Weekday()) {
		return ruleErr("Kulinarične storitve so predvsem ob petkih, sobotah in nedeljah. Za druge dni nas prosimo kontaktirajte na %s.",
			e.catalog.ContactPhone)
	}
	if mealType != "" {
		if _, ok := e.catalog.MealTypeByKey(mealType); !ok {
			keys := make([]string, len(e.catalog.MealTypes))
			for i, m := range e.catalog.MealTypes {
				keys[i] = m.Key
			}
			return ruleErr("Neveljavna vrsta obroka. Možnosti: %s", strings.Join(keys, ", "))
		}
	}
	if people > e.catalog.MealMaxPeople {
		return ruleErr("Za degustacijska kosila/večerje sprejemamo do %d oseb. Za večje skupine nas prosimo kontaktirajte.",
			e.catalog.MealMaxPeople)
	}
	if people < 0 {
		return ruleErr("Prosimo vnesite število oseb (min. 1).")
	}
	return nil
}

func (e *Engine) ValidatePackage(key, date string, people int) error {
	if _, ok := e.catalog.PackageByKey(key); !ok {
		keys := make([]string, len(e.catalog.Packages))
		for i, p := range e.catalog.Packages {
			keys[i] = p.Key
		}
		return ruleErr("Neveljaven paket. Možnosti: %s", strings.Join(keys, ", "))
	}
	if date != "" {
		if _, err := e.parseFuture(date, "15.6.2027"); err != nil {
			return err
		}
	}
	if err := e.validateParty(people, e.catalog.PackageMaxPeople,
		"Za skupine večje od %d oseb nas prosimo kontaktirajte na %s."); err != nil {
		return err
	}
	if key == e.catalog.FamilyPackageKey && people == 1 {
		return ruleErr("Družinski paket je namenjen družinam (min. 2 osebi).")
	}
	return nil
}

// PackageTotal returns the package price for the whole party.
func (e *Engine) PackageTotal(key string, people int) float64 {
	p, ok := e.catalog.PackageByKey(key)
	if !ok {
		return 0
	}
	return p.Price * float64(people)
}

// validateParty treats zero as "not collected yet".
func (e *Engine) validateParty(people, limit int, tooManyFormat string) error {
	if people < 0 {
		return ruleErr("Prosimo vnesite število oseb (min. 1).")
	}
	if people > limit {
		return ruleErr(tooManyFormat, limit, e.catalog.ContactPhone)
	}
	return nil
}
