package dialogue

import (
	"errors"
	"strings"
	"unicode"

	"github.com/Domenick1991/farmstay/internal/domain"
	"github.com/Domenick1991/farmstay/internal/extract"
	"github.com/Domenick1991/farmstay/internal/service/availability"
)

const maxNameLength = 80

var nightWords = []string{"noč", "noc", "nočit", "nocit", "night", "nacht", "nächte"}

var anyRoomWords = []string{"vseeno", "katerakoli", "katerokoli", "kakršnakoli", "kakrsnakoli", "karkoli", "any", "egal"}

// prefill mines the opening message of a booking for fields it already carries.
// Values that break a rule are dropped and the rule message is returned as a note.
func (f *Flow) prefill(msg string, s *domain.Session) []string {
	date, hasDate := f.dateIn(msg)
	hhmm, hasTime := extract.Time(msg)
	people, hasPeople := extract.People(msg)

	var notes []string
	keep := func(err error) bool {
		if err == nil {
			return true
		}
		notes = append(notes, guestMessage(err))
		return false
	}

	switch s.Type {
	case domain.ReservationTypeRoom:
		d := s.Room
		nights, hasNights := extract.Nights(msg, false)
		if hasDate && keep(f.avail.ValidateDate(date)) {
			d.Date = date
		}
		if hasNights {
			if d.Date == "" || keep(f.avail.ValidateRoomRules(d.Date, nights)) {
				d.Nights = nights
			}
		}
		// "za 3 noči" must not be read as three guests
		if hasPeople && !hasNights && !containsAny(strings.ToLower(msg), nightWords) {
			d.People = people
		}
		if id := f.roomIn(msg); id != "" {
			d.RoomPref = id
			d.PrefAsked = true
		}
	case domain.ReservationTypeTable:
		d := s.Table
		if hasDate && keep(f.avail.ValidateTableRules(date, "")) {
			d.Date = date
		}
		if hasTime && (d.Date == "" || keep(f.avail.ValidateTableRules(d.Date, hhmm))) {
			d.Time = hhmm
		}
		if hasPeople {
			d.People = people
		}
	case domain.ReservationTypeWellness:
		d := s.Wellness
		if hasDate && keep(f.avail.ValidateWellness(date, "", 0, 0)) {
			d.Date = date
		}
		if hasTime && (d.Date == "" || keep(f.avail.ValidateWellness(d.Date, hhmm, 0, 0))) {
			d.Time = hhmm
		}
		if hasPeople && f.avail.ValidateWellness(d.Date, "", 0, people) == nil {
			d.People = people
		}
	case domain.ReservationTypeMeal:
		d := s.Meal
		d.MealType = f.mealTypeIn(msg, false)
		if hasDate && keep(f.avail.ValidateMeal(d.MealType, date, 0)) {
			d.Date = date
		}
		if hasTime {
			d.Time = hhmm
		}
		if hasPeople && people <= f.avail.Catalog().MealMaxPeople {
			d.People = people
		}
	case domain.ReservationTypePackage:
		d := s.Package
		d.Package = f.packageIn(msg, false)
		if hasDate && keep(f.avail.ValidateDate(date)) {
			d.Date = date
		}
		if hasPeople && !containsAny(strings.ToLower(msg), nightWords) && people <= f.avail.Catalog().PackageMaxPeople {
			d.People = people
		}
	}
	return notes
}

// apply reads the answer to the current step. It returns a note when the answer was
// not understood or broke a rule; the step then stays where it is.
func (f *Flow) apply(msg string, s *domain.Session) string {
	text := strings.TrimSpace(msg)

	switch s.Step {
	case domain.StepAwaitingDate:
		return f.applyDate(text, s)
	case domain.StepAwaitingNights:
		return f.applyNights(text, s)
	case domain.StepAwaitingPeople:
		return f.applyPeople(text, s)
	case domain.StepAwaitingRoomPref:
		s.Room.RoomPref = f.roomIn(text)
		s.Room.PrefAsked = true
		if s.Room.RoomPref == "" && !containsAny(strings.ToLower(text), anyRoomWords) {
			s.Note = appendNote(s.Note, "Želja glede sobe: "+text)
		}
	case domain.StepAwaitingTime:
		return f.applyTime(text, s)
	case domain.StepAwaitingDuration:
		return f.applyDuration(text, s)
	case domain.StepAwaitingMealType:
		if key := f.mealTypeIn(text, true); key != "" {
			s.Meal.MealType = key
			return ""
		}
		return "Te vrste obroka nisem prepoznal."
	case domain.StepAwaitingPackage:
		if key := f.packageIn(text, true); key != "" {
			s.Package.Package = key
			return ""
		}
		return "Tega paketa nisem prepoznal."
	case domain.StepAwaitingContactName:
		if !validName(text) {
			return "Prosim napišite ime in priimek."
		}
		s.Contact.Name = text
	case domain.StepAwaitingPhone:
		phone, ok := extract.Phone(text)
		if !ok {
			return "Telefonska številka mora imeti vsaj 7 števk."
		}
		s.Contact.Phone = phone
	case domain.StepAwaitingEmail:
		email, ok := extract.Email(text)
		if !ok {
			return "Ta e-poštni naslov ni veljaven."
		}
		s.Contact.Email = email
	}
	return ""
}

func (f *Flow) applyDate(text string, s *domain.Session) string {
	date, ok := f.dateIn(text)
	if !ok {
		return "Datuma nisem razumel."
	}

	var err error
	switch s.Type {
	case domain.ReservationTypeRoom:
		if err = f.avail.ValidateDate(date); err == nil && s.Room.Nights > 0 {
			err = f.avail.ValidateRoomRules(date, s.Room.Nights)
		}
		if err == nil {
			s.Room.Date = date
			if nights, ok := extract.Nights(text, false); ok && s.Room.Nights == 0 {
				if f.avail.ValidateRoomRules(date, nights) == nil {
					s.Room.Nights = nights
				}
			}
		}
	case domain.ReservationTypeTable:
		if err = f.avail.ValidateTableRules(date, ""); err == nil {
			s.Table.Date = date
			s.Table.Location = ""
			if hhmm, ok := extract.Time(text); ok && f.avail.ValidateTableRules(date, hhmm) == nil {
				s.Table.Time = hhmm
			}
		}
	case domain.ReservationTypeWellness:
		if err = f.avail.ValidateWellness(date, "", 0, 0); err == nil {
			s.Wellness.Date = date
		}
	case domain.ReservationTypeMeal:
		if err = f.avail.ValidateMeal(s.Meal.MealType, date, 0); err == nil {
			s.Meal.Date = date
		}
	case domain.ReservationTypePackage:
		if err = f.avail.ValidateDate(date); err == nil {
			s.Package.Date = date
		}
	}
	return guestMessage(err)
}

func (f *Flow) applyNights(text string, s *domain.Session) string {
	nights, ok := extract.Nights(text, true)
	if !ok {
		return "Števila nočitev nisem razumel."
	}
	if err := f.avail.ValidateRoomRules(s.Room.Date, nights); err != nil {
		return guestMessage(err)
	}
	s.Room.Nights = nights
	return ""
}

func (f *Flow) applyPeople(text string, s *domain.Session) string {
	people, ok := extract.People(text)
	if !ok {
		return "Števila oseb nisem razumel."
	}

	cat := f.avail.Catalog()
	var err error
	switch s.Type {
	case domain.ReservationTypeRoom:
		if cat.RoomsNeeded(people) > len(cat.Rooms) {
			return "Za tako veliko skupino nas prosimo pokličite na " + cat.ContactPhone + "."
		}
		s.Room.People = people
	case domain.ReservationTypeTable:
		if people > cat.TotalTableCapacity() {
			return "Za tako veliko skupino nas prosimo pokličite na " + cat.ContactPhone + "."
		}
		s.Table.People = people
	case domain.ReservationTypeWellness:
		d := s.Wellness
		if err = f.avail.ValidateWellness(d.Date, d.Time, d.Duration, people); err == nil {
			d.People = people
		}
	case domain.ReservationTypeMeal:
		if err = f.avail.ValidateMeal(s.Meal.MealType, s.Meal.Date, people); err == nil {
			s.Meal.People = people
		}
	case domain.ReservationTypePackage:
		if err = f.avail.ValidatePackage(s.Package.Package, s.Package.Date, people); err == nil {
			s.Package.People = people
		}
	}
	return guestMessage(err)
}

func (f *Flow) applyTime(text string, s *domain.Session) string {
	hhmm, ok := extract.NormalizeTime(text)
	if !ok {
		return "Ure nisem razumel. Prosim v obliki HH:MM (npr. 12:30)."
	}

	var err error
	switch s.Type {
	case domain.ReservationTypeTable:
		if err = f.avail.ValidateTableRules(s.Table.Date, hhmm); err == nil {
			s.Table.Time = hhmm
			s.Table.Location = ""
		}
	case domain.ReservationTypeWellness:
		if err = f.avail.ValidateWellness(s.Wellness.Date, hhmm, 0, 0); err == nil {
			s.Wellness.Time = hhmm
		}
	case domain.ReservationTypeMeal:
		s.Meal.Time = hhmm
	}
	return guestMessage(err)
}

func (f *Flow) applyDuration(text string, s *domain.Session) string {
	hours, ok := extract.People(text)
	if !ok {
		return "Trajanja nisem razumel."
	}
	d := s.Wellness
	if err := f.avail.ValidateWellness(d.Date, d.Time, hours, 0); err != nil {
		return guestMessage(err)
	}
	d.Duration = hours
	return ""
}

func (f *Flow) dateIn(text string) (string, bool) {
	return extract.Date(text, f.now())
}

// roomIn returns the catalog id of a room named by one of its aliases.
func (f *Flow) roomIn(text string) string {
	toks := extract.Tokens(text)
	for _, room := range f.avail.Catalog().Rooms {
		for _, a := range room.Aliases {
			for _, tok := range toks {
				if tok == a {
					return room.ID
				}
			}
		}
	}
	return ""
}

// mealTypeIn matches a meal type by keyword, or by its position in the offered list
// when byIndex is set.
func (f *Flow) mealTypeIn(text string, byIndex bool) string {
	t := strings.ToLower(text)
	cat := f.avail.Catalog()
	if byIndex {
		if key := pickByIndex(t, len(cat.MealTypes)); key >= 0 {
			return cat.MealTypes[key].Key
		}
	}

	business := strings.Contains(t, "poslovn")
	switch {
	case strings.Contains(t, "zajtrk"):
		return "poslovni_zajtrk"
	case business && strings.Contains(t, "kosil"):
		return "poslovno_kosilo"
	case strings.Contains(t, "večerj") || strings.Contains(t, "vecerj"):
		return "degustacijska_vecerja"
	case strings.Contains(t, "degust") || strings.Contains(t, "kosil"):
		return "degustacijsko_kosilo"
	}
	return ""
}

func (f *Flow) packageIn(text string, byIndex bool) string {
	t := strings.ToLower(text)
	cat := f.avail.Catalog()
	if byIndex {
		if i := pickByIndex(t, len(cat.Packages)); i >= 0 {
			return cat.Packages[i].Key
		}
	}

	switch {
	case strings.Contains(t, "družin") || strings.Contains(t, "druzin"):
		return "druzinski"
	case strings.Contains(t, "enodnev") || strings.Contains(t, "pobeg"):
		return "enodnevni"
	case strings.Contains(t, "dušo") || strings.Contains(t, "duso") || strings.Contains(t, "telo"):
		return "dusa_telo"
	case strings.Contains(t, "urškin") || strings.Contains(t, "urskin"):
		return "urskin"
	case strings.Contains(t, "eko"):
		return "eko_vikend"
	}
	return ""
}

// pickByIndex reads a bare 1-based list position.
func pickByIndex(t string, n int) int {
	t = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(t), "."))
	if len(t) != 1 || t[0] < '1' || int(t[0]-'0') > n {
		return -1
	}
	return int(t[0] - '1')
}

func validName(s string) bool {
	if len([]rune(s)) < 2 || len([]rune(s)) > maxNameLength {
		return false
	}
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

func ensureDraft(s *domain.Session) {
	switch s.Type {
	case domain.ReservationTypeRoom:
		if s.Room == nil {
			s.Room = &domain.RoomDraft{}
		}
	case domain.ReservationTypeTable:
		if s.Table == nil {
			s.Table = &domain.TableDraft{}
		}
	case domain.ReservationTypeWellness:
		if s.Wellness == nil {
			s.Wellness = &domain.WellnessDraft{}
		}
	case domain.ReservationTypeMeal:
		if s.Meal == nil {
			s.Meal = &domain.MealDraft{}
		}
	case domain.ReservationTypePackage:
		if s.Package == nil {
			s.Package = &domain.PackageDraft{}
		}
	}
}

func confirmation(msg string) (bool, bool) {
	return extract.Confirmation(msg)
}

// guestMessage returns the guest-facing text of a rule violation.
func guestMessage(err error) string {
	if err == nil {
		return ""
	}
	var re *availability.RuleError
	if errors.As(err, &re) {
		return re.Msg
	}
	return err.Error()
}

func appendNote(note, add string) string {
	if note == "" {
		return add
	}
	return note + "; " + add
}

func containsAny(t string, subs []string) bool {
	for _, s := range subs {
		if strings.Contains(t, s) {
			return true
		}
	}
	return false
}
