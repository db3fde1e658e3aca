package dialogue

import (
	"fmt"
	"strings"

	"github.com/Domenick1991/farmstay/internal/domain"
	"github.com/Domenick1991/farmstay/internal/service/availability"
)

const (
	resetReply  = "V redu, začniva znova. Rezervacijo sem ponastavil. Kako vam lahko pomagam?"
	cancelReply = "Rezervacijo sem preklical. Če si premislite, mi kar pišite."
)

// Prompt returns the question for the step s is waiting on. Idle sessions get "".
func (f *Flow) Prompt(s *domain.Session) string {
	if s == nil {
		return ""
	}
	cat := f.avail.Catalog()

	switch s.Step {
	case domain.StepAwaitingDate:
		switch s.Type {
		case domain.ReservationTypeRoom:
			return "Za kateri datum prihoda želite rezervirati sobo? (npr. 12.7.2027)"
		case domain.ReservationTypeTable:
			return "Za kateri datum želite rezervirati mizo? Mize sprejemamo ob sobotah in nedeljah."
		case domain.ReservationTypeWellness:
			return "Za kateri datum želite obisk wellnessa?"
		case domain.ReservationTypePackage:
			return "Kdaj bi želeli prispeti?"
		}
		return "Za kateri datum?"
	case domain.StepAwaitingNights:
		return fmt.Sprintf("Koliko nočitev načrtujete? (minimalno %d, v juliju in avgustu %d)",
			cat.MinNights, cat.HighSeasonMinNights)
	case domain.StepAwaitingPeople:
		return "Za koliko oseb?"
	case domain.StepAwaitingRoomPref:
		names := make([]string, len(cat.Rooms))
		for i, r := range cat.Rooms {
			names[i] = r.ID
		}
		return "Imate željo glede sobe? Sobe: " + strings.Join(names, ", ") + ". Lahko napišete tudi »vseeno«."
	case domain.StepAwaitingTime:
		if s.Type == domain.ReservationTypeWellness {
			return fmt.Sprintf("Ob kateri uri želite začeti? (med %d:00 in %d:00)", cat.WellnessOpenHour, cat.WellnessCloseHour-1)
		}
		if s.Type == domain.ReservationTypeTable {
			return fmt.Sprintf("Ob kateri uri bi prišli? (med %02d:00 in %02d:00)", cat.KitchenOpenHour, cat.LastArrivalHour)
		}
		return "Ob kateri uri?"
	case domain.StepAwaitingDuration:
		parts := make([]string, len(cat.WellnessDurations))
		for i, d := range cat.WellnessDurations {
			parts[i] = fmt.Sprint(d)
		}
		return "Koliko ur želite ostati? (" + strings.Join(parts, ", ") + " ure)"
	case domain.StepAwaitingMealType:
		var b strings.Builder
		b.WriteString("Katero kulinarično doživetje želite?")
		for i, m := range cat.MealTypes {
			fmt.Fprintf(&b, "\n%d) %s", i+1, m.Name)
		}
		return b.String()
	case domain.StepAwaitingPackage:
		var b strings.Builder
		b.WriteString("Kateri paket vas zanima?")
		for i, p := range cat.Packages {
			fmt.Fprintf(&b, "\n%d) %s, %s €/osebo", i+1, p.Name, formatPrice(p.Price))
		}
		return b.String()
	case domain.StepAwaitingContactName:
		return "Na katero ime naj zapišem rezervacijo?"
	case domain.StepAwaitingPhone:
		return "Prosim za vašo telefonsko številko."
	case domain.StepAwaitingEmail:
		return "Prosim še za vaš e-poštni naslov."
	case domain.StepAwaitingConfirmation:
		return f.summary(s) + "\n\nPotrdite rezervacijo? (da/ne)"
	}
	return ""
}

func (f *Flow) summary(s *domain.Session) string {
	cat := f.avail.Catalog()
	var lines []string

	switch s.Type {
	case domain.ReservationTypeRoom:
		d := s.Room
		lines = append(lines,
			"🏡 Rezervacija sobe",
			"📅 Prihod: "+d.Date,
			fmt.Sprintf("🌙 Nočitve: %d", d.Nights),
			fmt.Sprintf("👥 Osebe: %d", d.People),
		)
		if room, ok := cat.RoomByID(d.RoomPref); ok {
			lines = append(lines, "🛏 Soba: "+room.Name)
		}
	case domain.ReservationTypeTable:
		d := s.Table
		lines = append(lines,
			"🍽 Rezervacija mize",
			"📅 Datum: "+d.Date,
			"🕐 Ura: "+d.Time,
			fmt.Sprintf("👥 Osebe: %d", d.People),
		)
		if d.Location != "" {
			lines = append(lines, "📍 Prostor: "+d.Location)
		}
	case domain.ReservationTypeWellness:
		d := s.Wellness
		lines = append(lines,
			"🧖 Wellness rezervacija",
			"📅 Datum: "+d.Date,
			"🕐 Ura: "+d.Time,
			fmt.Sprintf("⏱ Trajanje: %d ure", d.Duration),
			fmt.Sprintf("👥 Osebe: %d", d.People),
			fmt.Sprintf("💰 Cena: %s € (%s €/2h/osebo)",
				formatPrice(f.avail.WellnessPrice(d.Duration, d.People)), formatPrice(cat.WellnessPricePer2h)),
		)
	case domain.ReservationTypeMeal:
		d := s.Meal
		name := d.MealType
		if m, ok := cat.MealTypeByKey(d.MealType); ok {
			name = m.Name
		}
		lines = append(lines,
			"🍽 Kulinarična rezervacija: "+name,
			"📅 Datum: "+d.Date,
			"🕐 Ura: "+d.Time,
			fmt.Sprintf("👥 Osebe: %d", d.People),
			"Cena bo določena ob potrditvi rezervacije.",
		)
	case domain.ReservationTypePackage:
		d := s.Package
		if p, ok := cat.PackageByKey(d.Package); ok {
			lines = append(lines,
				"🎁 Paket: "+p.Name,
				"📅 Prihod: "+d.Date,
				fmt.Sprintf("🌙 Noči: %d", p.Nights),
				fmt.Sprintf("👥 Osebe: %d", d.People),
				fmt.Sprintf("💰 Cena: %s € (%s €/osebo)",
					formatPrice(f.avail.PackageTotal(d.Package, d.People)), formatPrice(p.Price)),
			)
		}
	}

	lines = append(lines,
		"👤 "+s.Contact.Name,
		"📞 "+s.Contact.Phone,
		"📧 "+s.Contact.Email,
	)
	if s.Note != "" {
		lines = append(lines, "📝 "+s.Note)
	}
	return strings.Join(lines, "\n")
}

func unavailableNote(res availability.Result) string {
	switch {
	case res.Alternative != "":
		return "Žal za izbrani termin nimamo dovolj prostih sob. Najbližji prost prihod je " + res.Alternative +
			". Napišite nov datum."
	case len(res.Suggestions) > 0:
		return "Žal je ob izbrani uri zasedeno. Prosti termini:\n- " + strings.Join(res.Suggestions, "\n- ") +
			"\nNapišite drugo uro ali nov datum."
	}
	return "Žal za izbrani termin ni prostih kapacitet. Napišite nov datum."
}

func submittedReply(name string, r *domain.Reservation) string {
	status := "Rezervacija je potrjena."
	if r.Status != domain.ReservationStatusConfirmed {
		status = "Povpraševanje smo prejeli, potrditev boste prejeli po e-pošti."
	}
	greeting := "Hvala!"
	if name != "" {
		greeting = "Hvala, " + name + "!"
	}
	return fmt.Sprintf("%s Rezervacija št. %d je zabeležena. %s", greeting, r.ID, status)
}

func formatPrice(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}
