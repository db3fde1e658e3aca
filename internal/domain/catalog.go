package domain

import "time"

type Room struct {
	ID       string
	Name     string
	Capacity int
	Aliases  []string
}

type DiningArea struct {
	Name     string
	Capacity int
}

type Package struct {
	Key    string
	Name   string
	Price  float64 // per person
	Nights int
}

type MealType struct {
	Key  string
	Name string
}

// Catalog is the static resource configuration of the farm-stay. It is built once at
// startup and never mutated afterwards.
type Catalog struct {
	Rooms         []Room
	SuiteCapacity int

	MinNights           int
	HighSeasonMonths    []time.Month
	HighSeasonMinNights int
	MaxNights           int
	RoomSearchDays      int

	DiningAreas          []DiningArea
	TableDays            []time.Weekday
	KitchenOpenHour      int
	KitchenCloseHour     int
	LastArrivalHour      int
	TableSuggestionLimit int
	TableLookaheadDays   int

	WellnessOpenHour   int
	WellnessCloseHour  int
	WellnessDurations  []int
	WellnessMaxPeople  int
	WellnessPricePer2h float64

	MealDays      []time.Weekday
	MealMaxPeople int
	MealTypes     []MealType

	Packages         []Package
	PackageMaxPeople int
	FamilyPackageKey string
	ContactPhone     string
}

func DefaultCatalog() *Catalog {
	return &Catalog{
		Rooms: []Room{
			{ID: "MARIJA", Name: "Soba MARIJA", Capacity: 2, Aliases: []string{"marija"}},
			{ID: "TINKARA", Name: "Soba TINKARA", Capacity: 2, Aliases: []string{"tinkara"}},
			{ID: "CILKA", Name: "Soba CILKA", Capacity: 2, Aliases: []string{"cilka"}},
			{ID: "HANA", Name: "Soba HANA", Capacity: 2, Aliases: []string{"hana"}},
			{ID: "MANCA", Name: "Soba MANCA (prilagojena invalidom)", Capacity: 2, Aliases: []string{"manca"}},
			{ID: "URSKA_SUITE", Name: "Družinska suita URŠKA", Capacity: 4, Aliases: []string{"urška", "urska"}},
			{ID: "ANA_SUITE", Name: "Družinska suita ANA", Capacity: 4, Aliases: []string{"ana"}},
		},
		SuiteCapacity: 4,

		MinNights:           2,
		HighSeasonMonths:    []time.Month{time.July, time.August},
		HighSeasonMinNights: 5,
		MaxNights:           30,
		RoomSearchDays:      30,

		DiningAreas: []DiningArea{
			{Name: "Jedilnica Pri peči", Capacity: 15},
			{Name: "Jedilnica Pri vrtu", Capacity: 35},
		},
		TableDays:            []time.Weekday{time.Saturday, time.Sunday},
		KitchenOpenHour:      12,
		KitchenCloseHour:     20,
		LastArrivalHour:      15,
		TableSuggestionLimit: 3,
		TableLookaheadDays:   14,

		WellnessOpenHour:   10,
		WellnessCloseHour:  20,
		WellnessDurations:  []int{2, 3, 4},
		WellnessMaxPeople:  10,
		WellnessPricePer2h: 30,

		MealDays:      []time.Weekday{time.Friday, time.Saturday, time.Sunday},
		MealMaxPeople: 20,
		MealTypes: []MealType{
			{Key: "degustacijsko_kosilo", Name: "Degustacijsko kosilo"},
			{Key: "degustacijska_vecerja", Name: "Degustacijska večerja"},
			{Key: "poslovni_zajtrk", Name: "Poslovni zajtrk"},
			{Key: "poslovno_kosilo", Name: "Poslovno kosilo"},
		},

		Packages: []Package{
			{Key: "eko_vikend", Name: "Eko vikend razvajanja", Price: 199, Nights: 2},
			{Key: "dusa_telo", Name: "Vikend za dušo in telo", Price: 225, Nights: 2},
			{Key: "urskin", Name: "Urškin vikend", Price: 215, Nights: 2},
			{Key: "enodnevni", Name: "Enodnevni pobeg", Price: 150, Nights: 1},
			{Key: "druzinski", Name: "Družinski paket (7 noči)", Price: 734, Nights: 7},
		},
		PackageMaxPeople: 10,
		FamilyPackageKey: "druzinski",
		ContactPhone:     "031 249 812",
	}
}

// MinNightsFor returns the minimum stay for an arrival on the given date.
func (c *Catalog) MinNightsFor(arrival time.Time) int {
	for _, m := range c.HighSeasonMonths {
		if arrival.Month() == m {
			return c.HighSeasonMinNights
		}
	}
	return c.MinNights
}

func (c *Catalog) IsHighSeason(arrival time.Time) bool {
	return c.MinNightsFor(arrival) == c.HighSeasonMinNights && c.HighSeasonMinNights != c.MinNights
}

// RoomsNeeded returns how many rooms a party occupies, sized by suite capacity.
func (c *Catalog) RoomsNeeded(people int) int {
	if people <= 0 {
		return 1
	}
	return (people + c.SuiteCapacity - 1) / c.SuiteCapacity
}

func (c *Catalog) TotalTableCapacity() int {
	total := 0
	for _, a := range c.DiningAreas {
		total += a.Capacity
	}
	return total
}

func (c *Catalog) IsTableDay(day time.Weekday) bool {
	return containsWeekday(c.TableDays, day)
}

func (c *Catalog) IsMealDay(day time.Weekday) bool {
	return containsWeekday(c.MealDays, day)
}

// TableSlots lists the half-hour arrival slots from kitchen opening to last arrival.
func (c *Catalog) TableSlots() []string {
	var slots []string
	for h := c.KitchenOpenHour; h <= c.LastArrivalHour; h++ {
		slots = append(slots, formatHM(h, 0))
		if h != c.LastArrivalHour {
			slots = append(slots, formatHM(h, 30))
		}
	}
	return slots
}

func (c *Catalog) RoomByID(id string) (Room, bool) {
	for _, r := range c.Rooms {
		if r.ID == id {
			return r, true
		}
	}
	return Room{}, false
}

func (c *Catalog) PackageByKey(key string) (Package, bool) {
	for _, p := range c.Packages {
		if p.Key == key {
			return p, true
		}
	}
	return Package{}, false
}

func (c *Catalog) MealTypeByKey(key string) (MealType, bool) {
	for _, m := range c.MealTypes {
		if m.Key == key {
			return m, true
		}
	}
	return MealType{}, false
}

func containsWeekday(days []time.Weekday, day time.Weekday) bool {
	for _, d := range days {
		if d == day {
			return true
		}
	}
	return false
}

func formatHM(h, m int) string {
	return time.Date(0, 1, 1, h, m, 0, 0, time.UTC).Format("15:04")
}
