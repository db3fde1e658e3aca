package availability

import (
	"context"
	"strings"
	"time"

	"github.com/Domenick1991/farmstay/internal/domain"
	"github.com/Domenick1991/farmstay/internal/extract"
)

type RoomResult struct {
	Available   bool
	Alternative string // DD.MM.YYYY, empty when nothing fits within the search horizon
}

// ValidateRoomRules checks the arrival date and the stay length.
func (e *Engine) ValidateRoomRules(arrival string, nights int) error {
	day, err := e.parseFuture(arrival, "12.7.2027")
	if err != nil {
		return err
	}
	if nights < 1 {
		return ruleErr("Prosimo izberite vsaj eno nočitev.")
	}
	if nights > e.catalog.MaxNights {
		return ruleErr("Maksimalno število nočitev v eni rezervaciji je %d. Prosimo izberite manj dni.", e.catalog.MaxNights)
	}
	if minNights := e.catalog.MinNightsFor(day); nights < minNights {
		if e.catalog.IsHighSeason(day) {
			return ruleErr("V juliju in avgustu je minimalno bivanje %d noči. Prosimo izberite vsaj %d nočitev.", minNights, minNights)
		}
		return ruleErr("Minimalno bivanje je %d noči. Prosimo izberite vsaj %d nočitvi.", minNights, minNights)
	}
	return nil
}

// CheckRoom reports whether enough rooms are free on every night of the stay. On
// conflict it searches forward for the first arrival that satisfies both capacity and
// the minimum stay of the candidate month.
func (e *Engine) CheckRoom(ctx context.Context, arrival string, nights, people int) (RoomResult, error) {
	day, ok := extract.ParseDate(arrival)
	if !ok || people <= 0 || nights <= 0 {
		return RoomResult{}, nil
	}
	needed := e.catalog.RoomsNeeded(people)
	if needed > len(e.catalog.Rooms) {
		return RoomResult{}, nil
	}

	reservations, err := e.holding(ctx, domain.ReservationTypeRoom)
	if err != nil {
		return RoomResult{}, err
	}
	occupancy := e.roomOccupancy(reservations)

	if e.fits(occupancy, day, nights, needed) {
		return RoomResult{Available: true}, nil
	}

	for delta := 1; delta <= e.catalog.RoomSearchDays; delta++ {
		candidate := day.AddDate(0, 0, delta)
		if nights < e.catalog.MinNightsFor(candidate) {
			continue
		}
		if e.fits(occupancy, candidate, nights, needed) {
			return RoomResult{Alternative: extract.FormatDate(candidate)}, nil
		}
	}
	return RoomResult{}, nil
}

func (e *Engine) fits(occupancy map[string]int, arrival time.Time, nights, needed int) bool {
	total := len(e.catalog.Rooms)
	for i := 0; i < nights; i++ {
		if occupancy[extract.FormatDate(arrival.AddDate(0, 0, i))]+needed > total {
			return false
		}
	}
	return true
}

// roomOccupancy counts committed rooms per night.
func (e *Engine) roomOccupancy(reservations []domain.Reservation) map[string]int {
	occupancy := make(map[string]int)
	for _, r := range reservations {
		arrival, ok := extract.ParseDate(r.Date)
		if !ok || r.Nights <= 0 || r.Nights > e.catalog.MaxNights {
			continue
		}
		rooms := r.Rooms
		if rooms <= 0 {
			rooms = e.catalog.RoomsNeeded(r.People)
		}
		for i := 0; i < r.Nights; i++ {
			occupancy[extract.FormatDate(arrival.AddDate(0, 0, i))] += rooms
		}
	}
	return occupancy
}

// AvailableRooms lists the rooms free for the whole stay. Reservations naming a room in
// their location take that room first, the rest fill the first free rooms in catalog order.
func (e *Engine) AvailableRooms(ctx context.Context, arrival string, nights int) ([]domain.Room, error) {
	day, ok := extract.ParseDate(arrival)
	if !ok || nights <= 0 {
		return nil, nil
	}
	reservations, err := e.holding(ctx, domain.ReservationTypeRoom)
	if err != nil {
		return nil, err
	}
	calendar := e.roomCalendar(reservations)

	stay := nightsOf(day, nights)
	var free []domain.Room
	for _, room := range e.catalog.Rooms {
		if isFree(calendar[room.ID], stay) {
			free = append(free, room)
		}
	}
	return free, nil
}

func (e *Engine) roomCalendar(reservations []domain.Reservation) map[string]map[string]bool {
	calendar := make(map[string]map[string]bool, len(e.catalog.Rooms))
	for _, room := range e.catalog.Rooms {
		calendar[room.ID] = make(map[string]bool)
	}

	for _, r := range reservations {
		arrival, ok := extract.ParseDate(r.Date)
		if !ok || r.Nights <= 0 || r.Nights > e.catalog.MaxNights {
			continue
		}
		stay := nightsOf(arrival, r.Nights)
		needed := r.Rooms
		if needed <= 0 {
			needed = e.catalog.RoomsNeeded(r.People)
		}

		filled := 0
		for _, pass := range [][]domain.Room{e.roomsNamedIn(r.Location), e.catalog.Rooms} {
			for _, room := range pass {
				if filled >= needed {
					break
				}
				if isFree(calendar[room.ID], stay) {
					for _, d := range stay {
						calendar[room.ID][d] = true
					}
					filled++
				}
			}
		}
	}
	return calendar
}

func (e *Engine) roomsNamedIn(location string) []domain.Room {
	if location == "" {
		return nil
	}
	lowered := strings.ToLower(location)
	var named []domain.Room
	for _, room := range e.catalog.Rooms {
		if strings.Contains(lowered, strings.ToLower(room.ID)) {
			named = append(named, room)
			continue
		}
		for _, a := range room.Aliases {
			if extract.HasWord(lowered, a) {
				named = append(named, room)
				break
			}
		}
	}
	return named
}

func nightsOf(arrival time.Time, nights int) []string {
	out := make([]string, nights)
	for i := range out {
		out[i] = extract.FormatDate(arrival.AddDate(0, 0, i))
	}
	return out
}

func isFree(occupied map[string]bool, stay []string) bool {
	for _, d := range stay {
		if occupied[d] {
			return false
		}
	}
	return true
}
