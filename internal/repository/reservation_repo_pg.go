package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Domenick1991/farmstay/internal/domain"
)

var ErrNotFound = errors.New("reservation not found")

type ReservationRepository interface {
	Create(ctx context.Context, r *domain.Reservation) error
	Get(ctx context.Context, id int64) (*domain.Reservation, error)
	List(ctx context.Context, filter domain.ReservationFilter) ([]domain.Reservation, error)
	Update(ctx context.Context, id int64, upd domain.ReservationUpdate) (*domain.Reservation, error)
	UpdateStatus(ctx context.Context, id int64, status domain.ReservationStatus) (*domain.Reservation, error)
}

type PGReservationRepository struct {
	db *pgxpool.Pool
}

func NewReservationRepository(db *pgxpool.Pool) *PGReservationRepository {
	return &PGReservationRepository{db: db}
}

const reservationColumns = `id, date, COALESCE(nights, 0), COALESCE(rooms, 0), people, reservation_type,
	COALESCE(time, ''), COALESCE(location, ''), COALESCE(name, ''), COALESCE(phone, ''), COALESCE(email, ''),
	COALESCE(note, ''), status, source, COALESCE(wellness_hours, 0), COALESCE(meal_type, ''),
	COALESCE(package_type, ''), COALESCE(package_price, 0), COALESCE(admin_notes, ''), confirmed_at,
	created_at, updated_at`

func (r *PGReservationRepository) Create(ctx context.Context, res *domain.Reservation) error {
	err := r.db.QueryRow(ctx, `INSERT INTO reservations (date, nights, rooms, people, reservation_type, time, location,
		name, phone, email, note, status, source, wellness_hours, meal_type, package_type, package_price, confirmed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17,
			CASE WHEN $12 = 'confirmed' THEN now() END)
		RETURNING id, confirmed_at, created_at, updated_at`,
		res.Date, res.Nights, res.Rooms, res.People, res.Type, res.Time, res.Location,
		res.Name, res.Phone, res.Email, res.Note, res.Status, res.Source,
		res.WellnessHours, res.MealType, res.PackageType, res.PackagePrice,
	).Scan(&res.ID, &res.ConfirmedAt, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert reservation: %w", err)
	}
	return nil
}

func (r *PGReservationRepository) Get(ctx context.Context, id int64) (*domain.Reservation, error) {
	row := r.db.QueryRow(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id=$1`, id)
	return scanReservation(row)
}

func (r *PGReservationRepository) List(ctx context.Context, filter domain.ReservationFilter) ([]domain.Reservation, error) {
	where, args := listConditions(filter)
	query := `SELECT ` + reservationColumns + ` FROM reservations` + where + ` ORDER BY created_at DESC, id DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	defer rows.Close()

	var list []domain.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *res)
	}
	return list, rows.Err()
}

func (r *PGReservationRepository) Update(ctx context.Context, id int64, upd domain.ReservationUpdate) (*domain.Reservation, error) {
	set, args := updateAssignments(upd)
	if len(set) == 0 {
		return r.Get(ctx, id)
	}
	args = append(args, id)
	query := `UPDATE reservations SET ` + strings.Join(set, ", ") +
		fmt.Sprintf(` WHERE id=$%d RETURNING `, len(args)) + reservationColumns
	return scanReservation(r.db.QueryRow(ctx, query, args...))
}

func (r *PGReservationRepository) UpdateStatus(ctx context.Context, id int64, status domain.ReservationStatus) (*domain.Reservation, error) {
	return r.Update(ctx, id, domain.ReservationUpdate{Status: &status})
}

func scanReservation(row pgx.Row) (*domain.Reservation, error) {
	var res domain.Reservation
	err := row.Scan(&res.ID, &res.Date, &res.Nights, &res.Rooms, &res.People, &res.Type,
		&res.Time, &res.Location, &res.Name, &res.Phone, &res.Email,
		&res.Note, &res.Status, &res.Source, &res.WellnessHours, &res.MealType,
		&res.PackageType, &res.PackagePrice, &res.AdminNotes, &res.ConfirmedAt,
		&res.CreatedAt, &res.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan reservation: %w", err)
	}
	return &res, nil
}

func listConditions(filter domain.ReservationFilter) (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.Status != "" {
		add("status=$%d", string(filter.Status))
	}
	if filter.Type != "" {
		add("reservation_type=$%d", string(filter.Type))
	}
	if filter.Source != "" {
		add("source=$%d", filter.Source)
	}
	if len(filter.ExcludeStatus) > 0 {
		excluded := make([]string, len(filter.ExcludeStatus))
		for i, s := range filter.ExcludeStatus {
			excluded[i] = string(s)
		}
		add("status <> ALL($%d)", excluded)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func updateAssignments(upd domain.ReservationUpdate) ([]string, []any) {
	var set []string
	var args []any
	add := func(col string, v any) {
		args = append(args, v)
		set = append(set, fmt.Sprintf("%s=$%d", col, len(args)))
	}

	if upd.Status != nil {
		add("status", string(*upd.Status))
		if *upd.Status == domain.ReservationStatusConfirmed {
			set = append(set, "confirmed_at=now()")
		}
	}
	if upd.Date != nil {
		add("date", *upd.Date)
	}
	if upd.Nights != nil {
		add("nights", *upd.Nights)
	}
	if upd.Rooms != nil {
		add("rooms", *upd.Rooms)
	}
	if upd.People != nil {
		add("people", *upd.People)
	}
	if upd.Time != nil {
		add("time", *upd.Time)
	}
	if upd.Location != nil {
		add("location", *upd.Location)
	}
	if upd.Name != nil {
		add("name", *upd.Name)
	}
	if upd.Phone != nil {
		add("phone", *upd.Phone)
	}
	if upd.Email != nil {
		add("email", *upd.Email)
	}
	if upd.Note != nil {
		add("note", *upd.Note)
	}
	if upd.AdminNotes != nil {
		add("admin_notes", *upd.AdminNotes)
	}

	if len(set) > 0 {
		set = append(set, "updated_at=now()")
	}
	return set, args
}

var _ ReservationRepository = (*PGReservationRepository)(nil)
