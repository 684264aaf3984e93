package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/hdmotors/dealer-service/internal/models"
	"github.com/hdmotors/dealer-service/internal/utils"
)

// Repository provides database operations. All numeric store fields pass
// through the tolerant parser on the way in, so upstream rows with missing or
// malformed amounts read as zero instead of failing the whole fetch.
type Repository struct {
	db *sql.DB
}

// NewRepository initializes a new repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func looseAmount(ns sql.NullString) float64 {
	if !ns.Valid {
		return 0
	}
	return utils.LooseFloat(ns.String)
}

// PaymentsBetween retrieves daily payment rows in [from, to] ordered by day.
func (r *Repository) PaymentsBetween(from, to time.Time) ([]models.DailyRecord, error) {
	query := `
		SELECT day, payments, late_fees, boa_portion
		FROM dealer.payments
		WHERE day BETWEEN $1 AND $2
		ORDER BY day`
	rows, err := r.db.Query(query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	defer rows.Close()

	var records []models.DailyRecord
	for rows.Next() {
		var rec models.DailyRecord
		var payments, lateFees, boa sql.NullString
		if err := rows.Scan(&rec.Date, &payments, &lateFees, &boa); err != nil {
			return nil, fmt.Errorf("failed to scan payment row: %w", err)
		}
		rec.Payments = looseAmount(payments)
		rec.LateFees = looseAmount(lateFees)
		rec.BOAPortion = looseAmount(boa)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payment rows: %w", err)
	}
	return records, nil
}

// AllPayments retrieves the full payment history ordered by day.
func (r *Repository) AllPayments() ([]models.DailyRecord, error) {
	return r.PaymentsBetween(time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2999, 1, 1, 0, 0, 0, 0, time.UTC))
}

// DelinquencyBetween retrieves delinquency rows in [from, to] ordered by day.
func (r *Repository) DelinquencyBetween(from, to time.Time) ([]models.DelinquencyRecord, error) {
	query := `
		SELECT day, open_accounts, overdue_accounts
		FROM dealer.delinquency
		WHERE day BETWEEN $1 AND $2
		ORDER BY day`
	rows, err := r.db.Query(query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query delinquency: %w", err)
	}
	defer rows.Close()

	var records []models.DelinquencyRecord
	for rows.Next() {
		var rec models.DelinquencyRecord
		var open, overdue sql.NullString
		if err := rows.Scan(&rec.Date, &open, &overdue); err != nil {
			return nil, fmt.Errorf("failed to scan delinquency row: %w", err)
		}
		rec.OpenAccounts = looseAmount(open)
		rec.OverdueAccounts = looseAmount(overdue)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate delinquency rows: %w", err)
	}
	return records, nil
}

// AllDelinquency retrieves the full delinquency history ordered by day.
func (r *Repository) AllDelinquency() ([]models.DelinquencyRecord, error) {
	return r.DelinquencyBetween(time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2999, 1, 1, 0, 0, 0, 0, time.UTC))
}

// DelinquencyOn retrieves one day's delinquency row, or nil when not logged.
func (r *Repository) DelinquencyOn(day time.Time) (*models.DelinquencyRecord, error) {
	records, err := r.DelinquencyBetween(day, day)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}

// UpsertPayments appends or replaces one day's payment log, keyed by date.
func (r *Repository) UpsertPayments(rec models.DailyRecord) error {
	query := `
		INSERT INTO dealer.payments (day, payments, late_fees, boa_portion, updated_at)
		VALUES ($1, $2, $3, $4, CURRENT_TIMESTAMP)
		ON CONFLICT (day) DO UPDATE
		SET payments = EXCLUDED.payments,
		    late_fees = EXCLUDED.late_fees,
		    boa_portion = EXCLUDED.boa_portion,
		    updated_at = CURRENT_TIMESTAMP`
	if _, err := r.db.Exec(query, rec.Date, rec.Payments, rec.LateFees, rec.BOAPortion); err != nil {
		return fmt.Errorf("failed to upsert payments: %w", err)
	}
	return nil
}

// UpsertDelinquency appends or replaces one day's delinquency counts.
func (r *Repository) UpsertDelinquency(rec models.DelinquencyRecord) error {
	query := `
		INSERT INTO dealer.delinquency (day, open_accounts, overdue_accounts, updated_at)
		VALUES ($1, $2, $3, CURRENT_TIMESTAMP)
		ON CONFLICT (day) DO UPDATE
		SET open_accounts = EXCLUDED.open_accounts,
		    overdue_accounts = EXCLUDED.overdue_accounts,
		    updated_at = CURRENT_TIMESTAMP`
	if _, err := r.db.Exec(query, rec.Date, rec.OpenAccounts, rec.OverdueAccounts); err != nil {
		return fmt.Errorf("failed to upsert delinquency: %w", err)
	}
	return nil
}

const vehicleColumns = `v.id, v.stock_no, v.vin, v.model_year, v.make, v.model, v.status, v.financing, v.created_at`

func scanVehicle(scan func(dest ...any) error, v *models.Vehicle) error {
	return scan(&v.ID, &v.StockNo, &v.VIN, &v.ModelYear, &v.Make, &v.Model, &v.Status, &v.Financing, &v.CreatedAt)
}

// SalesBetween retrieves sales with their vehicles in [from, to], in insert
// order. The digest relies on that order as the same-day tie-break.
func (r *Repository) SalesBetween(from, to time.Time) ([]models.Sale, error) {
	query := `
		SELECT s.id, s.vehicle_id, s.sale_date, s.price, s.sale_type, ` + vehicleColumns + `
		FROM dealer.sales s
		JOIN dealer.vehicles v ON v.id = s.vehicle_id
		WHERE s.sale_date BETWEEN $1 AND $2
		ORDER BY s.id`
	rows, err := r.db.Query(query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales: %w", err)
	}
	defer rows.Close()

	var sales []models.Sale
	for rows.Next() {
		var s models.Sale
		var price sql.NullString
		err := rows.Scan(&s.ID, &s.VehicleID, &s.Date, &price, &s.SaleType,
			&s.Vehicle.ID, &s.Vehicle.StockNo, &s.Vehicle.VIN, &s.Vehicle.ModelYear,
			&s.Vehicle.Make, &s.Vehicle.Model, &s.Vehicle.Status, &s.Vehicle.Financing, &s.Vehicle.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sale row: %w", err)
		}
		s.Price = looseAmount(price)
		sales = append(sales, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sale rows: %w", err)
	}
	return sales, nil
}

// VehiclesReceivedBetween retrieves vehicles first logged in [from, to], in
// insert order.
func (r *Repository) VehiclesReceivedBetween(from, to time.Time) ([]models.Vehicle, error) {
	query := `
		SELECT ` + vehicleColumns + `
		FROM dealer.vehicles v
		WHERE v.created_at >= $1 AND v.created_at < $2 + INTERVAL '1 day'
		ORDER BY v.id`
	rows, err := r.db.Query(query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query received vehicles: %w", err)
	}
	defer rows.Close()

	var vehicles []models.Vehicle
	for rows.Next() {
		var v models.Vehicle
		if err := scanVehicle(rows.Scan, &v); err != nil {
			return nil, fmt.Errorf("failed to scan vehicle row: %w", err)
		}
		vehicles = append(vehicles, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate vehicle rows: %w", err)
	}
	return vehicles, nil
}

// UnsoldInventory retrieves every vehicle not marked sold.
func (r *Repository) UnsoldInventory() ([]models.Vehicle, error) {
	query := `
		SELECT ` + vehicleColumns + `
		FROM dealer.vehicles v
		WHERE v.status <> $1
		ORDER BY v.id`
	rows, err := r.db.Query(query, models.StatusSold)
	if err != nil {
		return nil, fmt.Errorf("failed to query inventory: %w", err)
	}
	defer rows.Close()

	var vehicles []models.Vehicle
	for rows.Next() {
		var v models.Vehicle
		if err := scanVehicle(rows.Scan, &v); err != nil {
			return nil, fmt.Errorf("failed to scan inventory row: %w", err)
		}
		vehicles = append(vehicles, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate inventory rows: %w", err)
	}
	return vehicles, nil
}

// StatusLogsBetween retrieves status transitions with their vehicles in
// [from, to], in insert order.
func (r *Repository) StatusLogsBetween(from, to time.Time) ([]models.StatusLog, error) {
	query := `
		SELECT l.id, l.vehicle_id, l.previous_status, l.new_status, l.changed_at, ` + vehicleColumns + `
		FROM dealer.status_logs l
		JOIN dealer.vehicles v ON v.id = l.vehicle_id
		WHERE l.changed_at >= $1 AND l.changed_at < $2 + INTERVAL '1 day'
		ORDER BY l.id`
	rows, err := r.db.Query(query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query status logs: %w", err)
	}
	defer rows.Close()

	var logs []models.StatusLog
	for rows.Next() {
		var l models.StatusLog
		err := rows.Scan(&l.ID, &l.VehicleID, &l.PreviousStatus, &l.NewStatus, &l.ChangedAt,
			&l.Vehicle.ID, &l.Vehicle.StockNo, &l.Vehicle.VIN, &l.Vehicle.ModelYear,
			&l.Vehicle.Make, &l.Vehicle.Model, &l.Vehicle.Status, &l.Vehicle.Financing, &l.Vehicle.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan status log row: %w", err)
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate status log rows: %w", err)
	}
	return logs, nil
}

// CreateUser creates a new user in the database
func (r *Repository) CreateUser(user *models.User) error {
	query := `
		INSERT INTO dealer.users (username, email, role, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING id, created_at`
	err := r.db.QueryRow(query, user.Username, user.Email, user.Role, user.PasswordHash).
		Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindUserByEmail retrieves a user by email
func (r *Repository) FindUserByEmail(email string) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, username, email, role, password_hash, created_at
		FROM dealer.users
		WHERE email = $1`
	err := r.db.QueryRow(query, email).
		Scan(&user.ID, &user.Username, &user.Email, &user.Role, &user.PasswordHash, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}
