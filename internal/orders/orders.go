// Package orders records move requests as order notes for the office to
// follow up on.
package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// StatusNewLead is the status of an order nobody has worked yet.
const StatusNewLead = "new lead"

var (
	ErrNotFound     = errors.New("order not found")
	ErrDuplicateRef = errors.New("order reference already used")
)

// Note is what the caller told us about the move, plus the estimate we gave.
type Note struct {
	Name                     string  `json:"name" validate:"required"`
	Phone                    string  `json:"phone" validate:"required"`
	Email                    string  `json:"email" validate:"omitempty,email"`
	MoveDate                 string  `json:"move_date" validate:"required"`
	Locations                string  `json:"locations"`
	Stairwells               string  `json:"stairwells"`
	ItemDetails              string  `json:"item_details"`
	EstimatePrice            float64 `json:"estimate_price" validate:"gte=0"`
	EstimateCalculationTable string  `json:"estimate_calculation_table"`
}

// Text renders the note the way the office reads it.
func (n Note) Text() string {
	lines := []string{
		"Name: " + n.Name,
		"Phone: " + n.Phone,
		"Email: " + n.Email,
		"Move date: " + n.MoveDate,
		"Locations: " + n.Locations,
		"Stairwells: " + n.Stairwells,
		"Items: " + n.ItemDetails,
		fmt.Sprintf("Estimate price: %.2f", n.EstimatePrice),
		"Estimate calculation table: " + n.EstimateCalculationTable,
	}
	return strings.Join(lines, "\n")
}

// Order is a stored order note.
type Order struct {
	ID           uuid.UUID `json:"id"`
	Ref          string    `json:"order_ref"`
	CustomerName string    `json:"customer_name"`
	Status       string    `json:"status"`
	ETA          string    `json:"eta"`
	Notes        string    `json:"notes"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewRef returns a short human-readable order reference like ORD-1A2B3C4D.
func NewRef() string {
	id := uuid.New()
	return "ORD-" + strings.ToUpper(strings.ReplaceAll(id.String(), "-", "")[:8])
}

// Repository stores orders in Postgres.
type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Create stores n as a new lead under a fresh reference.
func (r *Repository) Create(ctx context.Context, n Note) (Order, error) {
	o := Order{
		ID:           uuid.New(),
		Ref:          NewRef(),
		CustomerName: n.Name,
		Status:       StatusNewLead,
		ETA:          n.MoveDate,
		Notes:        n.Text(),
		CreatedAt:    time.Now().UTC(),
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO orders (id, ext_ref, customer_name, status, eta, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, o.ID, o.Ref, o.CustomerName, o.Status, o.ETA, o.Notes, o.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return Order{}, ErrDuplicateRef
		}
		return Order{}, fmt.Errorf("insert order: %w", err)
	}
	return o, nil
}

// GetByRef loads the order with the given reference.
func (r *Repository) GetByRef(ctx context.Context, ref string) (Order, error) {
	var o Order
	err := r.db.QueryRow(ctx, `
		SELECT id, ext_ref, customer_name, status, eta, notes, created_at
		FROM orders
		WHERE ext_ref = $1
	`, strings.ToUpper(strings.TrimSpace(ref))).Scan(&o.ID, &o.Ref, &o.CustomerName, &o.Status, &o.ETA, &o.Notes, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, ErrNotFound
		}
		return Order{}, fmt.Errorf("select order: %w", err)
	}
	return o, nil
}
