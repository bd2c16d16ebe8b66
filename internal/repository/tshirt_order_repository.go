package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/youth-camp-api/internal/models"
)

const orderColumns = "id, registration_id, edition_id, size, quantity, payment_reference, status, created_at, updated_at"

const orderListColumns = "o.id, o.registration_id, o.edition_id, o.size, o.quantity, o.payment_reference, o.status, o.created_at, o.updated_at, COALESCE(r.name, '') AS registrant_name, COALESCE(r.phone, '') AS registrant_phone"

// likeEscaper makes user search text literal inside an ILIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// TShirtOrderRepository handles persistence for T-shirt orders.
type TShirtOrderRepository struct {
	db *sqlx.DB
}

// NewTShirtOrderRepository instantiates an order repository.
func NewTShirtOrderRepository(db *sqlx.DB) *TShirtOrderRepository {
	return &TShirtOrderRepository{db: db}
}

// Create inserts a pending order.
func (r *TShirtOrderRepository) Create(ctx context.Context, order *models.TShirtOrder) error {
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	order.CreatedAt = now
	order.UpdatedAt = now
	order.Status = models.OrderPending

	const query = `INSERT INTO tshirt_orders (id, registration_id, edition_id, size, quantity, payment_reference, status, created_at, updated_at) VALUES (:id, :registration_id, :edition_id, :size, :quantity, :payment_reference, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, order); err != nil {
		return fmt.Errorf("create tshirt order: %w", err)
	}
	return nil
}

// FindByID loads an order; sql.ErrNoRows is returned unwrapped.
func (r *TShirtOrderRepository) FindByID(ctx context.Context, id string) (*models.TShirtOrder, error) {
	var order models.TShirtOrder
	if err := r.db.GetContext(ctx, &order, "SELECT "+orderColumns+" FROM tshirt_orders WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &order, nil
}

// List returns orders with the registrant's name and phone, newest first.
func (r *TShirtOrderRepository) List(ctx context.Context, filter models.TShirtOrderFilter) ([]models.TShirtOrder, error) {
	var conditions []string
	var args []interface{}

	if filter.EditionID != nil {
		args = append(args, *filter.EditionID)
		conditions = append(conditions, fmt.Sprintf("o.edition_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("o.status = $%d", len(args)))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+likeEscaper.Replace(search)+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf(`(o.payment_reference ILIKE $%d ESCAPE '\' OR r.name ILIKE $%d ESCAPE '\' OR r.phone ILIKE $%d ESCAPE '\')`, n, n, n))
	}

	query := "SELECT " + orderListColumns + " FROM tshirt_orders o LEFT JOIN registrations r ON r.id = o.registration_id WHERE 1=1"
	if len(conditions) > 0 {
		query += " AND " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY o.created_at DESC"

	orders := make([]models.TShirtOrder, 0)
	if err := r.db.SelectContext(ctx, &orders, query, args...); err != nil {
		return nil, fmt.Errorf("list tshirt orders: %w", err)
	}
	return orders, nil
}

// ListPending returns the orders eligible for payment reconciliation.
func (r *TShirtOrderRepository) ListPending(ctx context.Context, editionID *int64) ([]models.TShirtOrder, error) {
	return r.List(ctx, models.TShirtOrderFilter{EditionID: editionID, Status: models.OrderPending})
}

// TransitionFromPending moves a pending order to status. sql.ErrNoRows means
// the order is missing or no longer pending.
func (r *TShirtOrderRepository) TransitionFromPending(ctx context.Context, id string, status models.TShirtOrderStatus) (*models.TShirtOrder, error) {
	query := "UPDATE tshirt_orders SET status = $2, updated_at = $3 WHERE id = $1 AND status = 'pending' RETURNING " + orderColumns
	var order models.TShirtOrder
	if err := r.db.GetContext(ctx, &order, query, id, status, time.Now().UTC()); err != nil {
		return nil, err
	}
	return &order, nil
}
