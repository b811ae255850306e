package pgrepo

import (
	"context"

	"github.com/dinebook/dinebook/internal/domain"
	"github.com/dinebook/dinebook/pkg/uow"
)

// RestaurantRepository is read-only from the booking core's perspective:
// restaurants and tables are managed elsewhere.
type RestaurantRepository struct {
	conn uow.DBTX
}

func NewRestaurantRepository(conn uow.DBTX) *RestaurantRepository {
	return &RestaurantRepository{conn: conn}
}

func (r *RestaurantRepository) FindRestaurantByID(ctx context.Context, id int64) (*domain.Restaurant, error) {
	var rest domain.Restaurant
	err := r.conn.QueryRow(ctx,
		`SELECT id, created_at, updated_at, owner_id, name, active, requires_deposit
		 FROM restaurants WHERE id = $1`, id,
	).Scan(
		&rest.ID, &rest.CreatedAt, &rest.UpdatedAt,
		&rest.OwnerID, &rest.Name, &rest.Active, &rest.RequiresDeposit,
	)
	if err != nil {
		return nil, convertErr(err, "finding restaurant %d", id)
	}
	return &rest, nil
}

func (r *RestaurantRepository) FindTableByID(ctx context.Context, id int64) (*domain.Table, error) {
	var table domain.Table
	err := r.conn.QueryRow(ctx,
		`SELECT id, restaurant_id, capacity FROM restaurant_tables WHERE id = $1`, id,
	).Scan(&table.ID, &table.RestaurantID, &table.Capacity)
	if err != nil {
		return nil, convertErr(err, "finding table %d", id)
	}
	return &table, nil
}
