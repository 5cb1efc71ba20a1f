// pedido_repository.go implements PedidoRepository, tenant-scoped CRUD for
// sales orders.
package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/AfonsoScheufele/sistema-vendas-backend-sub001/internal/db/models"
)

// PedidoRepository handles sales order database operations.
type PedidoRepository struct {
	db *sqlx.DB
}

// NewPedidoRepository creates a new PedidoRepository.
func NewPedidoRepository(db *sqlx.DB) *PedidoRepository {
	return &PedidoRepository{db: db}
}

// List returns every order of a tenant, newest first.
func (r *PedidoRepository) List(ctx context.Context, tenantID string) ([]models.Pedido, error) {
	pedidos := make([]models.Pedido, 0)
	err := r.db.SelectContext(ctx, &pedidos,
		`SELECT * FROM pedidos WHERE tenant_id = $1 ORDER BY created_at DESC`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list pedidos: %w", err)
	}
	return pedidos, nil
}

// GetByID returns one order of a tenant, or ErrNotFound.
func (r *PedidoRepository) GetByID(ctx context.Context, tenantID string, id int64) (*models.Pedido, error) {
	var p models.Pedido
	err := r.db.GetContext(ctx, &p,
		`SELECT * FROM pedidos WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get pedido: %w", err)
	}
	return &p, nil
}

// Create inserts an order and fills in its id and timestamps.
func (r *PedidoRepository) Create(ctx context.Context, p *models.Pedido) error {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.Status == "" {
		p.Status = "aberto"
	}
	return r.db.QueryRowContext(ctx, `
		INSERT INTO pedidos (tenant_id, cliente_id, status, valor_total, observacao, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		p.TenantID, p.ClienteID, p.Status, p.ValorTotal, p.Observacao, p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID)
}

// Update rewrites an order's mutable fields. Returns ErrNotFound when the row
// does not exist for the tenant.
func (r *PedidoRepository) Update(ctx context.Context, p *models.Pedido) error {
	p.UpdatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		UPDATE pedidos
		SET cliente_id = $1, status = $2, valor_total = $3, observacao = $4, updated_at = $5
		WHERE tenant_id = $6 AND id = $7`,
		p.ClienteID, p.Status, p.ValorTotal, p.Observacao, p.UpdatedAt, p.TenantID, p.ID)
	if err != nil {
		return fmt.Errorf("update pedido: %w", err)
	}
	return requireRow(res)
}

// Delete removes an order. Returns ErrNotFound when nothing was deleted.
func (r *PedidoRepository) Delete(ctx context.Context, tenantID string, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM pedidos WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		return fmt.Errorf("delete pedido: %w", err)
	}
	return requireRow(res)
}
