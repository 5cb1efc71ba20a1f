// cliente_repository.go implements ClienteRepository, tenant-scoped CRUD for
// customer records.
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

// ClienteRepository handles customer database operations.
type ClienteRepository struct {
	db *sqlx.DB
}

// NewClienteRepository creates a new ClienteRepository.
func NewClienteRepository(db *sqlx.DB) *ClienteRepository {
	return &ClienteRepository{db: db}
}

// List returns every customer of a tenant, newest first.
func (r *ClienteRepository) List(ctx context.Context, tenantID string) ([]models.Cliente, error) {
	clientes := make([]models.Cliente, 0)
	err := r.db.SelectContext(ctx, &clientes,
		`SELECT * FROM clientes WHERE tenant_id = $1 ORDER BY created_at DESC`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list clientes: %w", err)
	}
	return clientes, nil
}

// GetByID returns one customer of a tenant, or ErrNotFound.
func (r *ClienteRepository) GetByID(ctx context.Context, tenantID string, id int64) (*models.Cliente, error) {
	var c models.Cliente
	err := r.db.GetContext(ctx, &c,
		`SELECT * FROM clientes WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get cliente: %w", err)
	}
	return &c, nil
}

// Create inserts a customer and fills in its id and timestamps.
func (r *ClienteRepository) Create(ctx context.Context, c *models.Cliente) error {
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	return r.db.QueryRowContext(ctx, `
		INSERT INTO clientes (tenant_id, nome, email, telefone, documento, ativo, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		c.TenantID, c.Nome, c.Email, c.Telefone, c.Documento, c.Ativo, c.CreatedAt, c.UpdatedAt,
	).Scan(&c.ID)
}

// Update rewrites a customer's mutable fields. Returns ErrNotFound when the
// row does not exist for the tenant.
func (r *ClienteRepository) Update(ctx context.Context, c *models.Cliente) error {
	c.UpdatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		UPDATE clientes
		SET nome = $1, email = $2, telefone = $3, documento = $4, ativo = $5, updated_at = $6
		WHERE tenant_id = $7 AND id = $8`,
		c.Nome, c.Email, c.Telefone, c.Documento, c.Ativo, c.UpdatedAt, c.TenantID, c.ID)
	if err != nil {
		return fmt.Errorf("update cliente: %w", err)
	}
	return requireRow(res)
}

// Delete removes a customer. Returns ErrNotFound when nothing was deleted.
func (r *ClienteRepository) Delete(ctx context.Context, tenantID string, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM clientes WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		return fmt.Errorf("delete cliente: %w", err)
	}
	return requireRow(res)
}

// requireRow maps zero affected rows to ErrNotFound.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
