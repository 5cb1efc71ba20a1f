package models

import "time"

// Pedido is a sales order belonging to a tenant's customer.
type Pedido struct {
	ID         int64     `db:"id" json:"id"`
	TenantID   string    `db:"tenant_id" json:"tenantId"`
	ClienteID  int64     `db:"cliente_id" json:"clienteId"`
	Status     string    `db:"status" json:"status"` // "aberto", "faturado", "cancelado"
	ValorTotal float64   `db:"valor_total" json:"valorTotal"`
	Observacao *string   `db:"observacao" json:"observacao,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time `db:"updated_at" json:"updatedAt"`
}
