package models

import "time"

// Cliente is a customer record owned by a single tenant.
type Cliente struct {
	ID        int64     `db:"id" json:"id"`
	TenantID  string    `db:"tenant_id" json:"tenantId"`
	Nome      string    `db:"nome" json:"nome"`
	Email     *string   `db:"email" json:"email,omitempty"`
	Telefone  *string   `db:"telefone" json:"telefone,omitempty"`
	Documento *string   `db:"documento" json:"documento,omitempty"` // CPF/CNPJ
	Ativo     bool      `db:"ativo" json:"ativo"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}
