// Package clientes implements the customer CRUD surface. Handlers are thin:
// bind, validate, query. The audit pipeline observes them from the outside;
// the only explicit collaboration is stashing the prior row before updates
// and deletes so the captured entry carries a before-state.
package clientes

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/AfonsoScheufele/sistema-vendas-backend-sub001/internal/db/models"
	"github.com/AfonsoScheufele/sistema-vendas-backend-sub001/internal/db/repositories"
	"github.com/AfonsoScheufele/sistema-vendas-backend-sub001/internal/middleware"
)

// Handler serves the /clientes route group.
type Handler struct {
	repo *repositories.ClienteRepository
}

func NewHandler(repo *repositories.ClienteRepository) *Handler {
	return &Handler{repo: repo}
}

type clienteInput struct {
	Nome      string  `json:"nome" binding:"required"`
	Email     *string `json:"email"`
	Telefone  *string `json:"telefone"`
	Documento *string `json:"documento"`
	Ativo     *bool   `json:"ativo"`
}

// List handles GET /clientes.
func (h *Handler) List(c *gin.Context) {
	clientes, err := h.repo.List(c.Request.Context(), c.GetString("tenant_id"))
	if err != nil {
		slog.Error("clientes: list failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"erro": "falha ao listar clientes"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"dados": clientes, "total": len(clientes)})
}

// Stats handles GET /clientes/stats, a dashboard aggregate.
func (h *Handler) Stats(c *gin.Context) {
	clientes, err := h.repo.List(c.Request.Context(), c.GetString("tenant_id"))
	if err != nil {
		slog.Error("clientes: stats failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"erro": "falha ao calcular estatisticas"})
		return
	}
	ativos := 0
	for _, cl := range clientes {
		if cl.Ativo {
			ativos++
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"total":    len(clientes),
		"ativos":   ativos,
		"inativos": len(clientes) - ativos,
	})
}

// GetByID handles GET /clientes/:id.
func (h *Handler) GetByID(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	cliente, err := h.repo.GetByID(c.Request.Context(), c.GetString("tenant_id"), id)
	if err != nil {
		respondRepoError(c, err, "cliente")
		return
	}
	c.JSON(http.StatusOK, cliente)
}

// Create handles POST /clientes.
func (h *Handler) Create(c *gin.Context) {
	var in clienteInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"erro": "dados invalidos: " + err.Error()})
		return
	}

	cliente := &models.Cliente{
		TenantID:  c.GetString("tenant_id"),
		Nome:      in.Nome,
		Email:     in.Email,
		Telefone:  in.Telefone,
		Documento: in.Documento,
		Ativo:     true,
	}
	if in.Ativo != nil {
		cliente.Ativo = *in.Ativo
	}

	if err := h.repo.Create(c.Request.Context(), cliente); err != nil {
		slog.Error("clientes: create failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"erro": "falha ao criar cliente"})
		return
	}
	c.JSON(http.StatusCreated, cliente)
}

// Update handles PUT /clientes/:id.
func (h *Handler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var in clienteInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"erro": "dados invalidos: " + err.Error()})
		return
	}

	tenantID := c.GetString("tenant_id")
	atual, err := h.repo.GetByID(c.Request.Context(), tenantID, id)
	if err != nil {
		respondRepoError(c, err, "cliente")
		return
	}
	middleware.SetAuditBefore(c, atual)

	cliente := &models.Cliente{
		ID:        id,
		TenantID:  tenantID,
		Nome:      in.Nome,
		Email:     in.Email,
		Telefone:  in.Telefone,
		Documento: in.Documento,
		Ativo:     atual.Ativo,
	}
	if in.Ativo != nil {
		cliente.Ativo = *in.Ativo
	}

	if err := h.repo.Update(c.Request.Context(), cliente); err != nil {
		respondRepoError(c, err, "cliente")
		return
	}
	c.JSON(http.StatusOK, cliente)
}

// Delete handles DELETE /clientes/:id.
func (h *Handler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	tenantID := c.GetString("tenant_id")

	atual, err := h.repo.GetByID(c.Request.Context(), tenantID, id)
	if err != nil {
		respondRepoError(c, err, "cliente")
		return
	}
	middleware.SetAuditBefore(c, atual)

	if err := h.repo.Delete(c.Request.Context(), tenantID, id); err != nil {
		respondRepoError(c, err, "cliente")
		return
	}
	c.JSON(http.StatusOK, gin.H{"mensagem": "cliente excluido"})
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"erro": "id invalido"})
		return 0, false
	}
	return id, true
}

func respondRepoError(c *gin.Context, err error, recurso string) {
	if errors.Is(err, repositories.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"erro": recurso + " nao encontrado"})
		return
	}
	slog.Error("clientes: operation failed", "recurso", recurso, "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"erro": "erro interno"})
}
