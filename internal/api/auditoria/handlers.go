// Package auditoria exposes the operator-facing read surface of the audit
// trail. Unlike the capture path, which absorbs every failure, storage errors
// here surface as 500s: an operator looking at the trail must know when the
// store is unhealthy rather than see a silently empty page.
package auditoria

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AfonsoScheufele/sistema-vendas-backend-sub001/internal/db/repositories"
)

// Handler serves the /auditoria route group.
type Handler struct {
	repo *repositories.AuditRepository
}

func NewHandler(repo *repositories.AuditRepository) *Handler {
	return &Handler{repo: repo}
}

// List handles GET /auditoria with optional filters:
// tenantId, actorId, acao, entidade, busca, dateFrom, dateTo, page, pageSize.
// Dates accept RFC 3339 or plain YYYY-MM-DD.
func (h *Handler) List(c *gin.Context) {
	filter := repositories.AuditFilter{
		TenantID: optionalQuery(c, "tenantId"),
		ActorID:  optionalQuery(c, "actorId"),
		Action:   optionalQuery(c, "acao"),
		Entity:   optionalQuery(c, "entidade"),
		Search:   c.Query("busca"),
	}

	var err error
	if filter.From, err = optionalTime(c, "dateFrom"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"erro": "dateFrom invalido"})
		return
	}
	if filter.To, err = optionalTime(c, "dateTo"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"erro": "dateTo invalido"})
		return
	}
	filter.Page, _ = strconv.Atoi(c.Query("page"))
	filter.PageSize, _ = strconv.Atoi(c.Query("pageSize"))

	page, err := h.repo.List(c.Request.Context(), filter)
	if err != nil {
		slog.Error("auditoria: list failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"erro": "falha ao consultar auditoria"})
		return
	}

	c.JSON(http.StatusOK, page)
}

// Statistics handles GET /auditoria/estatisticas, optionally filtered by
// tenantId, dateFrom and dateTo.
func (h *Handler) Statistics(c *gin.Context) {
	tenantID := optionalQuery(c, "tenantId")

	from, err := optionalTime(c, "dateFrom")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"erro": "dateFrom invalido"})
		return
	}
	to, err := optionalTime(c, "dateTo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"erro": "dateTo invalido"})
		return
	}

	stats, err := h.repo.Statistics(c.Request.Context(), tenantID, from, to)
	if err != nil {
		slog.Error("auditoria: statistics failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"erro": "falha ao calcular estatisticas"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetByID handles GET /auditoria/:id.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"erro": "id invalido"})
		return
	}

	entry, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"erro": "registro de auditoria nao encontrado"})
			return
		}
		slog.Error("auditoria: get failed", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"erro": "falha ao consultar auditoria"})
		return
	}

	c.JSON(http.StatusOK, entry)
}

func optionalQuery(c *gin.Context, key string) *string {
	v := c.Query(key)
	if v == "" {
		return nil
	}
	return &v
}

func optionalTime(c *gin.Context, key string) (*time.Time, error) {
	v := c.Query(key)
	if v == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
