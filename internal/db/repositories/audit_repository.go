// audit_repository.go implements AuditRepository, the append-only audit store:
// insert, filtered/paginated listing, per-id lookup, aggregate statistics, and
// the bulk retention delete. Rows are never updated.
package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/AfonsoScheufele/sistema-vendas-backend-sub001/internal/db/models"
)

// ErrNotFound is returned by per-id lookups when no row matches. It is kept
// distinct from storage errors so handlers can answer 404 instead of 500.
var ErrNotFound = errors.New("registro nao encontrado")

// DefaultPageSize is applied when a listing request carries no page size.
const DefaultPageSize = 50

// AuditRepository handles audit log database operations.
type AuditRepository struct {
	db *sqlx.DB
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(db *sqlx.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// AuditFilter narrows a listing query. Nil/zero fields are ignored. The date
// range is inclusive on both ends; Search matches description, actor name, and
// entity name case-insensitively, OR-combined.
type AuditFilter struct {
	TenantID *string
	ActorID  *string
	Action   *string
	Entity   *string
	From     *time.Time
	To       *time.Time
	Search   string
	Page     int
	PageSize int
}

// AuditPage is one page of a listing result, newest entries first.
type AuditPage struct {
	Entries    []*models.AuditLog `json:"dados"`
	Total      int                `json:"total"`
	Page       int                `json:"pagina"`
	PageSize   int                `json:"porPagina"`
	TotalPages int                `json:"totalPaginas"`
}

// NameCount is one aggregation bucket in the statistics result.
type NameCount struct {
	Name  string `db:"name" json:"nome"`
	Count int64  `db:"count" json:"total"`
}

// AuditStatistics aggregates the audit trail for dashboards. ByAction is a
// complete breakdown; ByEntity and ByActor are truncated to the top ten, ties
// resolved by whichever bucket the database groups first.
type AuditStatistics struct {
	Total    int64            `json:"total"`
	ByAction map[string]int64 `json:"porAcao"`
	ByEntity []NameCount      `json:"porEntidade"`
	ByActor  []NameCount      `json:"porUsuario"`
}

const auditColumns = `id, tenant_id, actor_id, actor_name, action, entity, entity_id,
	description, before_state, after_state, ip_address, user_agent, endpoint,
	http_method, occurred_at`

// Insert appends one entry, assigning its id and occurred-at timestamp. The
// entry's ID and OccurredAt fields are filled in on success.
func (r *AuditRepository) Insert(ctx context.Context, entry *models.AuditLog) error {
	entry.OccurredAt = time.Now().UTC()
	if entry.TenantID == "" {
		entry.TenantID = "default-tenant"
	}

	beforeJSON, err := marshalState(entry.BeforeState)
	if err != nil {
		return fmt.Errorf("marshal before state: %w", err)
	}
	afterJSON, err := marshalState(entry.AfterState)
	if err != nil {
		return fmt.Errorf("marshal after state: %w", err)
	}

	query := `
		INSERT INTO audit_logs
			(tenant_id, actor_id, actor_name, action, entity, entity_id,
			 description, before_state, after_state, ip_address, user_agent,
			 endpoint, http_method, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id
	`
	return r.db.QueryRowContext(ctx, query,
		entry.TenantID,
		entry.ActorID,
		entry.ActorName,
		entry.Action,
		entry.Entity,
		entry.EntityID,
		entry.Description,
		beforeJSON,
		afterJSON,
		entry.IPAddress,
		entry.UserAgent,
		entry.Endpoint,
		entry.HTTPMethod,
		entry.OccurredAt,
	).Scan(&entry.ID)
}

// List retrieves a page of audit entries matching the filter, ordered by
// occurred-at descending. Page numbers are 1-indexed.
func (r *AuditRepository) List(ctx context.Context, filter AuditFilter) (*AuditPage, error) {
	where, args := buildAuditWhere(filter)

	var total int
	countQuery := `SELECT COUNT(*) FROM audit_logs` + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count audit logs: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}

	query := fmt.Sprintf(`SELECT %s FROM audit_logs%s ORDER BY occurred_at DESC LIMIT $%d OFFSET $%d`,
		auditColumns, where, len(args)+1, len(args)+2)
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	defer rows.Close()

	entries := make([]*models.AuditLog, 0)
	for rows.Next() {
		entry, err := scanAuditLog(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	totalPages := (total + pageSize - 1) / pageSize
	return &AuditPage{
		Entries:    entries,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// GetByID retrieves a single audit entry, or ErrNotFound.
func (r *AuditRepository) GetByID(ctx context.Context, id int64) (*models.AuditLog, error) {
	query := fmt.Sprintf(`SELECT %s FROM audit_logs WHERE id = $1`, auditColumns)
	row := r.db.QueryRowContext(ctx, query, id)
	entry, err := scanAuditLog(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Statistics aggregates the trail, optionally scoped to a tenant and an
// inclusive date range.
func (r *AuditRepository) Statistics(ctx context.Context, tenantID *string, from, to *time.Time) (*AuditStatistics, error) {
	where, args := buildAuditWhere(AuditFilter{TenantID: tenantID, From: from, To: to})

	stats := &AuditStatistics{
		ByAction: make(map[string]int64),
		ByEntity: make([]NameCount, 0),
		ByActor:  make([]NameCount, 0),
	}

	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_logs`+where, args...).Scan(&stats.Total); err != nil {
		return nil, fmt.Errorf("count audit logs: %w", err)
	}

	actionRows, err := r.db.QueryContext(ctx,
		`SELECT action AS name, COUNT(*) AS count FROM audit_logs`+where+` GROUP BY action`, args...)
	if err != nil {
		return nil, fmt.Errorf("aggregate by action: %w", err)
	}
	defer actionRows.Close()
	for actionRows.Next() {
		var nc NameCount
		if err := actionRows.Scan(&nc.Name, &nc.Count); err != nil {
			return nil, err
		}
		stats.ByAction[nc.Name] = nc.Count
	}
	if err := actionRows.Err(); err != nil {
		return nil, err
	}

	entityQuery := `SELECT entity AS name, COUNT(*) AS count FROM audit_logs` + where +
		` GROUP BY entity ORDER BY count DESC LIMIT 10`
	if err := r.db.SelectContext(ctx, &stats.ByEntity, entityQuery, args...); err != nil {
		return nil, fmt.Errorf("aggregate by entity: %w", err)
	}

	actorQuery := `SELECT COALESCE(actor_name, 'Sistema') AS name, COUNT(*) AS count FROM audit_logs` + where +
		` GROUP BY COALESCE(actor_name, 'Sistema') ORDER BY count DESC LIMIT 10`
	if err := r.db.SelectContext(ctx, &stats.ByActor, actorQuery, args...); err != nil {
		return nil, fmt.Errorf("aggregate by actor: %w", err)
	}

	return stats, nil
}

// DeleteOlderThan irreversibly deletes every entry that occurred strictly
// before the cutoff and returns how many rows were removed. Entries that
// occurred exactly at the cutoff are kept.
func (r *AuditRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM audit_logs WHERE occurred_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete audit logs: %w", err)
	}
	return res.RowsAffected()
}

// buildAuditWhere renders the filter as a WHERE clause with positional
// parameters, following the incremental paramIndex pattern used across the
// repository layer.
func buildAuditWhere(filter AuditFilter) (string, []interface{}) {
	where := ` WHERE 1=1`
	args := make([]interface{}, 0)
	paramIndex := 1

	if filter.TenantID != nil {
		where += fmt.Sprintf(` AND tenant_id = $%d`, paramIndex)
		args = append(args, *filter.TenantID)
		paramIndex++
	}
	if filter.ActorID != nil {
		where += fmt.Sprintf(` AND actor_id = $%d`, paramIndex)
		args = append(args, *filter.ActorID)
		paramIndex++
	}
	if filter.Action != nil {
		where += fmt.Sprintf(` AND action = $%d`, paramIndex)
		args = append(args, *filter.Action)
		paramIndex++
	}
	if filter.Entity != nil {
		where += fmt.Sprintf(` AND entity = $%d`, paramIndex)
		args = append(args, *filter.Entity)
		paramIndex++
	}
	if filter.From != nil {
		where += fmt.Sprintf(` AND occurred_at >= $%d`, paramIndex)
		args = append(args, *filter.From)
		paramIndex++
	}
	if filter.To != nil {
		where += fmt.Sprintf(` AND occurred_at <= $%d`, paramIndex)
		args = append(args, *filter.To)
		paramIndex++
	}
	if filter.Search != "" {
		where += fmt.Sprintf(` AND (description ILIKE $%d OR actor_name ILIKE $%d OR entity ILIKE $%d)`,
			paramIndex, paramIndex, paramIndex)
		args = append(args, "%"+filter.Search+"%")
		paramIndex++
	}

	return where, args
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAuditLog(row rowScanner) (*models.AuditLog, error) {
	entry := &models.AuditLog{}
	var beforeJSON, afterJSON []byte

	err := row.Scan(
		&entry.ID,
		&entry.TenantID,
		&entry.ActorID,
		&entry.ActorName,
		&entry.Action,
		&entry.Entity,
		&entry.EntityID,
		&entry.Description,
		&beforeJSON,
		&afterJSON,
		&entry.IPAddress,
		&entry.UserAgent,
		&entry.Endpoint,
		&entry.HTTPMethod,
		&entry.OccurredAt,
	)
	if err != nil {
		return nil, err
	}

	if beforeJSON != nil {
		if err := json.Unmarshal(beforeJSON, &entry.BeforeState); err != nil {
			return nil, fmt.Errorf("unmarshal before state: %w", err)
		}
	}
	if afterJSON != nil {
		if err := json.Unmarshal(afterJSON, &entry.AfterState); err != nil {
			return nil, fmt.Errorf("unmarshal after state: %w", err)
		}
	}
	return entry, nil
}

func marshalState(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}
