package auditoria

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AfonsoScheufele/sistema-vendas-backend-sub001/internal/db/repositories"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newTestHandler(t *testing.T) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	h := NewHandler(repositories.NewAuditRepository(sqlx.NewDb(db, "postgres")))
	r := gin.New()
	r.GET("/auditoria", h.List)
	r.GET("/auditoria/estatisticas", h.Statistics)
	r.GET("/auditoria/:id", h.GetByID)
	return r, mock
}

var auditRows = []string{
	"id", "tenant_id", "actor_id", "actor_name", "action", "entity", "entity_id",
	"description", "before_state", "after_state", "ip_address", "user_agent",
	"endpoint", "http_method", "occurred_at",
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestListEnvelope(t *testing.T) {
	r, mock := newTestHandler(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM audit_logs`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT .+ FROM audit_logs .+ ORDER BY occurred_at DESC`).
		WillReturnRows(sqlmock.NewRows(auditRows).
			AddRow(int64(1), "default-tenant", nil, "Sistema", "CREATE", "Clientes", nil,
				"Criou Clientes", nil, nil, nil, nil, nil, nil, time.Now().UTC()))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auditoria", nil))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Len(t, body["dados"], 1)
	assert.EqualValues(t, 1, body["total"])
	assert.EqualValues(t, 1, body["pagina"])
	assert.EqualValues(t, 50, body["porPagina"])
	assert.EqualValues(t, 1, body["totalPaginas"])
}

func TestListBadDateIs400(t *testing.T) {
	r, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auditoria?dateFrom=ontem", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListStorageErrorIs500(t *testing.T) {
	r, mock := newTestHandler(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM audit_logs`).
		WillReturnError(sqlmock.ErrCancelled)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auditoria", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestGetByIDNotFoundIs404(t *testing.T) {
	r, mock := newTestHandler(t)

	mock.ExpectQuery(`SELECT .+ FROM audit_logs WHERE id = \$1`).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows(auditRows))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auditoria/99", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetByIDBadIDIs400(t *testing.T) {
	r, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auditoria/abc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatisticsEnvelope(t *testing.T) {
	r, mock := newTestHandler(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM audit_logs`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(10))
	mock.ExpectQuery(`SELECT action AS name`).
		WillReturnRows(sqlmock.NewRows([]string{"name", "count"}).AddRow("CREATE", 10))
	mock.ExpectQuery(`SELECT entity AS name`).
		WillReturnRows(sqlmock.NewRows([]string{"name", "count"}).AddRow("Clientes", 10))
	mock.ExpectQuery(`SELECT COALESCE\(actor_name`).
		WillReturnRows(sqlmock.NewRows([]string{"name", "count"}).AddRow("Sistema", 10))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auditoria/estatisticas", nil))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.EqualValues(t, 10, body["total"])
	assert.Contains(t, body, "porAcao")
	assert.Contains(t, body, "porEntidade")
	assert.Contains(t, body, "porUsuario")
}
