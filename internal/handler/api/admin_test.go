//go:build unit

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	reqdto "rayproxy/internal/handler/dto/request"
	"rayproxy/internal/pkg/errs"
	"rayproxy/internal/usecase/commands"
	"rayproxy/internal/usecase/queries"
)

// Embedding the interfaces keeps the fakes small: only the methods a test
// touches are overridden, the rest panic if reached.

type fakeAdminQueries struct {
	queries.AdminQueries
	orders      []queries.OrderAdminView
	emails      []queries.EmailAdminView
	gotDomainID *uuid.UUID
}

func (f *fakeAdminQueries) ListOrders(_ context.Context) ([]queries.OrderAdminView, error) {
	return f.orders, nil
}

func (f *fakeAdminQueries) ListEmails(_ context.Context, domainID *uuid.UUID) ([]queries.EmailAdminView, error) {
	f.gotDomainID = domainID
	return f.emails, nil
}

type fakeInventoryCommands struct {
	commands.InventoryCommands
	updateErr error
	gotID     uuid.UUID
	gotStatus string
}

func (f *fakeInventoryCommands) UpdateOrderStatus(_ context.Context, id uuid.UUID, req reqdto.UpdateOrderStatusRequest) error {
	f.gotID = id
	f.gotStatus = req.Status
	return f.updateErr
}

func newAdminEngine(q queries.AdminQueries, cmds commands.InventoryCommands) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	h := NewAdminHandler(cmds, q)
	engine.GET("/api/admin/orders", h.ListOrders)
	engine.PATCH("/api/admin/orders/:id", h.UpdateOrderStatus)
	engine.GET("/api/admin/emails", h.ListEmails)
	return engine
}

func TestAdminListOrders(t *testing.T) {
	q := &fakeAdminQueries{orders: []queries.OrderAdminView{{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		Kind:      "proxy",
		Detail:    "kenya",
		Amount:    500,
		Status:    "paid",
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}}}
	engine := newAdminEngine(q, &fakeInventoryCommands{})

	req := httptest.NewRequest(http.MethodGet, "/api/admin/orders", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"kind":"proxy"`)
	assert.Contains(t, rec.Body.String(), `"detail":"kenya"`)
}

func TestAdminUpdateOrderStatus(t *testing.T) {
	patch := func(engine *gin.Engine, id, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPatch, "/api/admin/orders/"+id, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)
		return rec
	}

	t.Run("overrides and reports no content", func(t *testing.T) {
		cmds := &fakeInventoryCommands{}
		engine := newAdminEngine(&fakeAdminQueries{}, cmds)
		id := uuid.New()

		rec := patch(engine, id.String(), `{"status": "cancelled"}`)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, id, cmds.gotID)
		assert.Equal(t, "cancelled", cmds.gotStatus)
	})

	t.Run("unknown order", func(t *testing.T) {
		cmds := &fakeInventoryCommands{updateErr: errs.ErrOrderNotFound}
		engine := newAdminEngine(&fakeAdminQueries{}, cmds)

		rec := patch(engine, uuid.NewString(), `{"status": "failed"}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("status outside the lifecycle never reaches the usecase", func(t *testing.T) {
		cmds := &fakeInventoryCommands{}
		engine := newAdminEngine(&fakeAdminQueries{}, cmds)

		rec := patch(engine, uuid.NewString(), `{"status": "refunded"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "", cmds.gotStatus)
	})

	t.Run("malformed id", func(t *testing.T) {
		engine := newAdminEngine(&fakeAdminQueries{}, &fakeInventoryCommands{})
		rec := patch(engine, "not-a-uuid", `{"status": "failed"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAdminListEmails(t *testing.T) {
	t.Run("lists everything when unfiltered", func(t *testing.T) {
		q := &fakeAdminQueries{emails: []queries.EmailAdminView{{
			ID:       uuid.New(),
			Address:  "acct0@raymail.io",
			Domain:   "raymail.io",
			DomainID: uuid.New(),
			Status:   "available",
		}}}
		engine := newAdminEngine(q, &fakeInventoryCommands{})

		req := httptest.NewRequest(http.MethodGet, "/api/admin/emails", nil)
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Nil(t, q.gotDomainID)
		assert.Contains(t, rec.Body.String(), `"address":"acct0@raymail.io"`)
	})

	t.Run("passes the domain filter through", func(t *testing.T) {
		q := &fakeAdminQueries{}
		engine := newAdminEngine(q, &fakeInventoryCommands{})
		domainID := uuid.New()

		req := httptest.NewRequest(http.MethodGet, "/api/admin/emails?domain_id="+domainID.String(), nil)
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, q.gotDomainID)
		assert.Equal(t, domainID, *q.gotDomainID)
	})

	t.Run("rejects a malformed domain filter", func(t *testing.T) {
		q := &fakeAdminQueries{}
		engine := newAdminEngine(q, &fakeInventoryCommands{})

		req := httptest.NewRequest(http.MethodGet, "/api/admin/emails?domain_id=not-a-uuid", nil)
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Nil(t, q.gotDomainID)
	})
}
