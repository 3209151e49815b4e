package scope

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autostock/backend/internal/models"
	"github.com/autostock/backend/pkg/apperr"
)

func ptr(id uuid.UUID) *uuid.UUID { return &id }

func TestAuthorize(t *testing.T) {
	tenantA := uuid.New()
	tenantB := uuid.New()

	super := Principal{ID: uuid.New(), Role: models.RoleSuperAdmin, Active: true}
	admin := Principal{ID: uuid.New(), Role: models.RoleAdmin, BusinessID: ptr(tenantA), Active: true}
	seller := Principal{ID: uuid.New(), Role: models.RoleSeller, BusinessID: ptr(tenantA), Active: true}

	tests := []struct {
		name    string
		p       Principal
		action  Action
		target  *uuid.UUID
		allowed bool
	}{
		{"superadmin manages any tenant", super, ActionManageTenant, ptr(tenantB), true},
		{"superadmin manages plans", super, ActionManagePlan, nil, true},
		{"superadmin resets admin password", super, ActionResetAdminPassword, ptr(tenantA), true},
		{"superadmin views global metrics", super, ActionViewGlobalMetrics, nil, true},
		{"superadmin denied tenant catalog", super, ActionManageCatalog, ptr(tenantA), false},
		{"superadmin denied sale registration", super, ActionRegisterSale, ptr(tenantA), false},
		{"admin acts in own tenant", admin, ActionManageCatalog, ptr(tenantA), true},
		{"admin resets seller in own tenant", admin, ActionResetSellerPassword, ptr(tenantA), true},
		{"admin acknowledges notifications", admin, ActionAcknowledgeNotification, ptr(tenantA), true},
		{"admin denied other tenant", admin, ActionManageCatalog, ptr(tenantB), false},
		{"admin denied lateral reset", admin, ActionResetSellerPassword, ptr(tenantB), false},
		{"admin denied tenant management", admin, ActionManageTenant, ptr(tenantA), false},
		{"admin denied admin reset", admin, ActionResetAdminPassword, ptr(tenantA), false},
		{"seller reads catalog", seller, ActionViewCatalog, ptr(tenantA), true},
		{"seller registers sale", seller, ActionRegisterSale, ptr(tenantA), true},
		{"seller denied other tenant catalog", seller, ActionViewCatalog, ptr(tenantB), false},
		{"seller denied notifications", seller, ActionViewNotifications, ptr(tenantA), false},
		{"seller denied user management", seller, ActionManageUsers, ptr(tenantA), false},
		{"seller denied seller reset", seller, ActionResetSellerPassword, ptr(tenantA), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, d, err := Authorize(tt.p, tt.action, tt.target)
			assert.Equal(t, tt.allowed, d.Allowed)
			assert.Equal(t, tt.p.ID, d.PrincipalID)
			assert.Equal(t, tt.action, d.Action)
			if tt.allowed {
				require.NoError(t, err)
				assert.Equal(t, tt.p.ID, ctx.Principal.ID)
			} else {
				assert.ErrorIs(t, err, apperr.ErrDenied)
				assert.NotEmpty(t, d.Reason)
			}
		})
	}
}

// Sellers can never manage tenants, for any target.
func TestSellerNeverManagesTenant(t *testing.T) {
	tenantA := uuid.New()
	seller := Principal{ID: uuid.New(), Role: models.RoleSeller, BusinessID: ptr(tenantA), Active: true}

	for _, target := range []*uuid.UUID{nil, ptr(tenantA), ptr(uuid.New())} {
		_, d, err := Authorize(seller, ActionManageTenant, target)
		assert.ErrorIs(t, err, apperr.ErrDenied)
		assert.False(t, d.Allowed)
	}
}

func TestInactivePrincipalAlwaysDenied(t *testing.T) {
	tenantA := uuid.New()
	p := Principal{ID: uuid.New(), Role: models.RoleAdmin, BusinessID: ptr(tenantA)}

	_, d, err := Authorize(p, ActionViewNotifications, ptr(tenantA))
	assert.ErrorIs(t, err, apperr.ErrDenied)
	assert.Equal(t, "principal inactive", d.Reason)
}

func TestAuthorizedContextCarriesTenant(t *testing.T) {
	tenantA := uuid.New()
	admin := Principal{ID: uuid.New(), Role: models.RoleAdmin, BusinessID: ptr(tenantA), Active: true}

	ctx, _, err := Authorize(admin, ActionViewNotifications, ptr(tenantA))
	require.NoError(t, err)
	require.NotNil(t, ctx.BusinessID)
	assert.Equal(t, tenantA, *ctx.BusinessID)
}
