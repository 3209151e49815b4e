// Package scope resolves an authenticated principal into an authorization
// context and validates every action against the tenant it targets. It is
// pure: no storage access, no logging. Callers feed the returned Decision to
// the audit sink.
package scope

import (
	"time"

	"github.com/google/uuid"

	"github.com/autostock/backend/internal/models"
	"github.com/autostock/backend/pkg/apperr"
)

// ContextPrincipal is the request-context key under which the HTTP layer
// stores the authenticated Principal.
const ContextPrincipal = "principal"

// Action is a closed set of operations the guard knows how to scope.
type Action string

const (
	ActionManageTenant            Action = "manage-tenant"
	ActionManagePlan              Action = "manage-plan"
	ActionResetAdminPassword      Action = "reset-admin-password"
	ActionResetSellerPassword     Action = "reset-seller-password"
	ActionViewGlobalMetrics       Action = "view-global-metrics"
	ActionManageCatalog           Action = "manage-catalog"
	ActionManageUsers             Action = "manage-users"
	ActionViewCatalog             Action = "view-catalog"
	ActionRegisterSale            Action = "register-sale"
	ActionViewSales               Action = "view-sales"
	ActionViewNotifications       Action = "view-notifications"
	ActionAcknowledgeNotification Action = "acknowledge-notification"
)

// Principal is the authenticated identity attached to a request.
type Principal struct {
	ID         uuid.UUID
	Username   string
	Role       models.Role
	BusinessID *uuid.UUID
	Active     bool
}

// PrincipalFromUser builds a Principal from a user row.
func PrincipalFromUser(u *models.User) Principal {
	return Principal{
		ID:         u.ID,
		Username:   u.Username,
		Role:       u.Role,
		BusinessID: u.BusinessID,
		Active:     u.Active,
	}
}

// Context is the authorized context a successful check produces. Core
// operations take it explicitly; nothing re-derives session state
// mid-operation.
type Context struct {
	Principal  Principal
	BusinessID *uuid.UUID // tenant the action was authorized against; nil for global actions
}

// Decision records one authorization outcome (allow or deny) for the audit sink.
type Decision struct {
	PrincipalID    uuid.UUID  `json:"principal_id"`
	Role           models.Role `json:"role"`
	Action         Action     `json:"action"`
	TargetBusiness *uuid.UUID `json:"target_business,omitempty"`
	Allowed        bool       `json:"allowed"`
	Reason         string     `json:"reason,omitempty"`
	DecidedAt      time.Time  `json:"decided_at"`
}

// superAdminActions are global; superadmins hold no tenant membership, so
// tenant-internal CRUD is denied to them.
var superAdminActions = map[Action]bool{
	ActionManageTenant:       true,
	ActionManagePlan:         true,
	ActionResetAdminPassword: true,
	ActionViewGlobalMetrics:  true,
}

// adminActions are valid only within the admin's own business.
var adminActions = map[Action]bool{
	ActionResetSellerPassword:     true,
	ActionManageCatalog:           true,
	ActionManageUsers:             true,
	ActionViewCatalog:             true,
	ActionViewSales:               true,
	ActionViewNotifications:       true,
	ActionAcknowledgeNotification: true,
}

// sellerActions are the read/create subset within the seller's own business.
var sellerActions = map[Action]bool{
	ActionViewCatalog:  true,
	ActionRegisterSale: true,
	ActionViewSales:    true,
}

// Authorize evaluates the role rules in order, first match wins. The Decision
// is always populated, including on denial. Denials are apperr.ErrDenied; the
// guard never distinguishes "exists elsewhere" from "does not exist".
func Authorize(p Principal, action Action, targetBusiness *uuid.UUID) (Context, Decision, error) {
	d := Decision{
		PrincipalID:    p.ID,
		Role:           p.Role,
		Action:         action,
		TargetBusiness: targetBusiness,
		DecidedAt:      time.Now().UTC(),
	}

	if !p.Active {
		d.Reason = "principal inactive"
		return Context{}, d, apperr.ErrDenied
	}

	switch p.Role {
	case models.RoleSuperAdmin:
		if superAdminActions[action] {
			d.Allowed = true
			return Context{Principal: p, BusinessID: targetBusiness}, d, nil
		}
		d.Reason = "action requires tenant membership"
	case models.RoleAdmin:
		if !adminActions[action] {
			d.Reason = "action not permitted for role"
			break
		}
		if p.BusinessID == nil || targetBusiness == nil || *targetBusiness != *p.BusinessID {
			d.Reason = "tenant scope mismatch"
			break
		}
		d.Allowed = true
		return Context{Principal: p, BusinessID: p.BusinessID}, d, nil
	case models.RoleSeller:
		if !sellerActions[action] {
			d.Reason = "action not permitted for role"
			break
		}
		if p.BusinessID == nil || targetBusiness == nil || *targetBusiness != *p.BusinessID {
			d.Reason = "tenant scope mismatch"
			break
		}
		d.Allowed = true
		return Context{Principal: p, BusinessID: p.BusinessID}, d, nil
	default:
		d.Reason = "unknown role"
	}

	return Context{}, d, apperr.ErrDenied
}
