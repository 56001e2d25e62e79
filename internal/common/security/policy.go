package security

import (
	"fmt"

	"ecommerce_api/internal/common"
	"ecommerce_api/internal/domain/model"
)

// Requirement is an access rule evaluated by Authorize.
type Requirement interface {
	requirement()
}

// RoleAtLeast is met by any principal ranked at or above Role.
type RoleAtLeast struct {
	Role model.Role
}

// OwnerOrRole is met by the resource owner, or by any principal meeting
// RoleAtLeast{Role}.
type OwnerOrRole struct {
	OwnerID int64
	Role    model.Role
}

func (RoleAtLeast) requirement() {}
func (OwnerOrRole) requirement() {}

// Authorize returns nil to allow, common.ErrForbidden to deny, and
// common.ErrUnauthorized when there is no principal at all.
func Authorize(p *model.Principal, req Requirement) error {
	if p == nil {
		return common.ErrUnauthorized
	}
	switch r := req.(type) {
	case RoleAtLeast:
		if p.Role.AtLeast(r.Role) {
			return nil
		}
	case OwnerOrRole:
		if p.ID == r.OwnerID || p.Role.AtLeast(r.Role) {
			return nil
		}
	default:
		return fmt.Errorf("unknown requirement %T: %w", req, common.ErrForbidden)
	}
	return common.ErrForbidden
}
