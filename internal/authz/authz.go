// Package authz holds the single capability table consulted at the gate
// boundary. Role checks live here instead of being repeated per call site.
package authz

import "github.com/unigate-dev/unigate/internal/domain"

type Resource string

const (
	ResourceWaitlist     Resource = "waitlist"
	ResourceRegistrant   Resource = "registrant"    // student/faculty records
	ResourceAdminAccount Resource = "admin_account" // admin-role records
	ResourceDepartment   Resource = "department"
	ResourceAudit        Resource = "audit"
)

type Action string

const (
	ActionRead    Action = "read"
	ActionCreate  Action = "create"
	ActionApprove Action = "approve"
	ActionDeny    Action = "deny"
	ActionDelete  Action = "delete"
)

type capability struct {
	role     domain.Role
	resource Resource
	action   Action
}

var capabilities = buildTable()

func buildTable() map[capability]bool {
	grants := map[domain.Role][]struct {
		resource Resource
		actions  []Action
	}{
		domain.RoleAdmin: {
			{ResourceWaitlist, []Action{ActionRead}},
			{ResourceRegistrant, []Action{ActionApprove, ActionDeny, ActionDelete}},
			{ResourceDepartment, []Action{ActionCreate, ActionRead, ActionDelete}},
		},
		domain.RoleSuperAdmin: {
			{ResourceWaitlist, []Action{ActionRead}},
			{ResourceRegistrant, []Action{ActionApprove, ActionDeny, ActionDelete}},
			{ResourceAdminAccount, []Action{ActionCreate, ActionApprove, ActionDeny, ActionDelete}},
			{ResourceDepartment, []Action{ActionCreate, ActionRead, ActionDelete}},
			{ResourceAudit, []Action{ActionRead}},
		},
	}

	table := make(map[capability]bool)
	for role, rs := range grants {
		for _, r := range rs {
			for _, a := range r.actions {
				table[capability{role, r.resource, a}] = true
			}
		}
	}
	return table
}

// Can reports whether role may perform action on resource.
func Can(role domain.Role, resource Resource, action Action) bool {
	return capabilities[capability{role, resource, action}]
}

// ResourceForTarget maps a target account's role to the resource guarding
// decisions about it: admin-role records are decidable by superadmin only.
func ResourceForTarget(target domain.Role) Resource {
	if target == domain.RoleAdmin || target == domain.RoleSuperAdmin {
		return ResourceAdminAccount
	}
	return ResourceRegistrant
}

// CanDecide reports whether actor may apply an approve/deny/delete action
// to an account with the given target role.
func CanDecide(actor domain.Role, target domain.Role, action Action) bool {
	return Can(actor, ResourceForTarget(target), action)
}
