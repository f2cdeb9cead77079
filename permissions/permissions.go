package permissions

import (
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/casbin/gorm-adapter/v2"
	"github.com/gazebo-web/gz-go/v7"
	"github.com/jinzhu/gorm"
	"github.com/pkg/errors"
)

// Action - type int
type Action int

// Role - type int
type Role int

// A list of actions that can be performed
const (
	// Read-only
	Read Action = iota
	// Write
	Write
)

// Corresponding string value for an Action
var actionStr = []string{"read", "write"}

// String function will return the english name of the Action
func (a Action) String() string {
	return actionStr[a]
}

// ActionFrom returns the Action value corresponding to the given string. It will
// return -1 if not found.
func ActionFrom(str string) Action {
	if actionStr[0] == str {
		return Read
	} else if actionStr[1] == str {
		return Write
	}
	return -1
}

// A list of roles
const (
	// System admin role
	SystemAdmin Role = iota
	// Moderator role. Moderators can edit and remove any community content.
	Moderator
)

// Corresponding string value for a Role
var roleStr = []string{"sysadmin", "moderator"}

// String function will return the english name of the Role
func (r Role) String() string {
	return roleStr[r]
}

// RoleFrom returns the Role value corresponding to the given string.
func RoleFrom(str string) (Role, *gz.ErrMsg) {
	for i, s := range roleStr {
		if s == str {
			return Role(i), nil
		}
	}
	return -1, gz.NewErrorMessageWithArgs(gz.ErrorNameNotFound, nil, []string{"role:", str})
}

const (
	// PolicyUser is the index of 'user' in a casbin policy tuple
	PolicyUser = iota
	// PolicyResource is the index of 'resource' in a casbin policy tuple
	PolicyResource
	// PolicyAction is the index of 'action' in a casbin policy tuple
	PolicyAction
)

// policyModel is the casbin RBAC model: subjects can inherit permissions
// from roles, and resources are matched by exact name.
const policyModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
`

// Permissions manages permissions for users, roles and resources.
type Permissions struct {
	enforcer *casbin.Enforcer
	// persisted is false for enforcers without an adapter
	persisted bool
}

// New creates Permissions persisted in the given database connection.
// sysAdmins is a comma separated list of usernames.
func New(db *gorm.DB, sysAdmins string) (*Permissions, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create casbin adapter")
	}
	m, err := model.NewModelFromString(policyModel)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse casbin model")
	}
	enforcer, err := casbin.NewEnforcer(m, adapter)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create casbin enforcer")
	}
	return newPermissions(enforcer, true, sysAdmins)
}

// NewInMemory creates Permissions that are not persisted. Used by tools and
// tests.
func NewInMemory(sysAdmins string) (*Permissions, error) {
	m, err := model.NewModelFromString(policyModel)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse casbin model")
	}
	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create casbin enforcer")
	}
	return newPermissions(enforcer, false, sysAdmins)
}

func newPermissions(e *casbin.Enforcer, persisted bool, sysAdmins string) (*Permissions, error) {
	p := &Permissions{enforcer: e, persisted: persisted}
	if err := p.Reload(sysAdmins); err != nil {
		return nil, err
	}
	return p, nil
}

// Reload reloads all casbin data
// sysAdmin argument can contain a list of usernames separated by comma.
func (p *Permissions) Reload(sysAdmin string) error {
	// Load the policy from DB.
	if p.persisted {
		if err := p.enforcer.LoadPolicy(); err != nil {
			return errors.Wrap(err, "failed to load casbin policy")
		}
	}
	p.setSystemAdmin(sysAdmin)
	return nil
}

// setSystemAdmin configures the system admin(s).
// sysAdmin argument can contain a list of usernames separated by comma.
func (p *Permissions) setSystemAdmin(sysAdmin string) {
	saRole := SystemAdmin.String()
	p.enforcer.DeleteRole(saRole)
	if sysAdmin != "" {
		for _, u := range gz.StrToSlice(sysAdmin) {
			p.AddRoleForUser(u, saRole)
		}
	}
}

// IsSystemAdmin returns a bool indicating if the given user is a system admin.
func (p *Permissions) IsSystemAdmin(user string) bool {
	result, _ := p.enforcer.HasRoleForUser(user, SystemAdmin.String())
	return result
}

// IsModerator returns true if the given user is a moderator or a system admin.
func (p *Permissions) IsModerator(user string) bool {
	if p.IsSystemAdmin(user) {
		return true
	}
	result, _ := p.enforcer.HasRoleForUser(user, Moderator.String())
	return result
}

// IsAuthorized checks if user has the permission to perform an action on a
// resource
func (p *Permissions) IsAuthorized(user, resource string, action Action) (bool, *gz.ErrMsg) {
	if p.IsModerator(user) {
		return true, nil
	}

	valid, err := p.enforcer.Enforce(user, resource, action.String())
	if err != nil {
		return false, gz.NewErrorMessageWithBase(gz.ErrorUnexpected, err)
	}
	if !valid {
		return false, gz.NewErrorMessage(gz.ErrorUnauthorized)
	}
	return true, nil
}

// CanWrite returns true if the user has write access to the resource. Unlike
// IsAuthorized, a denied access is not an error: the returned ErrMsg is only
// set when the permissions could not be checked.
func (p *Permissions) CanWrite(user, resource string) (bool, *gz.ErrMsg) {
	ok, em := p.IsAuthorized(user, resource, Write)
	if em != nil && em.ErrCode != gz.ErrorUnauthorized {
		return false, em
	}
	return ok, nil
}

// AddPermission adds a user (or group) permission on a resource
func (p *Permissions) AddPermission(user, resource string, action Action) (bool, *gz.ErrMsg) {
	valid, err := p.enforcer.AddPermissionForUser(user, resource, action.String())
	if !valid || err != nil {
		return false, gz.NewErrorMessage(gz.ErrorUnexpected)
	}
	return true, nil
}

// RemovePermission removes a user (or group) permission on a resource
func (p *Permissions) RemovePermission(user, resource string, action Action) (bool, *gz.ErrMsg) {
	valid, err := p.enforcer.DeletePermissionForUser(user, resource, action.String())
	if !valid || err != nil {
		return false, gz.NewErrorMessage(gz.ErrorUnexpected)
	}
	return true, nil
}

// RemoveResource removes a resource and all policies involving the resource
func (p *Permissions) RemoveResource(resource string) (bool, *gz.ErrMsg) {
	// policy is formatted in casbin as (user, resource, action)
	valid, err := p.enforcer.RemoveFilteredPolicy(PolicyResource, resource)
	if !valid || err != nil {
		return false, gz.NewErrorMessage(gz.ErrorUnexpected)
	}
	return true, nil
}

// HasRoleForUser checks and see if a user has the specified role
func (p *Permissions) HasRoleForUser(user, role string) bool {
	result, _ := p.enforcer.HasRoleForUser(user, role)
	return result
}

// AddRoleForUser adds a role for a user
func (p *Permissions) AddRoleForUser(user, role string) (bool, *gz.ErrMsg) {
	if p.HasRoleForUser(user, role) {
		extra := fmt.Sprintf("Role [%s] exist for user [%s]", role, user)
		return false, gz.NewErrorMessageWithArgs(gz.ErrorResourceExists, nil, []string{extra})
	}

	added, _ := p.enforcer.AddRoleForUser(user, role)
	if !added {
		extra := fmt.Sprintf("Could not add role [%s] for user [%s]", role, user)
		return false, gz.NewErrorMessageWithArgs(gz.ErrorUnexpected, nil, []string{extra})
	}
	return true, nil
}

// RemoveRoleForUser removes a role from a user
func (p *Permissions) RemoveRoleForUser(user, role string) (bool, *gz.ErrMsg) {
	valid, err := p.enforcer.DeleteRoleForUser(user, role)
	if !valid || err != nil {
		return false, gz.NewErrorMessage(gz.ErrorUnexpected)
	}
	return true, nil
}

// RemoveUser removes all policies involving the user
func (p *Permissions) RemoveUser(user string) (bool, *gz.ErrMsg) {
	// remove user roles
	p.enforcer.DeleteUser(user)
	// remove user resource permissions
	p.enforcer.DeletePermissionsForUser(user)
	// the return results are not used as they don't necessarily mean
	// removal failed. A false value may just mean that the user has no
	// permissions or roles
	return true, nil
}

// DBTable returns the DB table used by casbin
func (p *Permissions) DBTable() *gormadapter.CasbinRule {
	return &gormadapter.CasbinRule{}
}
