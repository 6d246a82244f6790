package status

// Role is a closed enumeration of the staff roles that gate approval steps.
// Roles compare structurally; free-form role strings from external systems
// must be parsed through ParseRole before use.
type Role string

const (
	RoleRadiopharmacist        Role = "RADIOPHARMACIST"
	RoleQCOfficer              Role = "QC_OFFICER"
	RoleProductionManager      Role = "PRODUCTION_MANAGER"
	RoleRadiationSafetyOfficer Role = "RADIATION_SAFETY_OFFICER"
	RolePhysician              Role = "PHYSICIAN"
	RoleDispatcher             Role = "DISPATCHER"
	RoleAdmin                  Role = "ADMIN"
)

var validRoles = map[Role]bool{
	RoleRadiopharmacist:        true,
	RoleQCOfficer:              true,
	RoleProductionManager:      true,
	RoleRadiationSafetyOfficer: true,
	RolePhysician:              true,
	RoleDispatcher:             true,
	RoleAdmin:                  true,
}

// IsValid returns true if the role is part of the closed role set.
func (r Role) IsValid() bool {
	return validRoles[r]
}

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// ParseRole converts an external role string into a Role, reporting whether
// the string names a known role.
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	return r, r.IsValid()
}
