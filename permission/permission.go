package permission

// Permission is one atomic capability of the platform. The enumeration is
// closed: bit positions are part of the public contract and never reused.
type Permission int

const (
	ClientView Permission = iota
	ClientEdit
	ClientDelete
	ClientCreate
	AdminView
	AdminEdit
	AdminDelete
	AdminCreate

	permissionCount
)

var permissionNames = [permissionCount]string{
	"client.view",
	"client.edit",
	"client.delete",
	"client.create",
	"admin.view",
	"admin.edit",
	"admin.delete",
	"admin.create",
}

// Valid reports whether p is one of the enumerated permissions.
func (p Permission) Valid() bool {
	return p >= 0 && p < permissionCount
}

func (p Permission) String() string {
	if !p.Valid() {
		return "permission(invalid)"
	}
	return permissionNames[p]
}

// Mask64 is a permission set as a 64-bit field, indexed by Permission.
type Mask64 uint64

// Has reports set membership.
func (m Mask64) Has(p Permission) bool {
	if !p.Valid() {
		return false
	}
	return m&(1<<uint(p)) != 0
}

// With returns a copy of the mask with p set.
func (m Mask64) With(p Permission) Mask64 {
	if !p.Valid() {
		return m
	}
	return m | (1 << uint(p))
}

// Union returns the combined set.
func (m Mask64) Union(other Mask64) Mask64 {
	return m | other
}

// MaskOf builds a mask from individual permissions.
func MaskOf(perms ...Permission) Mask64 {
	var m Mask64
	for _, p := range perms {
		m = m.With(p)
	}
	return m
}

// Requirement is the capability a protected operation declares in its
// metadata. Operations carry one Requirement value; a single generic gate
// (Engine.Require) checks it before execution.
type Requirement struct {
	Perm Permission
}

// Needs constructs the Requirement for a permission.
func Needs(p Permission) Requirement {
	return Requirement{Perm: p}
}
