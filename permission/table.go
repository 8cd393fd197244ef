package permission

// Table maps role names to permission sets. It is constructed once at
// process start and never mutated afterwards; the resolver and every
// request share it by reference without locking.
type Table struct {
	roles map[string]Mask64
}

// NewTable copies the role definitions into an immutable Table. Unknown
// permissions cannot occur here because the enumeration is closed; callers
// define roles directly in terms of Permission values.
func NewTable(roles map[string][]Permission) *Table {
	t := &Table{roles: make(map[string]Mask64, len(roles))}
	for name, perms := range roles {
		t.roles[name] = MaskOf(perms...)
	}
	return t
}

// DefaultTable is the platform's static role table: the admin set is a
// strict superset of the client set.
func DefaultTable() *Table {
	return NewTable(map[string][]Permission{
		"client": {
			ClientView,
			ClientEdit,
			ClientDelete,
			ClientCreate,
		},
		"admin": {
			ClientView,
			ClientEdit,
			ClientDelete,
			ClientCreate,
			AdminView,
			AdminEdit,
			AdminDelete,
			AdminCreate,
		},
	})
}

// MaskFor returns the permission set granted by a single role. Unknown
// roles grant nothing.
func (t *Table) MaskFor(role string) Mask64 {
	if t == nil {
		return 0
	}
	return t.roles[role]
}

// Resolve unions the permission sets of all assigned roles.
func (t *Table) Resolve(roles []string) Mask64 {
	var m Mask64
	for _, role := range roles {
		m = m.Union(t.MaskFor(role))
	}
	return m
}

// Grants reports whether any of the roles carries p.
func (t *Table) Grants(roles []string, p Permission) bool {
	return t.Resolve(roles).Has(p)
}
