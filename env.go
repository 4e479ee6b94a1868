package sqlmagic

// Env is a variable environment. Lookup returns the value bound to name and
// whether it was found. The engine never modifies an environment.
type Env interface {
	Lookup(name string) (any, bool)
}

// M is an Env backed by a map.
//
// Example:
//
//	res, err := engine.Run(ctx, "SELECT * FROM EMPLOYEE WHERE EMPNO = :empno", sqlmagic.M{"empno": "000010"})
type M map[string]any

// Lookup implements Env.
func (m M) Lookup(name string) (any, bool) {
	v, ok := m[name]
	return v, ok
}

// Var is a single binding of a Vars environment.
type Var struct {
	Name  string
	Value any
}

// Vars is an ordered Env. When a name is bound more than once the first
// binding wins.
type Vars []Var

// Lookup implements Env.
func (vs Vars) Lookup(name string) (any, bool) {
	for _, v := range vs {
		if v.Name == name {
			return v.Value, true
		}
	}
	return nil, false
}

// Set returns vs with name bound to value, replacing the first existing
// binding of name or appending a new one.
func (vs Vars) Set(name string, value any) Vars {
	for i, v := range vs {
		if v.Name == name {
			vs[i].Value = value
			return vs
		}
	}
	return append(vs, Var{Name: name, Value: value})
}

// Unset returns vs without any binding of name.
func (vs Vars) Unset(name string) Vars {
	out := vs[:0]
	for _, v := range vs {
		if v.Name != name {
			out = append(out, v)
		}
	}
	return out
}
