package entities

// ID identifies an entity within the registry that owns it. Registries hand
// out ids starting at 1, so the zero value never names a live entity.
type ID uint64

// Entity is embedded in domain structs to carry the identity assigned by the
// owning registry.
type Entity struct {
	ID ID `json:"id" yaml:"-"`
}

func (e Entity) Identity() ID { return e.ID }

func (e *Entity) AssignIdentity(id ID) { e.ID = id }

// Identifiable is satisfied by a pointer to any struct embedding Entity.
type Identifiable interface {
	Identity() ID
	AssignIdentity(id ID)
}

// Fielder exposes the named attributes of a record so generic code can read
// and write them without knowing the concrete type.
//
// SetField must leave the record untouched when it returns an error.
type Fielder interface {
	Field(name string) (any, bool)
	SetField(name string, value any) error
}

// Validator is optionally implemented by records that have required
// attributes.
type Validator interface {
	Validate() error
}
