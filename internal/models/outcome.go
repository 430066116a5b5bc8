package models

// Outcome is the result of a mutation addressed by id or unique key.
type Outcome int

const (
	NotFound Outcome = iota
	Updated
	Deleted
)

func (o Outcome) String() string {
	switch o {
	case Updated:
		return "updated"
	case Deleted:
		return "deleted"
	}
	return "not_found"
}
