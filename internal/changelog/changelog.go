package changelog

import "time"

// Action describes what was done to an entity.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// EntityType identifies the kind of entity an entry refers to.
type EntityType string

const (
	EntityCompany  EntityType = "company"
	EntityRole     EntityType = "role"
	EntityArtifact EntityType = "artifact"
	EntitySession  EntityType = "session"
)

// MaxEntriesPerEntity caps how many entries are retained per
// (entity_type, entity_id); the oldest are pruned on each insert.
const MaxEntriesPerEntity = 50

// Entry is a single audit trail record.
type Entry struct {
	ID         string     `json:"id"`
	CompanyID  string     `json:"company_id"`
	EntityType EntityType `json:"entity_type"`
	EntityID   string     `json:"entity_id"`
	Action     Action     `json:"action"`
	Diff       string     `json:"diff"`
	ActorID    string     `json:"actor_id"`
	CreatedAt  time.Time  `json:"created_at"`
}
