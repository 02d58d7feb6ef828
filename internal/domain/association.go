package domain

// EntityType classifies the named entities exploded out of the nested
// genre/company/country/cast/crew fields.
type EntityType string

const (
	EntityGenre    EntityType = "genre"
	EntityCompany  EntityType = "company"
	EntityCountry  EntityType = "country"
	EntityActor    EntityType = "actor"
	EntityDirector EntityType = "director"
)

// EntityTypes lists all association entity types in a stable order.
func EntityTypes() []EntityType {
	return []EntityType{EntityGenre, EntityCompany, EntityCountry, EntityActor, EntityDirector}
}

// Association is one normalized (movie, entity type, entity name) row derived
// from a nested multi-valued field. Every association references a movie ID
// present in the cleaned table.
type Association struct {
	MovieID int64      `json:"movie_id"`
	Type    EntityType `json:"type"`
	Name    string     `json:"name"`
}
