package models

// EntityType classifies an entity extracted from submission text
type EntityType string

const (
	EntityTypePerson       EntityType = "PERSON"
	EntityTypeOrganization EntityType = "ORGANIZATION"
	EntityTypeLocation     EntityType = "LOCATION"
	EntityTypeDate         EntityType = "DATE"
	EntityTypeMoney        EntityType = "QUANTITY"
)

// ExtractedEntity is a named entity pulled from text by regex/dictionary extraction
type ExtractedEntity struct {
	Text  string     `json:"text"`
	Type  EntityType `json:"type"`
	Score float64    `json:"score"`
}

// WatchlistMatch records a hit against a sanctions or PEP list
type WatchlistMatch struct {
	Type        string `json:"type"` // SANCTIONS or PEP
	MatchedText string `json:"matched_text"`
	List        string `json:"list"`
	Severity    string `json:"severity"`
}
