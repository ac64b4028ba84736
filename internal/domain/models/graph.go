package models

// SubmissionNode is one vendor in the relationship graph
type SubmissionNode struct {
	ID         string `json:"id"`
	VendorName string `json:"vendor_name"`
	Type       string `json:"type"` // vendor or related_vendor
	Domain     string `json:"domain,omitempty"`
	SourceIP   string `json:"source_ip,omitempty"`
}

// SubmissionEdge links two vendors that share infrastructure
type SubmissionEdge struct {
	From          string   `json:"from"`
	To            string   `json:"to"`
	Relationships []string `json:"relationships"` // same_ip, same_domain
}

// RelationshipGraph is the fraud-ring graph fragment built during network
// analysis. A side artifact for visualization; it never feeds back into scoring.
type RelationshipGraph struct {
	Nodes []SubmissionNode `json:"nodes"`
	Edges []SubmissionEdge `json:"edges"`
}

// Cypher statements used by the graph repository
const (
	CypherMergeSubmission = `
		MERGE (v:Vendor {id: $id})
		SET v.name = $name,
			v.domain = $domain,
			v.source_ip = $source_ip,
			v.updated_at = timestamp()
		RETURN v.id`

	CypherMergeRelationship = `
		MATCH (a:Vendor {id: $from_id})
		MATCH (b:Vendor {id: $to_id})
		MERGE (a)-[r:SHARES_INFRA]->(b)
		SET r.relationships = $relationships,
			r.updated_at = timestamp()
		RETURN r`
)
