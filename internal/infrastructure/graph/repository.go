package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"vendorguard/internal/domain/models"
	"vendorguard/pkg/logger"
)

// GraphRepository persists vendor relationship graphs to Neo4j
type GraphRepository struct {
	client *Neo4jClient
	logger *logger.Logger
}

// NewGraphRepository creates a new graph repository
func NewGraphRepository(client *Neo4jClient, log *logger.Logger) *GraphRepository {
	return &GraphRepository{
		client: client,
		logger: log.WithComponent("graph-repo"),
	}
}

// SaveRelationshipGraph merges the graph fragment produced during network
// analysis into the persistent graph. Nodes first, then edges, in one
// transaction so a partial fragment never lands.
func (r *GraphRepository) SaveRelationshipGraph(ctx context.Context, graph models.RelationshipGraph) error {
	if len(graph.Nodes) == 0 {
		return nil
	}

	_, err := r.client.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		for _, node := range graph.Nodes {
			params := map[string]interface{}{
				"id":        node.ID,
				"name":      node.VendorName,
				"domain":    node.Domain,
				"source_ip": node.SourceIP,
			}
			if _, err := tx.Run(ctx, models.CypherMergeSubmission, params); err != nil {
				return nil, fmt.Errorf("failed to merge vendor node %s: %w", node.ID, err)
			}
		}

		for _, edge := range graph.Edges {
			params := map[string]interface{}{
				"from_id":       edge.From,
				"to_id":         edge.To,
				"relationships": edge.Relationships,
			}
			if _, err := tx.Run(ctx, models.CypherMergeRelationship, params); err != nil {
				return nil, fmt.Errorf("failed to merge relationship %s->%s: %w", edge.From, edge.To, err)
			}
		}

		return nil, nil
	})
	if err != nil {
		return err
	}

	r.logger.Debug().
		Int("nodes", len(graph.Nodes)).
		Int("edges", len(graph.Edges)).
		Msg("relationship graph saved")

	return nil
}

// RelatedVendors returns the vendors directly linked to the given vendor,
// with the relationship kinds on each edge.
func (r *GraphRepository) RelatedVendors(ctx context.Context, vendorID string, limit int) ([]models.SubmissionEdge, error) {
	const query = `
		MATCH (a:Vendor {id: $id})-[r:SHARES_INFRA]-(b:Vendor)
		RETURN a.id as from_id, b.id as to_id, r.relationships as relationships
		LIMIT $limit`

	result, err := r.client.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		res, err := tx.Run(ctx, query, map[string]interface{}{
			"id":    vendorID,
			"limit": limit,
		})
		if err != nil {
			return nil, err
		}

		var edges []models.SubmissionEdge
		for res.Next(ctx) {
			record := res.Record()
			edge := models.SubmissionEdge{}
			if v, ok := record.Get("from_id"); ok {
				edge.From, _ = v.(string)
			}
			if v, ok := record.Get("to_id"); ok {
				edge.To, _ = v.(string)
			}
			if v, ok := record.Get("relationships"); ok {
				if rels, ok := v.([]interface{}); ok {
					for _, rel := range rels {
						if s, ok := rel.(string); ok {
							edge.Relationships = append(edge.Relationships, s)
						}
					}
				}
			}
			edges = append(edges, edge)
		}
		return edges, res.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query related vendors: %w", err)
	}

	edges, _ := result.([]models.SubmissionEdge)
	return edges, nil
}
