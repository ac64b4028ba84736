package streaming

import (
	"context"

	"vendorguard/internal/domain/models"
)

// DecisionPublisherAdapter adapts the NATS publisher to the decision
// publisher interface the assessment service consumes.
type DecisionPublisherAdapter struct {
	publisher *NATSPublisher
}

// NewDecisionPublisherAdapter wraps a NATS publisher
func NewDecisionPublisherAdapter(publisher *NATSPublisher) *DecisionPublisherAdapter {
	return &DecisionPublisherAdapter{publisher: publisher}
}

// PublishDecision converts the decision to its event form and publishes it
func (a *DecisionPublisherAdapter) PublishDecision(ctx context.Context, decision *models.RiskDecision) error {
	return a.publisher.PublishDecision(ctx, NewDecisionEvent(decision))
}
