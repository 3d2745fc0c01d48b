// internal/common/aws/sns.go
package aws

import (
	"context"
	"encoding/json"
	"time"

	apperrors "loan-risk-workers/internal/common/errors"
	"loan-risk-workers/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

const DecisionEventType = "loan.application.assessed"

// Publisher is the subset of *sns.Client the decision publisher needs.
type Publisher interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// DecisionEvent is published once an application has a risk profile.
type DecisionEvent struct {
	EventType              string                `json:"eventType"`
	ApplicationID          string                `json:"applicationId"`
	ApplicantID            string                `json:"applicantId"`
	OverallRisk            models.RiskTier       `json:"overallRisk"`
	RiskScore              int                   `json:"riskScore"`
	ApprovalRecommendation models.Recommendation `json:"approvalRecommendation"`
	Conditions             []string              `json:"conditions"`
	OccurredAt             time.Time             `json:"occurredAt"`
}

// NewDecisionEvent builds the event for an assessed record. It returns nil when the
// record has no risk profile.
func NewDecisionEvent(record *models.ApplicationRecord, profile *models.RiskProfile, now time.Time) *DecisionEvent {
	if record == nil || profile == nil {
		return nil
	}
	conditions := profile.Conditions
	if conditions == nil {
		conditions = []string{}
	}
	return &DecisionEvent{
		EventType:              DecisionEventType,
		ApplicationID:          record.ID,
		ApplicantID:            record.ApplicantID,
		OverallRisk:            profile.OverallRisk,
		RiskScore:              profile.Score,
		ApprovalRecommendation: profile.ApprovalRecommendation,
		Conditions:             conditions,
		OccurredAt:             now.UTC(),
	}
}

// DecisionPublisher sends decision events to an SNS topic. A publisher without a
// topic is disabled and Publish is a no-op.
type DecisionPublisher struct {
	client   Publisher
	topicARN string
}

func NewDecisionPublisher(client Publisher, topicARN string) *DecisionPublisher {
	return &DecisionPublisher{client: client, topicARN: topicARN}
}

// NewSNSClient builds an SNS client for region.
func NewSNSClient(ctx context.Context, region string) (*sns.Client, error) {
	cfg, err := LoadConfig(ctx, region)
	if err != nil {
		return nil, err
	}
	return sns.NewFromConfig(cfg), nil
}

func (p *DecisionPublisher) Enabled() bool {
	return p != nil && p.client != nil && p.topicARN != ""
}

// Publish returns the SNS message ID, or "" when the publisher is disabled.
func (p *DecisionPublisher) Publish(ctx context.Context, event *DecisionEvent) (string, error) {
	if !p.Enabled() || event == nil {
		return "", nil
	}

	body, err := json.Marshal(event)
	if err != nil {
		return "", apperrors.NewDecisionPublishFailedError(err)
	}

	out, err := p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Message:  aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"eventType": {
				DataType:    aws.String("String"),
				StringValue: aws.String(event.EventType),
			},
			"approvalRecommendation": {
				DataType:    aws.String("String"),
				StringValue: aws.String(string(event.ApprovalRecommendation)),
			},
		},
	})
	if err != nil {
		return "", apperrors.NewDecisionPublishFailedError(err)
	}
	return aws.ToString(out.MessageId), nil
}
