// internal/notify/alerter.go
package notify

import (
	"context"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	sdksns "github.com/aws/aws-sdk-go-v2/service/sns"

	"hiring-coordinator/internal/common/aws"
	"hiring-coordinator/internal/common/logger"
	"hiring-coordinator/internal/models"
)

// Alerter pushes internal recruiter alerts. Alerts are best-effort:
// a failed publish never affects the candidate's run.
type Alerter interface {
	AlertHighPriority(ctx context.Context, candidate models.Candidate)
}

// SNSAlerter publishes highly-recommended candidate alerts to an SNS
// topic the recruiting team subscribes to.
type SNSAlerter struct {
	client   *aws.SNSClient
	topicARN string
	logger   logger.Logger
}

func NewSNSAlerter(client *aws.SNSClient, topicARN string, log logger.Logger) *SNSAlerter {
	return &SNSAlerter{
		client:   client,
		topicARN: topicARN,
		logger:   log.WithFields(map[string]interface{}{"component": "sns-alerter"}),
	}
}

func (a *SNSAlerter) AlertHighPriority(ctx context.Context, candidate models.Candidate) {
	input := &sdksns.PublishInput{
		TopicArn: awssdk.String(a.topicARN),
		Subject:  awssdk.String("Highly recommended candidate"),
		Message:  awssdk.String(RecruiterAlert(candidate)),
	}

	if _, err := a.client.Publish(ctx, input); err != nil {
		a.logger.Warn("recruiter alert publish failed", map[string]interface{}{
			"candidateId": candidate.ID,
			"error":       err,
		})
		return
	}

	a.logger.Info("recruiter alert published", map[string]interface{}{
		"candidateId": candidate.ID,
	})
}

// NopAlerter is used when SNS alerting is disabled.
type NopAlerter struct{}

func (NopAlerter) AlertHighPriority(ctx context.Context, candidate models.Candidate) {}
