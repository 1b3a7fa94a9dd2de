package sns

import (
	"context"
	"encoding/json"
	"log/slog"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/skillshare/api/internal/config"
)

// Publisher fans marketplace events (order transitions, completed
// payments) out to an SNS topic for downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, eventType string, payload any)
}

type publisher struct {
	client   *sns.Client
	topicARN string
}

// NewPublisher returns a no-op publisher when no topic is configured,
// so callers never need a nil check.
func NewPublisher(cfg *config.Config) (Publisher, error) {
	if cfg.SNSTopicARN == "" {
		return noopPublisher{}, nil
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.AWSRegion),
	)
	if err != nil {
		return nil, err
	}
	return &publisher{client: sns.NewFromConfig(awsCfg), topicARN: cfg.SNSTopicARN}, nil
}

// Publish is fire-and-forget: event delivery must never fail the request
// that produced the event.
func (p *publisher) Publish(ctx context.Context, eventType string, payload any) {
	body, err := json.Marshal(map[string]any{
		"type": eventType,
		"data": payload,
	})
	if err != nil {
		slog.Warn("could not marshal event", "type", eventType, "err", err)
		return
	}
	msg := string(body)
	if _, err := p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: &p.topicARN,
		Message:  &msg,
	}); err != nil {
		slog.Warn("could not publish event", "type", eventType, "err", err)
	}
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, string, any) {}
