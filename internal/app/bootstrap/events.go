package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/wolfman30/clinic-booking/cmd/mainconfig"
	appconfig "github.com/wolfman30/clinic-booking/internal/config"
	"github.com/wolfman30/clinic-booking/internal/events"
	"github.com/wolfman30/clinic-booking/pkg/logging"
)

// BuildEventDeliverer wires outbox delivery to SQS. It returns nil when no
// queue is configured or the outbox is disabled.
func BuildEventDeliverer(ctx context.Context, cfg *appconfig.Config, outbox events.Outbox, logger *logging.Logger) (*events.Deliverer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	queueURL := strings.TrimSpace(cfg.BookingEventsQueueURL)
	if queueURL == "" || outbox == nil {
		return nil, nil
	}
	if logger == nil {
		logger = logging.Default()
	}

	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: load aws config: %w", err)
	}
	publisher := events.NewSQSPublisher(sqs.NewFromConfig(awsCfg), queueURL)

	deliverer := events.NewDeliverer(outbox, publisher, logger).WithInterval(cfg.OutboxPollInterval)
	logger.Info("booking events enabled", "queue_url", queueURL)
	return deliverer, nil
}
