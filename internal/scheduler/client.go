package scheduler

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"

	"intake_backend/internal/crm"
	"intake_backend/platform/config"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// Client enqueues CRM deliveries for the scheduler worker.
type Client struct {
	client *asynq.Client
	queue  string
}

var _ crm.Dispatcher = (*Client)(nil)

func NewClient(cfg config.SchedulerConfig) (*Client, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	return &Client{
		client: asynq.NewClient(opt),
		queue:  queueName(cfg),
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// Dispatch enqueues d. The returned result is Queued on success; the final
// outcome is reported by the worker.
func (c *Client) Dispatch(ctx context.Context, d crm.Delivery) crm.Result {
	res := crm.Result{Target: d.Target, Outcome: crm.Queued}
	if c == nil || c.client == nil {
		res.Outcome, res.Err = crm.Skipped, crm.ErrNotConfigured
		return res
	}

	body, err := json.Marshal(d.Payload)
	if err != nil {
		res.Outcome, res.Err = crm.Failed, fmt.Errorf("marshal webhook payload: %w", err)
		return res
	}
	if len(body) > crm.MaxPayloadBytes {
		res.Outcome, res.Err = crm.Failed, crm.ErrPayloadTooLarge
		return res
	}

	task, err := NewCRMDeliveryTask(CRMDeliveryPayload{
		SubmissionID: d.SubmissionID.String(),
		Target:       d.Target,
		Tier:         d.Tier,
		Body:         body,
	})
	if err != nil {
		res.Outcome, res.Err = crm.Failed, err
		return res
	}

	if _, err := c.client.EnqueueContext(ctx, task, asynq.Queue(c.queue)); err != nil {
		res.Outcome, res.Err = crm.Failed, fmt.Errorf("enqueue crm delivery: %w", err)
	}
	return res
}

func queueName(cfg config.SchedulerConfig) string {
	if queue := cfg.GetAsynqQueueName(); queue != "" {
		return queue
	}
	return "default"
}

func redisClientOpt(redisURL string, tlsInsecure bool) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	var tlsConfig *tls.Config
	if opt.TLSConfig != nil {
		clone := opt.TLSConfig.Clone()
		if tlsInsecure {
			clone.InsecureSkipVerify = true
		}
		tlsConfig = clone
	} else if tlsInsecure {
		tlsConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: tlsConfig,
	}, nil
}
