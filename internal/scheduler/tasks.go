package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskCRMDelivery = "crm.deliver"

type CRMDeliveryPayload struct {
	SubmissionID string          `json:"submissionId"`
	Target       string          `json:"target"`
	Tier         string          `json:"tier,omitempty"`
	Body         json.RawMessage `json:"body"`
}

func NewCRMDeliveryTask(payload CRMDeliveryPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	// At most once: a lead must never reach the CRM twice.
	return asynq.NewTask(TaskCRMDelivery, data, asynq.MaxRetry(0)), nil
}

func ParseCRMDeliveryPayload(task *asynq.Task) (CRMDeliveryPayload, error) {
	var payload CRMDeliveryPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return CRMDeliveryPayload{}, err
	}
	return payload, nil
}
