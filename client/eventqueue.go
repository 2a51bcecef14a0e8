package client

import (
	"context"
	"encoding/json"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/sqs"

	"github.com/elsevier-core-engineering/emrscale/autoscaler/structs"
)

const (
	eventQueueMaxMessages     = 10
	eventQueueVisibilityTimeoutSeconds = 30
	eventQueueWaitSeconds     = 2
)

type eventDetail struct {
	ClusterID string `json:"clusterId"`
	State     string `json:"state"`
	Message   string `json:"message"`
}

type eventEnvelope struct {
	DetailType string      `json:"detail-type"`
	Time       time.Time   `json:"time"`
	Source     string      `json:"source"`
	Detail     eventDetail `json:"detail"`
}

// EventQueue drains cluster-lifecycle events from an SQS queue (spec §6).
type EventQueue struct {
	svc *sqs.SQS
}

// NewEventQueue creates a new SQS client for the given region, mirroring
// EMRClient's session construction.
func NewEventQueue(region string) *EventQueue {
	sess := session.Must(session.NewSession())
	return &EventQueue{svc: sqs.New(sess, &aws.Config{Region: aws.String(region)})}
}

// Drain receives up to one batch of messages from the named queue,
// decodes each into a QueueEvent, and deletes the message once the
// caller's persist callback succeeds (spec §4.7 step 3).
func (q *EventQueue) Drain(ctx context.Context, queueName string, persist func(structs.QueueEvent) error) error {
	urlOut, err := q.svc.GetQueueUrlWithContext(ctx, &sqs.GetQueueUrlInput{QueueName: aws.String(queueName)})
	if err != nil {
		return err
	}
	queueURL := urlOut.QueueUrl

	out, err := q.svc.ReceiveMessageWithContext(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            queueURL,
		MaxNumberOfMessages: aws.Int64(eventQueueMaxMessages),
		VisibilityTimeout:   aws.Int64(eventQueueVisibilityTimeoutSeconds),
		WaitTimeSeconds:     aws.Int64(eventQueueWaitSeconds),
	})
	if err != nil {
		return err
	}

	for _, m := range out.Messages {
		body := aws.StringValue(m.Body)

		var envelope eventEnvelope
		if err := json.Unmarshal([]byte(body), &envelope); err != nil {
			continue
		}

		event := structs.QueueEvent{
			ClusterID:  envelope.Detail.ClusterID,
			DetailType: envelope.DetailType,
			Source:     envelope.Source,
			State:      envelope.Detail.State,
			Message:    envelope.Detail.Message,
			EventTime:  envelope.Time,
			CreateTime: time.Now().UTC(),
			RawMessage: []byte(body),
		}

		if err := persist(event); err != nil {
			continue
		}

		_, _ = q.svc.DeleteMessageWithContext(ctx, &sqs.DeleteMessageInput{
			QueueUrl:      queueURL,
			ReceiptHandle: m.ReceiptHandle,
		})
	}

	return nil
}
