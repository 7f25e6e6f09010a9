package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"featstack/internal/platform/kafka/producer"
)

// MessageProducer is the slice of the Kafka producer this package needs.
type MessageProducer interface {
	Produce(ctx context.Context, msg *producer.Message) error
}

// KafkaSender publishes reset notifications to a Kafka topic for an email
// worker to consume. The message key is the recipient address so retries
// for one user stay ordered.
type KafkaSender struct {
	producer    MessageProducer
	topic       string
	frontendURL string
}

func NewKafkaSender(p MessageProducer, topic, frontendURL string) *KafkaSender {
	return &KafkaSender{
		producer:    p,
		topic:       topic,
		frontendURL: frontendURL,
	}
}

func (s *KafkaSender) SendResetPasswordEmail(ctx context.Context, email, token string) error {
	payload, err := json.Marshal(ResetPasswordMessage{
		Type:     typeResetPassword,
		Email:    email,
		Token:    token,
		ResetURL: resetURL(s.frontendURL, token),
	})
	if err != nil {
		return fmt.Errorf("marshal reset password message: %w", err)
	}

	msg := &producer.Message{
		Topic: s.topic,
		Key:   []byte(email),
		Value: payload,
		Headers: map[string]string{
			"type": typeResetPassword,
		},
	}
	if err := s.producer.Produce(ctx, msg); err != nil {
		return fmt.Errorf("publish reset password message: %w", err)
	}
	return nil
}
