package notify

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"

	"fundhub/internal/domain"
)

// CodeEvent is the payload published to the mail topic; a separate mail
// worker renders and sends the actual email.
type CodeEvent struct {
	Email    string    `json:"email"`
	FullName string    `json:"full_name"`
	Role     string    `json:"role"`
	Code     string    `json:"code"`
	Purpose  string    `json:"purpose"`
	IssuedAt time.Time `json:"issued_at"`
}

// KafkaSender publishes verification codes as events instead of sending
// mail itself.
type KafkaSender struct {
	writer *kafka.Writer
}

// NewKafkaSender connects to a single broker. Username/password enable
// SASL/PLAIN over TLS; leave them empty for a local plaintext broker.
func NewKafkaSender(broker, topic, username, password string) *KafkaSender {
	w := &kafka.Writer{
		Addr:         kafka.TCP(broker),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
		WriteTimeout: 10 * time.Second,
	}
	if username != "" {
		w.Transport = &kafka.Transport{
			SASL: plain.Mechanism{Username: username, Password: password},
			TLS:  &tls.Config{},
		}
	}
	return &KafkaSender{writer: w}
}

func (s *KafkaSender) SendCode(ctx context.Context, email, code, fullName string, role domain.Role, purpose Purpose) error {
	value, err := json.Marshal(CodeEvent{
		Email:    email,
		FullName: fullName,
		Role:     string(role),
		Code:     code,
		Purpose:  string(purpose),
		IssuedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal code event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(email),
		Value: value,
	}); err != nil {
		return fmt.Errorf("publish code event: %w", err)
	}
	return nil
}

func (s *KafkaSender) Close() error {
	return s.writer.Close()
}
