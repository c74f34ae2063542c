package audit

import (
	"context"
	"sync"
	"time"

	"praxis-service/internal/app/contracts"
	"praxis-service/internal/app/models"
	"praxis-service/internal/pkg/constvars"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// AuditQueueName is the durable queue receiving every audit record.
const AuditQueueName = "scheduling_audit_queue"

// Service publishes audit records to RabbitMQ. The sink is write-only and
// best-effort: Record never returns an error to the caller, it only logs.
type Service struct {
	ch  *amqp.Channel
	log *zap.Logger
	mu  sync.Mutex
}

// NewService opens a channel, declares the durable audit queue, and enables
// publisher confirms.
func NewService(conn *amqp.Connection, log *zap.Logger) (contracts.AuditService, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}

	_, err = ch.QueueDeclare(
		AuditQueueName, // name
		true,           // durable
		false,          // autoDelete
		false,          // exclusive
		false,          // noWait
		nil,            // args
	)
	if err != nil {
		return nil, err
	}

	if err := ch.Confirm(false); err != nil {
		return nil, err
	}

	return &Service{ch: ch, log: log}, nil
}

func (s *Service) Record(ctx context.Context, record models.AuditRecord) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	body, err := json.Marshal(record)
	if err != nil {
		s.log.Error("auditService.Record error marshalling record",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingAuditActionKey, record.Action),
			zap.Error(err),
		)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err = s.ch.PublishWithContext(ctx,
		"",             // exchange
		AuditQueueName, // routing key
		false,          // mandatory
		false,          // immediate
		amqp.Publishing{
			ContentType:  constvars.MIMEApplicationJSON,
			DeliveryMode: amqp.Persistent,
			MessageId:    record.ID,
			Timestamp:    record.CreatedAt,
			Body:         body,
		},
	)
	if err != nil {
		s.log.Error("auditService.Record error publishing record",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingAuditActionKey, record.Action),
			zap.Error(err),
		)
		return
	}

	s.log.Info("auditService.Record published",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingAuditActionKey, record.Action),
	)
}
