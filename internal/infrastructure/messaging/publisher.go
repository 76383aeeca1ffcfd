package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/streadway/amqp"
	"github.com/jhoicas/Ventas-api/internal/application/ledger"
	"github.com/jhoicas/Ventas-api/internal/domain/entity"
)

var _ ledger.Notifier = (*EventPublisher)(nil)

// Tipos de evento publicados después del commit.
const (
	EventLowStock          = "stock.low"
	EventSaleCreated       = "sale.created"
	EventReturnProcessed   = "sale.return_processed"
	EventExchangeProcessed = "sale.exchange_processed"
)

// event envoltura común de los eventos del libro (JSON persistente).
type event struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// lowStockPayload cuerpo del evento de stock bajo.
type lowStockPayload struct {
	ProductID    string `json:"product_id"`
	ProductName  string `json:"product_name"`
	BranchID     string `json:"branch_id"`
	CurrentStock string `json:"current_stock"`
	MinStock     string `json:"min_stock"`
	Severity     string `json:"severity"`
}

// salePayload cuerpo de los eventos de venta/devolución/intercambio.
type salePayload struct {
	SaleID         string `json:"sale_id"`
	BranchID       string `json:"branch_id"`
	CustomerID     string `json:"customer_id,omitempty"`
	Status         string `json:"status"`
	TotalAmount    string `json:"total_amount"`
	OriginalSaleID string `json:"original_sale_id,omitempty"`
	CreatedBy      string `json:"created_by"`
}

// EventPublisher implementa ledger.Notifier publicando eventos de dominio en
// RabbitMQ. Se invoca solo después del commit; el caller registra y descarta
// cualquier error (best-effort).
type EventPublisher struct {
	client *RabbitMQClient
}

// NewEventPublisher construye el publicador.
func NewEventPublisher(client *RabbitMQClient) *EventPublisher {
	return &EventPublisher{client: client}
}

// NotifyLowStock publica la alerta de stock bajo (routing key según severidad).
func (p *EventPublisher) NotifyLowStock(_ context.Context, alert ledger.LowStockAlert) error {
	payload, err := json.Marshal(lowStockPayload{
		ProductID:    alert.ProductID,
		ProductName:  alert.ProductName,
		BranchID:     alert.BranchID,
		CurrentStock: alert.CurrentStock.String(),
		MinStock:     alert.MinStock.String(),
		Severity:     alert.Severity,
	})
	if err != nil {
		return fmt.Errorf("serializar alerta: %w", err)
	}
	routingKey := fmt.Sprintf("%s.%s", EventLowStock, alert.Severity)
	return p.publish(EventLowStock, routingKey, payload)
}

// NotifySaleCreated publica el evento de venta creada.
func (p *EventPublisher) NotifySaleCreated(_ context.Context, sale *entity.Sale) error {
	return p.publishSaleEvent(EventSaleCreated, sale)
}

// NotifyReturnProcessed publica el evento de devolución procesada.
func (p *EventPublisher) NotifyReturnProcessed(_ context.Context, sale *entity.Sale) error {
	return p.publishSaleEvent(EventReturnProcessed, sale)
}

// NotifyExchangeProcessed publica el evento de intercambio procesado.
func (p *EventPublisher) NotifyExchangeProcessed(_ context.Context, sale *entity.Sale) error {
	return p.publishSaleEvent(EventExchangeProcessed, sale)
}

func (p *EventPublisher) publishSaleEvent(eventType string, sale *entity.Sale) error {
	payload, err := json.Marshal(salePayload{
		SaleID:         sale.ID,
		BranchID:       sale.BranchID,
		CustomerID:     sale.CustomerID,
		Status:         sale.Status,
		TotalAmount:    sale.TotalAmount.String(),
		OriginalSaleID: sale.OriginalSaleID,
		CreatedBy:      sale.CreatedBy,
	})
	if err != nil {
		return fmt.Errorf("serializar evento de venta: %w", err)
	}
	return p.publish(eventType, eventType, payload)
}

func (p *EventPublisher) publish(eventType, routingKey string, payload []byte) error {
	if !p.client.IsConnected() {
		return fmt.Errorf("sin conexión a RabbitMQ")
	}
	ev := event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now(),
		Payload:   payload,
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("serializar evento: %w", err)
	}
	err = p.client.Channel().Publish(
		p.client.Exchange(),
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			MessageId:    ev.ID,
			Timestamp:    ev.Timestamp,
			Headers: amqp.Table{
				"event_type": eventType,
			},
		},
	)
	if err != nil {
		return fmt.Errorf("publicar evento: %w", err)
	}
	return nil
}
