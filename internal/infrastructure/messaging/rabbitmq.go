package messaging

import (
	"fmt"
	"sync"
	"time"

	"github.com/streadway/amqp"
	"github.com/jhoicas/Ventas-api/pkg/logger"
)

// RabbitMQConfig conexión y exchange para los eventos del libro de stock.
type RabbitMQConfig struct {
	Host       string
	Port       int
	User       string
	Password   string
	Exchange   string
	RetryCount int
	RetryDelay time.Duration
}

// ConnectionURL arma la URL AMQP.
func (c RabbitMQConfig) ConnectionURL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%d/", c.User, c.Password, c.Host, c.Port)
}

// RabbitMQClient mantiene la conexión y el canal, con reconexión ante caídas.
type RabbitMQClient struct {
	config     RabbitMQConfig
	connection *amqp.Connection
	channel    *amqp.Channel
	mu         sync.RWMutex
	isClosing  bool
	log        *logger.Logger
}

// NewRabbitMQClient construye el cliente (sin conectar todavía).
func NewRabbitMQClient(config RabbitMQConfig, log *logger.Logger) *RabbitMQClient {
	if config.RetryCount == 0 {
		config.RetryCount = 5
	}
	if config.RetryDelay == 0 {
		config.RetryDelay = 2 * time.Second
	}
	return &RabbitMQClient{config: config, log: log}
}

// Connect abre conexión y canal, declara el exchange (topic, durable) y
// reintenta de forma acotada. Ante caída de conexión intenta reconectar.
func (r *RabbitMQClient) Connect() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var err error
	for i := 0; i < r.config.RetryCount; i++ {
		r.connection, err = amqp.Dial(r.config.ConnectionURL())
		if err != nil {
			r.log.Warn().Err(err).
				Int("attempt", i+1).
				Int("max", r.config.RetryCount).
				Msg("conexión a RabbitMQ falló")
			if i < r.config.RetryCount-1 {
				time.Sleep(r.config.RetryDelay)
				continue
			}
			return fmt.Errorf("conectar a RabbitMQ: %w", err)
		}

		r.channel, err = r.connection.Channel()
		if err != nil {
			r.connection.Close()
			return fmt.Errorf("abrir canal RabbitMQ: %w", err)
		}

		err = r.channel.ExchangeDeclare(
			r.config.Exchange, // name
			"topic",           // type
			true,              // durable
			false,             // auto-deleted
			false,             // internal
			false,             // no-wait
			nil,               // arguments
		)
		if err != nil {
			r.channel.Close()
			r.connection.Close()
			return fmt.Errorf("declarar exchange: %w", err)
		}

		r.log.Info().Str("host", r.config.Host).Msg("conectado a RabbitMQ")
		go r.handleReconnection()
		return nil
	}
	return err
}

func (r *RabbitMQClient) handleReconnection() {
	notifyClose := make(chan *amqp.Error)
	r.connection.NotifyClose(notifyClose)

	if err := <-notifyClose; err != nil && !r.closing() {
		r.log.Warn().Err(err).Msg("conexión RabbitMQ perdida, reconectando")
		time.Sleep(r.config.RetryDelay)
		if reconnectErr := r.Connect(); reconnectErr != nil {
			r.log.Error().Err(reconnectErr).Msg("reconexión a RabbitMQ falló")
		}
	}
}

func (r *RabbitMQClient) closing() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.isClosing
}

// Channel devuelve el canal actual.
func (r *RabbitMQClient) Channel() *amqp.Channel {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.channel
}

// IsConnected indica si la conexión está abierta.
func (r *RabbitMQClient) IsConnected() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.connection != nil && !r.connection.IsClosed()
}

// Exchange nombre del exchange declarado.
func (r *RabbitMQClient) Exchange() string {
	return r.config.Exchange
}

// Close cierra canal y conexión.
func (r *RabbitMQClient) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.isClosing = true
	if r.channel != nil {
		_ = r.channel.Close()
	}
	if r.connection != nil {
		return r.connection.Close()
	}
	return nil
}
