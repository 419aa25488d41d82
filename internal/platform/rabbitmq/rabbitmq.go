package rabbitmq

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// New dials the broker and declares queueName so publishers and the worker
// can rely on it existing.
func New(ctx context.Context, url, queueName string) (*amqp.Connection, error) {
	dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	conn, err := amqp.DialConfig(url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Dial:      amqp.DefaultDial(5 * time.Second),
	})
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq failed: %w", err)
	}

	err = awaitSetup(dialCtx, func() error {
		ch, err := conn.Channel()
		if err != nil {
			return fmt.Errorf("open rabbitmq channel failed: %w", err)
		}
		defer ch.Close()
		return DeclareQueue(ch, queueName)
	}, conn.Close)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return conn, nil
}

// awaitSetup runs setup in the background. If ctx ends first, abort is called
// to unblock it and awaitSetup returns only after setup has finished.
func awaitSetup(ctx context.Context, setup func() error, abort func() error) error {
	done := make(chan error, 1)
	go func() {
		done <- setup()
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		_ = abort()
		<-done
		return fmt.Errorf("rabbitmq setup timeout: %w", ctx.Err())
	}
}
