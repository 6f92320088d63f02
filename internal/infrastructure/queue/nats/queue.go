package nats

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/kpetrov/docflow/internal/infrastructure/resilience"
)

const workerGroup = "docflow-workers"

// Connect dials the NATS server with the reconnect policy shared by every
// queue and the notification topic.
func Connect(url, name string) (*nats.Conn, error) {
	conn, err := nats.Connect(
		url,
		nats.Name(name),
		nats.Timeout(2*time.Second),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(60),
		nats.RetryOnFailedConnect(true),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Printf("nats disconnected: %v", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Printf("nats reconnected: %s", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return conn, nil
}

// Queue is one named at-least-once channel: a subject with a shared queue
// group, so each message is handled by exactly one worker. A handler error
// triggers redelivery by republishing; converging is the handler's job.
type Queue struct {
	conn     *nats.Conn
	subject  string
	executor *resilience.Executor
}

func NewQueue(conn *nats.Conn, subject string, executor *resilience.Executor) *Queue {
	return &Queue{
		conn:     conn,
		subject:  subject,
		executor: executor,
	}
}

func (q *Queue) Publish(ctx context.Context, payload []byte) error {
	call := func(context.Context) error {
		if err := q.conn.Publish(q.subject, payload); err != nil {
			return fmt.Errorf("nats publish %s: %w", q.subject, err)
		}
		return nil
	}

	var err error
	if q.executor != nil {
		err = q.executor.Execute(ctx, "nats.publish."+q.subject, call, classifyNATSError)
	} else {
		err = call(ctx)
	}
	return wrapTemporaryIfNeeded(q.subject, err)
}

// Subscribe blocks until ctx is cancelled, delivering each message to the
// handler. Failed messages are requeued on the same subject after a short
// delay, standing in for the platform's redelivery timeout.
func (q *Queue) Subscribe(ctx context.Context, handler func(context.Context, []byte) error) error {
	sub, err := q.conn.QueueSubscribe(q.subject, workerGroup, func(msg *nats.Msg) {
		if errors.Is(ctx.Err(), context.Canceled) {
			return
		}

		handlerCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		if err := handler(handlerCtx, msg.Data); err != nil {
			log.Printf("handler error on %s, requeueing: %v", q.subject, err)
			time.AfterFunc(redeliveryDelay, func() {
				if pubErr := q.conn.Publish(q.subject, msg.Data); pubErr != nil {
					log.Printf("requeue on %s failed: %v", q.subject, pubErr)
				}
			})
		}
	})
	if err != nil {
		return fmt.Errorf("nats subscribe %s: %w", q.subject, err)
	}

	if err := q.conn.Flush(); err != nil {
		return fmt.Errorf("nats flush: %w", err)
	}

	<-ctx.Done()
	if err := sub.Drain(); err != nil {
		return fmt.Errorf("nats drain subscription: %w", err)
	}
	if err := q.conn.FlushTimeout(5 * time.Second); err != nil {
		return fmt.Errorf("nats flush after drain: %w", err)
	}
	return nil
}

const redeliveryDelay = 5 * time.Second

// Topic is the fan-out notification channel: plain publish, every
// subscriber receives every message.
type Topic struct {
	conn    *nats.Conn
	subject string
}

func NewTopic(conn *nats.Conn, subject string) *Topic {
	return &Topic{conn: conn, subject: subject}
}

func (t *Topic) Publish(_ context.Context, payload []byte, subject string) error {
	msg := nats.NewMsg(t.subject)
	msg.Header.Set("Notification-Subject", subject)
	msg.Data = payload
	if err := t.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("nats publish topic %s: %w", t.subject, err)
	}
	return nil
}
