//go:build integration
// +build integration

package broker

/*
	Run with: go test -tags=integration -v ./internal/broker -run TestRabbitMQ_PublishAndConsume -count=1
*/

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Boots a real RabbitMQ, publishes a mutation event and consumes it back.
func TestRabbitMQ_PublishAndConsume(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	req := tc.ContainerRequest{
		Image:        "rabbitmq:3.13",
		ExposedPorts: []string{"5672/tcp"},
		WaitingFor:   wait.ForListeningPort("5672/tcp").WithStartupTimeout(60 * time.Second),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		t.Fatalf("start rabbit: %v", err)
	}
	t.Cleanup(func() { _ = c.Terminate(ctx) })

	host, err := c.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := c.MappedPort(ctx, "5672/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}

	uri := fmt.Sprintf("amqp://guest:guest@%s:%s/", host, port.Port())
	queue := "outreach_events_test"

	pub, err := NewPublisher(uri, queue)
	if err != nil {
		t.Fatalf("new publisher: %v", err)
	}
	t.Cleanup(func() { _ = pub.Close() })

	conn, err := amqp.Dial(uri)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	ch, err := conn.Channel()
	if err != nil {
		t.Fatalf("channel: %v", err)
	}
	t.Cleanup(func() { _ = ch.Close() })

	if _, err = ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		t.Fatalf("queue declare: %v", err)
	}

	msgs, err := ch.Consume(queue, "", true, false, false, false, nil)
	if err != nil {
		t.Fatalf("consume: %v", err)
	}

	ev := Event{Action: "created", CompanyID: "c1", CompanyName: "Acme", ActorID: "u1"}
	if err := pub.PublishEvent(ctx, ev); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case m := <-msgs:
		var got Event
		if err := json.Unmarshal(m.Body, &got); err != nil {
			t.Fatalf("decode: %v body=%s", err, m.Body)
		}
		if got.Action != "created" || got.CompanyID != "c1" || got.CompanyName != "Acme" {
			t.Fatalf("event mismatch: %#v", got)
		}
		if got.Timestamp == "" {
			t.Fatal("timestamp not filled")
		}
		if m.Headers["action"] != "created" || m.Headers["company_id"] != "c1" {
			t.Fatalf("headers: %#v", m.Headers)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("timeout waiting for event")
	}
}
