package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/bigbinary/pub-sub-with-sqs/internal/config"
	"github.com/bigbinary/pub-sub-with-sqs/internal/observability"
	"github.com/bigbinary/pub-sub-with-sqs/internal/sqs"
)

func main() {
	cfg := config.Load()
	observability.InitLogger(cfg.Logging.Level)

	queueName := flag.String("queue", cfg.Consumer.Queue, "queue name to consume from")
	flag.Parse()
	fmt.Println("Starting SQS consumer...", *queueName)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := sqs.NewClient(ctx, sqs.Options{
		Region:   cfg.AWS.Region,
		Endpoint: cfg.AWS.Endpoint,
	})
	if err != nil {
		log.Fatal(err)
	}

	queueURL, err := client.ResolveQueueURL(ctx, *queueName)
	if err != nil {
		log.Fatal(err)
	}

	for ctx.Err() == nil {
		messages, err := client.Receive(ctx, queueURL, sqs.MaxReceiveCount, cfg.Consumer.WaitSeconds)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			log.Printf("Receive error: %v", err)
			continue
		}

		var deletes []sqs.DeleteEntry
		for _, msg := range messages {
			var data map[string]interface{}
			if err := json.Unmarshal([]byte(msg.Body), &data); err != nil {
				fmt.Printf("Received message %s: [unmarshal error: %v]\n%s\n", msg.ID, err, msg.Body)
			} else {
				pretty, _ := json.MarshalIndent(data, "", "  ")
				fmt.Printf("Received message %s:\n%s\n", msg.ID, string(pretty))
			}
			deletes = append(deletes, sqs.DeleteEntry{ID: msg.ID, ReceiptHandle: msg.ReceiptHandle})
		}

		if len(deletes) > 0 {
			if _, err := client.DeleteBatch(ctx, queueURL, deletes); err != nil {
				log.Printf("Delete error: %v", err)
			}
		}
	}

	fmt.Println("Consumer stopped.")
}
