package main

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/bigbinary/pub-sub-with-sqs/internal/config"
	"github.com/bigbinary/pub-sub-with-sqs/internal/observability"
	"github.com/bigbinary/pub-sub-with-sqs/internal/sqs"
	"github.com/bigbinary/pub-sub-with-sqs/pkg/models"

	"github.com/google/uuid"
)

func main() {
	cfg := config.Load()
	observability.InitLogger(cfg.Logging.Level)
	logger := observability.GetLogger()

	payload := map[string]interface{}{
		"event_type":  "order_created",
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"order_id":    "ORD-2025-001234",
		"customer_id": "CUST-567890",
		"items": []interface{}{
			map[string]interface{}{
				"product_id": "PROD-111",
				"name":       "iPhone 15 Pro",
				"quantity":   1,
				"price":      42900.00,
			},
			map[string]interface{}{
				"product_id": "PROD-222",
				"name":       "AirPods Pro",
				"quantity":   1,
				"price":      8990.00,
			},
		},
		"total_amount":   "51890.00",
		"currency":       "THB",
		"payment_method": "credit_card",
		"status":         "pending",
	}

	body, err := json.Marshal(payload)
	if err != nil {
		log.Fatal(err)
	}

	attrs := map[string]models.Attribute{
		models.AttrMessageID: {
			DataType:    "String",
			StringValue: uuid.NewString(),
		},
		models.AttrContentType: {
			DataType:    "String",
			StringValue: "application/json",
		},
		models.AttrOrigin: {
			DataType:    "String",
			StringValue: "producer",
		},
		models.AttrPublishedAt: {
			DataType:    "String",
			StringValue: time.Now().UTC().Format(time.RFC3339),
		},
	}

	ctx := context.Background()
	client, err := sqs.NewClient(ctx, sqs.Options{
		Region:   cfg.AWS.Region,
		Endpoint: cfg.AWS.Endpoint,
	})
	if err != nil {
		log.Fatal(err)
	}

	queueURL, err := client.ResolveQueueURL(ctx, cfg.Producer.Queue)
	if err != nil {
		log.Fatal(err)
	}

	messageID, err := client.Send(ctx, queueURL, string(body), attrs, cfg.Producer.DelaySeconds)
	if err != nil {
		log.Fatal(err)
	}

	logger.WithField("message_id", messageID).Info("Message sent to queue")
}
