package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	AWS      AWSConfig
	Logging  LoggingConfig
	Producer ProducerConfig
	Consumer ConsumerConfig
	Requeue  RequeueConfig
}

type AWSConfig struct {
	Region   string
	Endpoint string
}

type LoggingConfig struct {
	Level string
}

type ProducerConfig struct {
	Queue        string
	DelaySeconds int
}

type ConsumerConfig struct {
	Queue       string
	WaitSeconds int
}

type RequeueConfig struct {
	SourceQueue     string
	DestQueue       string
	BatchSize       int
	DelaySeconds    int
	WaitSeconds     int
	DeleteAfterSend bool
	Budget          int
	MaxIdleReceives int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}
	return &Config{
		AWS: AWSConfig{
			Region:   getEnv("AWS_REGION", "us-east-1"),
			Endpoint: getEnv("AWS_ENDPOINT", ""),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Producer: ProducerConfig{
			Queue:        getEnv("SQS_QUEUE", "orders"),
			DelaySeconds: getEnvInt("SQS_PRODUCER_DELAY_SECONDS", 0),
		},
		Consumer: ConsumerConfig{
			Queue:       getEnv("SQS_QUEUE", "orders"),
			WaitSeconds: getEnvInt("SQS_CONSUMER_WAIT_SECONDS", 10),
		},
		Requeue: RequeueConfig{
			SourceQueue:     getEnv("SQS_DLQ_QUEUE", "orders-dlq"),
			DestQueue:       getEnv("SQS_QUEUE", "orders"),
			BatchSize:       getEnvInt("REQUEUE_BATCH_SIZE", 10),
			DelaySeconds:    getEnvInt("REQUEUE_DELAY_SECONDS", 0),
			WaitSeconds:     getEnvInt("REQUEUE_WAIT_SECONDS", 5),
			DeleteAfterSend: getEnvBool("REQUEUE_DELETE_AFTER_SEND", true),
			Budget:          getEnvInt("REQUEUE_BUDGET", 0),
			MaxIdleReceives: getEnvInt("REQUEUE_MAX_IDLE_RECEIVES", 0),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
