package oeeMonitor

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr string
	TgToken  string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Telemetry gateway: "kafka" or "mqtt"
	TelemetrySource string
	KafkaBroker     string
	KafkaTopic      string
	KafkaScanDepth  int64
	MqttBroker      string
	MqttClientID    string
	MqttTopic       string

	// Synchronizer
	PollInterval time.Duration
	FetchTimeout time.Duration

	// Shift analytics
	ShiftTimezone string
	NominalRate   float64 // pieces per hour
	ShiftCacheTTL time.Duration

	// Optional backends, disabled when empty
	RedisAddr    string
	NatsURL      string
	NatsSubject  string
	InfluxURL    string
	InfluxToken  string
	InfluxOrg    string
	InfluxBucket string
}

func LoadConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
		TgToken:  os.Getenv("TG_TOKEN"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     getEnv("DB_NAME", "oee_monitor_db"),

		TelemetrySource: getEnv("TELEMETRY_SOURCE", "kafka"),
		KafkaBroker:     getEnv("KAFKA_BROKER", "localhost:9092"),
		KafkaTopic:      getEnv("KAFKA_TOPIC", "machine-telemetry"),
		KafkaScanDepth:  int64(getEnvInt("KAFKA_SCAN_DEPTH", 1000)),
		MqttBroker:      getEnv("MQTT_BROKER", "tcp://localhost:1883"),
		MqttClientID:    getEnv("MQTT_CLIENT_ID", "oee-monitor"),
		MqttTopic:       getEnv("MQTT_TOPIC", "machines/+/telemetry"),

		PollInterval: getEnvDuration("POLL_INTERVAL", 10*time.Second),
		FetchTimeout: getEnvDuration("FETCH_TIMEOUT", 8*time.Second),

		ShiftTimezone: getEnv("SHIFT_TIMEZONE", "Local"),
		NominalRate:   getEnvFloat("NOMINAL_RATE", 600),
		ShiftCacheTTL: getEnvDuration("SHIFT_CACHE_TTL", 15*time.Minute),

		RedisAddr:    os.Getenv("REDIS_ADDR"),
		NatsURL:      os.Getenv("NATS_URL"),
		NatsSubject:  getEnv("NATS_SUBJECT", "oee.machines.state"),
		InfluxURL:    os.Getenv("INFLUX_URL"),
		InfluxToken:  os.Getenv("INFLUX_TOKEN"),
		InfluxOrg:    getEnv("INFLUX_ORG", "plant"),
		InfluxBucket: getEnv("INFLUX_BUCKET", "machines"),
	}
}

// Location resolves ShiftTimezone, falling back to time.Local.
func (c *Config) Location() *time.Location {
	if c.ShiftTimezone == "" || c.ShiftTimezone == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.ShiftTimezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvFloat(key string, fallback float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return fallback
	}
	return v
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
