//go:build integration

package main_test

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkamodule "github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/celebook/service-booking/internal/application"
	bookingDomain "github.com/celebook/service-booking/internal/domain/booking"
	bookingEvents "github.com/celebook/service-booking/internal/events"
	"github.com/celebook/service-booking/internal/pkg/database"
	"github.com/celebook/service-booking/internal/pkg/domain"
	"github.com/celebook/service-booking/internal/pkg/events"
	"github.com/celebook/service-booking/internal/pkg/kafka"
	"github.com/celebook/service-booking/internal/repository"
)

type testInfra struct {
	DB           *gorm.DB
	KafkaBrokers []string
	Cleanup      func()
}

type bookingStack struct {
	Service         *application.BookingService
	Sweep           *application.SweepService
	Consumer        *bookingEvents.PaymentEventConsumer
	CleanupProducer func()
}

// setupContainers starts PostgreSQL and Kafka, applies the SQL migrations and
// returns a connected gorm DB.
func setupContainers(t *testing.T) *testInfra {
	t.Helper()
	ctx := context.Background()
	log := zap.NewNop()

	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "test",
				"POSTGRES_PASSWORD": "test",
				"POSTGRES_DB":       "test_booking",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "failed to start PostgreSQL container")

	pgHost, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	pgPort, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dbConfig := database.PostgresConfig{
		Host:     pgHost,
		Port:     pgPort.Port(),
		User:     "test",
		Password: "test",
		DBName:   "test_booking",
		SSLMode:  "disable",
	}

	var db *gorm.DB
	require.Eventually(t, func() bool {
		var err error
		db, err = database.Connect(dbConfig, log)
		return err == nil
	}, 30*time.Second, time.Second, "PostgreSQL not ready for connections")

	require.NoError(t, database.RunMigrations(dbConfig.DatabaseURL(), "migrations", log))

	kafkaContainer, err := kafkamodule.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "failed to start Kafka container")

	kafkaBrokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err, "failed to get Kafka brokers")

	createTopics(t, kafkaBrokers, events.TopicBookingEvents, events.TopicPaymentEvents)

	cleanup := func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate Kafka container: %v", err)
		}
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate PostgreSQL container: %v", err)
		}
	}

	return &testInfra{DB: db, KafkaBrokers: kafkaBrokers, Cleanup: cleanup}
}

func setupBookingStack(t *testing.T, db *gorm.DB, brokers []string) *bookingStack {
	t.Helper()
	logger, _ := zap.NewDevelopment()

	bookingRepo := repository.NewGormBookingRepository(db)
	producer := kafka.NewProducer(brokers, logger)
	bookingSvc := application.NewBookingService(application.BookingServiceDeps{
		Bookings:  bookingRepo,
		Profiles:  repository.NewGormCelebrityRepository(db),
		Packages:  repository.NewGormServicePackageRepository(db),
		Users:     repository.NewGormUserRepository(db),
		Reviews:   repository.NewGormReviewRepository(db),
		Pricing:   bookingDomain.NewFlatFeePricing(bookingDomain.DefaultServiceFeeBps, domain.CurrencyNGN),
		Publisher: producer,
		Location:  time.UTC,
	}, logger)
	sweepSvc := application.NewSweepService(bookingRepo, producer, time.UTC, logger)

	groupID := fmt.Sprintf("test-booking-%s", uuid.New().String()[:8])
	consumer := bookingEvents.NewPaymentEventConsumer(brokers, groupID, bookingSvc, logger)

	return &bookingStack{
		Service:         bookingSvc,
		Sweep:           sweepSvc,
		Consumer:        consumer,
		CleanupProducer: func() { _ = producer.Close() },
	}
}

// seedBooking inserts a booking row directly, bypassing the service.
func seedBooking(t *testing.T, db *gorm.DB, status string, eventDate time.Time, timeSlot string) repository.BookingModel {
	t.Helper()
	now := time.Now().UTC()
	model := newBookingModel(status, eventDate, timeSlot, uuid.New(), now)
	require.NoError(t, db.Create(&model).Error, "failed to seed booking")
	return model
}

func newBookingModel(status string, eventDate time.Time, timeSlot string, celebrityID uuid.UUID, now time.Time) repository.BookingModel {
	return repository.BookingModel{
		ID:            uuid.New(),
		Reference:     fmt.Sprintf("BK-T%s", uuid.New().String()[:7]),
		ClientID:      uuid.New(),
		ClientName:    "Ada Client",
		CelebrityID:   celebrityID,
		CelebrityName: "Burna Star",
		Package: datatypes.NewJSONType(bookingDomain.PackageSnapshot{
			ServiceID:  uuid.New(),
			Title:      "Birthday shoutout",
			PriceMinor: 2_000_000,
			Duration:   "2 minutes",
		}),
		PriceMinor:       2_000_000,
		EventDate:        datatypes.Date(eventDate),
		TimeSlot:         timeSlot,
		EventDescription: "integration test",
		Location:         "Lagos",
		Status:           status,
		PayoutStatus:     string(bookingDomain.PayoutPending),
		AmountPaidMinor:  2_020_000,
		Currency:         domain.CurrencyNGN,
		Version:          1,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

func publishTestEvent(t *testing.T, brokers []string, topic, key, source, eventType string, data interface{}) {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	producer := kafka.NewProducer(brokers, logger)
	defer func() { _ = producer.Close() }()

	ce, err := kafka.NewCloudEvent(source, eventType, data)
	require.NoError(t, err, "failed to create cloud event")

	err = producer.PublishEvent(context.Background(), topic, key, ce)
	require.NoError(t, err, "failed to publish event")
}

// waitForBooking polls the bookings table until match accepts the row.
func waitForBooking(t *testing.T, db *gorm.DB, bookingID uuid.UUID, timeout time.Duration, match func(repository.BookingModel) bool) repository.BookingModel {
	t.Helper()
	var result repository.BookingModel
	require.Eventually(t, func() bool {
		var model repository.BookingModel
		if err := db.Where("id = ?", bookingID).First(&model).Error; err != nil {
			return false
		}
		if match(model) {
			result = model
			return true
		}
		return false
	}, timeout, 200*time.Millisecond, "booking %s never reached the expected state", bookingID)
	return result
}

// consumeEvent reads topic until it finds an event of the expected type whose
// subject (the message key) is key.
func consumeEvent(t *testing.T, brokers []string, topic, expectedType, key string, timeout time.Duration) kafka.CloudEvent {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     brokers,
		GroupID:     fmt.Sprintf("test-assert-%s", uuid.New().String()[:8]),
		Topic:       topic,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafkago.FirstOffset,
	})
	defer func() { _ = reader.Close() }()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				t.Fatalf("timed out waiting for event type %q on topic %q", expectedType, topic)
			}
			continue
		}
		if string(msg.Key) != key {
			continue
		}
		ce, err := kafka.ParseCloudEvent(msg.Value)
		if err != nil {
			continue
		}
		if ce.Type == expectedType {
			return ce
		}
	}
}

// createTopics pre-creates topics so producers don't fail with "Unknown Topic".
func createTopics(t *testing.T, brokers []string, topics ...string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", brokers[0])
	require.NoError(t, err, "failed to dial Kafka for topic creation")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "failed to get Kafka controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, fmt.Sprintf("%d", controller.Port)))
	require.NoError(t, err, "failed to connect to Kafka controller")
	defer controllerConn.Close()

	topicConfigs := make([]kafkago.TopicConfig, len(topics))
	for i, topic := range topics {
		topicConfigs[i] = kafkago.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		}
	}
	require.NoError(t, controllerConn.CreateTopics(topicConfigs...), "failed to create Kafka topics")

	time.Sleep(time.Second)
}
