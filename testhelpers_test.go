//go:build integration

package main_test

import (
	"context"
	"fmt"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkamodule "github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/TicketsPartners/service-tickets/internal/application"
	"github.com/TicketsPartners/service-tickets/internal/database"
	eventDomain "github.com/TicketsPartners/service-tickets/internal/domain/event"
	"github.com/TicketsPartners/service-tickets/internal/domain/payment"
	ticketEvents "github.com/TicketsPartners/service-tickets/internal/events"
	"github.com/TicketsPartners/service-tickets/internal/kafka"
	"github.com/TicketsPartners/service-tickets/internal/repository"
)

const testRecipient = "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM"

// testInfra holds shared test infrastructure.
type testInfra struct {
	DB           *gorm.DB
	KafkaBrokers []string
	Cleanup      func()
}

// ticketStack holds wired-up purchase components over the real database.
type ticketStack struct {
	Events    *repository.GormEventRepository
	Tickets   *repository.GormTicketRepository
	Users     *repository.GormUserRepository
	Purchases *application.PurchaseService
}

// setupPostgres starts a PostgreSQL testcontainer and returns a migrated GORM DB.
func setupPostgres(t *testing.T) (*gorm.DB, func()) {
	t.Helper()
	ctx := context.Background()

	pgReq := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test_tickets",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: pgReq,
		Started:          true,
	})
	require.NoError(t, err, "failed to start PostgreSQL container")

	pgHost, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	pgPort, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("host=%s port=%s user=test password=test dbname=test_tickets sslmode=disable", pgHost, pgPort.Port())

	// Poll until GORM can actually connect and ping.
	var db *gorm.DB
	require.Eventually(t, func() bool {
		var err error
		db, err = database.Open(postgres.Open(dsn))
		if err != nil {
			return false
		}
		sqlDB, err := db.DB()
		if err != nil {
			return false
		}
		return sqlDB.Ping() == nil
	}, 30*time.Second, 1*time.Second, "PostgreSQL not ready for connections")

	require.NoError(t, db.AutoMigrate(repository.Models()...))

	cleanup := func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate PostgreSQL container: %v", err)
		}
	}
	return db, cleanup
}

// setupContainers starts PostgreSQL and Kafka testcontainers.
func setupContainers(t *testing.T) *testInfra {
	t.Helper()
	ctx := context.Background()

	db, pgCleanup := setupPostgres(t)

	// Start Kafka container using confluent-local (supports KRaft natively).
	kafkaContainer, err := kafkamodule.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "failed to start Kafka container")

	kafkaBrokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err, "failed to get Kafka brokers")

	createTopics(t, kafkaBrokers, ticketEvents.TopicTicketEvents)

	cleanup := func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate Kafka container: %v", err)
		}
		pgCleanup()
	}

	return &testInfra{
		DB:           db,
		KafkaBrokers: kafkaBrokers,
		Cleanup:      cleanup,
	}
}

// setupTicketStack wires the purchase path over db with a fixed exchange rate.
func setupTicketStack(t *testing.T, db *gorm.DB, chain *stubChain, publisher application.Publisher) *ticketStack {
	t.Helper()
	logger, _ := zap.NewDevelopment()

	events := repository.NewGormEventRepository(db)
	tickets := repository.NewGormTicketRepository(db)
	users := repository.NewGormUserRepository(db)
	rates := application.NewExchangeRateProvider(failingFeed{}, nil, decimal.NewFromInt(100), time.Second, logger)

	ledger := application.NewPromoLedger(events, tickets, logger)
	verifier := application.NewPaymentVerifier(ledger, chain, rates, testRecipient, "uah", logger)
	issuer := application.NewTicketIssuer(database.NewTxManager(db), events, tickets, ledger, publisher, logger)

	return &ticketStack{
		Events:    events,
		Tickets:   tickets,
		Users:     users,
		Purchases: application.NewPurchaseService(events, tickets, ledger, verifier, issuer, rates, testRecipient, "uah", logger),
	}
}

// failingFeed makes the rate provider fall back to its configured rate.
type failingFeed struct{}

func (failingFeed) FetchRate(context.Context, string) (decimal.Decimal, error) {
	return decimal.Zero, fmt.Errorf("offline")
}

// stubChain confirms a single transfer for every reference.
type stubChain struct {
	signature string
	lamports  uint64
}

func (c *stubChain) FindSignatureByReference(context.Context, string) (string, error) {
	return c.signature, nil
}

func (c *stubChain) GetParsedTransaction(_ context.Context, sig string) (*payment.Transaction, error) {
	return &payment.Transaction{
		Signature: sig,
		Instructions: []payment.Instruction{{
			ProgramID:   payment.SystemProgramID,
			Type:        "transfer",
			Destination: testRecipient,
			Lamports:    c.lamports,
		}},
	}, nil
}

// noopPublisher drops every message.
type noopPublisher struct{}

func (noopPublisher) PublishTicketIssued(context.Context, application.TicketIssuedMessage) error {
	return nil
}

func (noopPublisher) PublishEventCreated(context.Context, application.EventCreatedMessage) error {
	return nil
}

// recordingSender captures Telegram messages.
type recordingSender struct {
	mu   sync.Mutex
	sent map[int64][]string
}

func (s *recordingSender) Send(_ context.Context, chatID int64, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sent == nil {
		s.sent = make(map[int64][]string)
	}
	s.sent[chatID] = append(s.sent[chatID], text)
	return nil
}

func (s *recordingSender) messages(chatID int64) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.sent[chatID]...)
}

// seedEvent stores an event priced 500 with promo SALE10 (10%, given limit).
func seedEvent(t *testing.T, repo *repository.GormEventRepository, limit int) *eventDomain.Event {
	t.Helper()
	promo, err := eventDomain.NewPromo("SALE10", decimal.RequireFromString("0.10"), limit)
	require.NoError(t, err)
	now := time.Now()
	ev, err := eventDomain.NewEvent("Concert", now.AddDate(0, 1, 0), "Kyiv, Palace", 500, "Live show", "music", "", []eventDomain.Promo{promo}, now)
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), ev))
	return ev
}

// publishTestEvent publishes a CloudEvent to Kafka.
func publishTestEvent(t *testing.T, brokers []string, topic, source, eventType string, data interface{}) {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	producer := kafka.NewProducer(brokers, logger)
	defer func() { _ = producer.Close() }()

	ce, err := kafka.NewCloudEvent(source, eventType, data)
	require.NoError(t, err, "failed to create cloud event")

	err = producer.PublishEvent(context.Background(), topic, ce)
	require.NoError(t, err, "failed to publish event")
}

// consumeOneEvent reads from a Kafka topic until it finds an event of the expected type.
func consumeOneEvent(t *testing.T, brokers []string, topic, expectedType string, timeout time.Duration) kafka.CloudEvent {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	groupID := fmt.Sprintf("test-assert-%s", uuid.New().String()[:8])
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
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
		ce, err := kafka.ParseCloudEvent(msg.Value)
		if err != nil {
			continue
		}
		if ce.Type == expectedType {
			return ce
		}
	}
}

// createTopics pre-creates Kafka topics so producers don't fail with "Unknown Topic".
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
	err = controllerConn.CreateTopics(topicConfigs...)
	require.NoError(t, err, "failed to create Kafka topics")

	// Give Kafka a moment to propagate topic metadata.
	time.Sleep(1 * time.Second)
}
