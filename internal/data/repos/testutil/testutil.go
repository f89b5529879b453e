package testutil

import (
	"sync"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/calldeck/backend/internal/domain"
	"github.com/calldeck/backend/internal/platform/logger"
)

var (
	logOnce sync.Once
	logg    *logger.Logger
	logErr  error
)

func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	logOnce.Do(func() {
		logg, logErr = logger.New("test")
	})
	if logErr != nil {
		tb.Fatalf("failed to init logger: %v", logErr)
	}
	return logg
}

// DB opens a fresh in-memory SQLite database with the metrics schema
// migrated. Each call is fully isolated, so tests never see each other's rows.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		tb.Fatalf("failed to open test db: %v", err)
	}
	if err := db.AutoMigrate(&domain.MetricSample{}); err != nil {
		tb.Fatalf("failed to migrate test db: %v", err)
	}
	tb.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// CompleteSampleInput returns a fully populated ingestion payload for room
// and session.
func CompleteSampleInput(room, session string, ts int64) *domain.SampleInput {
	sendBPS := 250000.0
	recvBPS := 180000.0
	sendLoss := 0.01
	recvLoss := 0.02
	return &domain.SampleInput{
		RoomName:       &room,
		SessionID:      &session,
		Timestamp:      &ts,
		SendBPS:        &sendBPS,
		RecvBPS:        &recvBPS,
		SendPacketLoss: &sendLoss,
		RecvPacketLoss: &recvLoss,
	}
}
