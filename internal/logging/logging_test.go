package logging

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/idebisnis-backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type recordingHandler struct {
	level   slog.Level
	records []slog.Record
}

func (r *recordingHandler) Enabled(_ context.Context, l slog.Level) bool { return l >= r.level }
func (r *recordingHandler) Handle(_ context.Context, rec slog.Record) error {
	r.records = append(r.records, rec)
	return nil
}
func (r *recordingHandler) WithAttrs([]slog.Attr) slog.Handler { return r }
func (r *recordingHandler) WithGroup(string) slog.Handler      { return r }

func TestMultiHandler_RespectsEachLevel(t *testing.T) {
	info := &recordingHandler{level: slog.LevelInfo}
	errs := &recordingHandler{level: slog.LevelError}
	log := slog.New(NewMultiHandler(info, errs))

	log.Info("report created")
	log.Error("completion failed")

	assert.Len(t, info.records, 2)
	require.Len(t, errs.records, 1)
	assert.Equal(t, "completion failed", errs.records[0].Message)
}

type failingHandler struct{ recordingHandler }

func (f *failingHandler) Handle(context.Context, slog.Record) error {
	return errors.New("sink down")
}

func TestMultiHandler_FailingSinkDoesNotBlockOthers(t *testing.T) {
	broken := &failingHandler{recordingHandler{level: slog.LevelDebug}}
	stdout := &recordingHandler{level: slog.LevelDebug}
	h := NewMultiHandler(broken, nil, stdout)

	err := h.Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelError, "boom", 0))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "sink down")
	assert.Len(t, stdout.records, 1)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}

func newLogDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&models.SystemLog{}))
	return db
}

func TestPGHandler_PersistsErrorsWithKnownAttrs(t *testing.T) {
	db := newLogDB(t)
	h := NewPGHandler(db, time.Hour)
	log := slog.New(h).With("request_id", "req-1")

	reportID := uuid.New()
	log.Info("not persisted")
	log.Error("completion failed", "report_id", reportID, "user_id", "u-1", "error", errors.New("timeout"), "provider", "chat")
	h.Stop()

	var rows []models.SystemLog
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)
	row := rows[0]
	assert.Equal(t, "completion failed", row.Message)
	assert.Equal(t, "ERROR", row.Level)
	assert.Equal(t, "req-1", row.RequestID)
	require.NotNil(t, row.ReportID)
	assert.Equal(t, reportID.String(), *row.ReportID)
	assert.Equal(t, "timeout", row.Error)
	assert.JSONEq(t, `{"provider":"chat"}`, string(row.Extra))
}

func TestDeleteOlderThan(t *testing.T) {
	db := newLogDB(t)
	now := time.Now()
	require.NoError(t, db.Create(&[]models.SystemLog{
		{ID: uuid.New(), Timestamp: now.AddDate(0, 0, -40), Level: "ERROR", Message: "old"},
		{ID: uuid.New(), Timestamp: now, Level: "ERROR", Message: "new"},
	}).Error)

	deleted, err := DeleteOlderThan(db, now.AddDate(0, 0, -30))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}
