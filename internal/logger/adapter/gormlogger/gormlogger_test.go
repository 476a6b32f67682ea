package gormlogger

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/oneid-io/oneid/internal/logger"
)

func TestParseLevel(t *testing.T) {
	testCases := map[string]gormlogger.LogLevel{
		"silent": gormlogger.Silent,
		"ERROR":  gormlogger.Error,
		"warn":   gormlogger.Warn,
		"info":   gormlogger.Info,
		"":       gormlogger.Warn,
	}

	for in, want := range testCases {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestTrace(t *testing.T) {
	sql := func() (string, int64) { return "SELECT 1", 1 }

	testCases := []struct {
		name    string
		cfg     logger.SQL
		begin   time.Time
		err     error
		want    string
		wantNot bool
	}{
		{name: "error", cfg: logger.SQL{Level: "error"}, begin: time.Now(), err: errors.New("boom"), want: "query failed"},
		{name: "not found is quiet", cfg: logger.SQL{Level: "error"}, begin: time.Now(), err: gorm.ErrRecordNotFound, wantNot: true},
		{
			name:  "slow",
			cfg:   logger.SQL{Level: "warn", SlowThreshold: time.Millisecond},
			begin: time.Now().Add(-time.Second),
			want:  "slow query",
		},
		{name: "fast below info", cfg: logger.SQL{Level: "warn", SlowThreshold: time.Minute}, begin: time.Now(), wantNot: true},
		{name: "info", cfg: logger.SQL{Level: "info"}, begin: time.Now(), want: "SELECT 1"},
		{name: "silent", cfg: logger.SQL{Level: "silent"}, begin: time.Now(), err: errors.New("boom"), wantNot: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer

			l := New(tc.cfg, zerolog.New(&buf).Level(zerolog.TraceLevel))
			l.Trace(context.Background(), tc.begin, sql, tc.err)

			if tc.wantNot {
				assert.Empty(t, buf.String())
				return
			}

			assert.Contains(t, buf.String(), tc.want)
			assert.Contains(t, buf.String(), `"component":"gorm"`)
		})
	}
}

func TestLogMode(t *testing.T) {
	var buf bytes.Buffer

	l := New(logger.SQL{Level: "silent"}, zerolog.New(&buf))
	l.Info(context.Background(), "hidden %d", 1)
	assert.Empty(t, buf.String())

	l.LogMode(gormlogger.Info).Info(context.Background(), "shown %d", 2)
	assert.Contains(t, buf.String(), "shown 2")
}
