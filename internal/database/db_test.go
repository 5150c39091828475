package database

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDSN(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Skip("zoneinfo not available")
	}
	dsn := Options{User: "salon", Pass: "pw", Host: "db", Port: "3306", Name: "salon_db", Location: tokyo}.DSN()
	assert.True(t, strings.HasPrefix(dsn, "salon:pw@tcp(db:3306)/salon_db?"), dsn)
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "loc=Asia%2FTokyo")
	assert.Contains(t, dsn, "charset=utf8mb4")
	assert.Contains(t, dsn, "clientFoundRows=true")
}

func TestStatements(t *testing.T) {
	stmts := Statements()
	assert.NotEmpty(t, stmts)
	for _, s := range stmts {
		assert.True(t, strings.HasPrefix(s, "CREATE TABLE IF NOT EXISTS"), s)
	}
	joined := strings.Join(stmts, "\n")
	assert.Contains(t, joined, "KEY idx_booking_staff_date (staff_id, date)")
	assert.Contains(t, joined, "KEY idx_booking_bed_date (bed_id, date)")
}
