package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"schoolgear/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestRepo gives each test a fresh file-backed sqlite database. A single
// pooled connection serializes concurrent transactions the way row locks do
// on postgres, so the concurrency tests are deterministic.
func openTestRepo(t *testing.T) *Repo {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "portal.db") + "?_pragma=busy_timeout(10000)"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, Migrate(conn))

	t.Cleanup(func() { _ = sqlDB.Close() })
	return NewRepo(conn)
}

func seedUser(t *testing.T, r *Repo, username, role string) *models.User {
	t.Helper()
	u := &models.User{
		Username:     username,
		PasswordHash: "x",
		FullName:     username + " Test",
		Role:         role,
		Email:        username + "@school.test",
	}
	require.NoError(t, r.CreateUser(context.Background(), u))
	return u
}

func seedEquipment(t *testing.T, r *Repo, name string, total int) *models.Equipment {
	t.Helper()
	cat := &models.EquipmentCategory{Name: name + " category"}
	require.NoError(t, r.CreateCategory(context.Background(), cat))
	e := &models.Equipment{
		Name:              name,
		CategoryID:        cat.ID,
		TotalQuantity:     total,
		AvailableQuantity: total,
	}
	require.NoError(t, r.CreateEquipment(context.Background(), e))
	return e
}

func seedRequest(t *testing.T, r *Repo, equipmentID, requesterID uint, qty int, due time.Time) *models.LendingRequest {
	t.Helper()
	req := &models.LendingRequest{
		EquipmentID:        equipmentID,
		RequesterID:        requesterID,
		Quantity:           qty,
		ExpectedReturnDate: due,
	}
	require.NoError(t, r.CreateRequest(context.Background(), req))
	return req
}
