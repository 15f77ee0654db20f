package testutil

import (
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/qs3c/edu_referral_server/internal/database"
)

// SetupTestDB 创建测试数据库（SQLite 内存模式）
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// 每个测试使用独立的命名内存库，事务里的新连接也能看到同一份数据
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", sanitizeName(t.Name()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("Failed to connect test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get underlying DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := database.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

// CleanupTestDB 清理测试数据库
func CleanupTestDB(t *testing.T, db *gorm.DB) {
	t.Helper()

	sqlDB, err := db.DB()
	if err != nil {
		t.Logf("Warning: Failed to get underlying DB: %v", err)
		return
	}

	if err := sqlDB.Close(); err != nil {
		t.Logf("Warning: Failed to close test database: %v", err)
	}
}

// TruncateTables 清空所有表数据
func TruncateTables(t *testing.T, db *gorm.DB) {
	t.Helper()

	tables := []string{
		"subscriptions",
		"coupons",
		"users",
		"agents",
		"admins",
	}

	for _, table := range tables {
		if err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)).Error; err != nil {
			t.Logf("Warning: Failed to truncate table %s: %v", table, err)
		}
	}
}

func sanitizeName(name string) string {
	out := make([]byte, 0, len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			out = append(out, c)
		} else {
			out = append(out, '_')
		}
	}
	return string(out)
}
