package testutil

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/ganesh-omneky/data-health-dashboard/internal/data/db"
	"github.com/ganesh-omneky/data-health-dashboard/internal/platform/logger"
)

var (
	logOnce sync.Once
	logg    *logger.Logger
	logErr  error

	dbSeq atomic.Int64
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

// DB opens a private in-memory sqlite database with the full schema migrated
// and the platforms table seeded. Each call gets its own database.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(tb.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, dbSeq.Add(1))

	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		tb.Fatalf("failed to open sqlite: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		tb.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrateAll(gdb); err != nil {
		tb.Fatalf("failed to migrate test db: %v", err)
	}
	return gdb
}

func Tx(tb testing.TB, gdb *gorm.DB) *gorm.DB {
	tb.Helper()
	tx := gdb.Begin()
	if tx.Error != nil {
		tb.Fatalf("begin tx: %v", tx.Error)
	}
	tb.Cleanup(func() {
		_ = tx.Rollback().Error
	})
	return tx
}

// WriteCounter counts UPDATE and INSERT statements per table.
type WriteCounter struct {
	mu      sync.Mutex
	updates map[string]int
	creates map[string]int
}

func CountWrites(tb testing.TB, gdb *gorm.DB) *WriteCounter {
	tb.Helper()
	wc := &WriteCounter{updates: map[string]int{}, creates: map[string]int{}}
	if err := gdb.Callback().Update().After("gorm:update").Register("testutil:count_update", func(tx *gorm.DB) {
		if tx.Error == nil {
			wc.add(wc.updates, tx.Statement.Table)
		}
	}); err != nil {
		tb.Fatalf("register update counter: %v", err)
	}
	if err := gdb.Callback().Create().After("gorm:create").Register("testutil:count_create", func(tx *gorm.DB) {
		if tx.Error == nil {
			wc.add(wc.creates, tx.Statement.Table)
		}
	}); err != nil {
		tb.Fatalf("register create counter: %v", err)
	}
	return wc
}

func (wc *WriteCounter) add(m map[string]int, table string) {
	wc.mu.Lock()
	defer wc.mu.Unlock()
	m[table]++
}

func (wc *WriteCounter) Updates(table string) int {
	wc.mu.Lock()
	defer wc.mu.Unlock()
	return wc.updates[table]
}

func (wc *WriteCounter) Creates(table string) int {
	wc.mu.Lock()
	defer wc.mu.Unlock()
	return wc.creates[table]
}

// FailWrites makes the next n UPDATE or INSERT statements on table fail with err.
func FailWrites(tb testing.TB, gdb *gorm.DB, table string, n int, err error) *atomic.Int64 {
	tb.Helper()
	var remaining atomic.Int64
	remaining.Store(int64(n))
	fail := func(tx *gorm.DB) {
		if tx.Statement.Table == table && remaining.Load() > 0 {
			remaining.Add(-1)
			_ = tx.AddError(err)
		}
	}
	name := fmt.Sprintf("testutil:fail_%s_%d", table, dbSeq.Add(1))
	if e := gdb.Callback().Update().Before("gorm:update").Register(name+"_update", fail); e != nil {
		tb.Fatalf("register failing update: %v", e)
	}
	if e := gdb.Callback().Create().Before("gorm:create").Register(name+"_create", fail); e != nil {
		tb.Fatalf("register failing create: %v", e)
	}
	return &remaining
}
