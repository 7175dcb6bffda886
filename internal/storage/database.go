package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"social_media/internal/models"
	"social_media/pkg/config"
)

// DB 包裝 *gorm.DB；交易內的 DB 與外層共用同一型別，
// 讓 repository 不需要知道自己是否在交易中
type DB struct {
	*gorm.DB
}

// Open 依設定的 driver 建立資料庫連線
func Open(cfg config.DBConfig, log *logrus.Logger) (*DB, error) {
	dialector, err := newDialector(cfg)
	if err != nil {
		return nil, err
	}

	db, err := OpenDialector(dialector, log)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	if strings.EqualFold(cfg.Driver, "sqlite") {
		// sqlite 同時只允許一個寫入者，:memory: 也需要固定在同一條連線上
		sqlDB.SetMaxOpenConns(1)
	} else {
		if cfg.MaxOpenConns > 0 {
			sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		}
		if cfg.MaxIdleConns > 0 {
			sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		}
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	return db, nil
}

// OpenDialector 以指定的 dialector 開啟連線，測試時可傳入 sqlmock 建立的連線
func OpenDialector(dialector gorm.Dialector, log *logrus.Logger) (*DB, error) {
	gormCfg := &gorm.Config{
		// 寫入路徑由 service 層明確開啟交易
		SkipDefaultTransaction: true,
		// 將唯一索引衝突轉成 gorm.ErrDuplicatedKey
		TranslateError: true,
		Logger:         gormlogger.Discard,
	}
	if log != nil {
		gormCfg.Logger = gormlogger.New(log, gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		})
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return &DB{DB: db}, nil
}

func newDialector(cfg config.DBConfig) (gorm.Dialector, error) {
	dsn, err := buildDSN(cfg)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(cfg.Driver) {
	case "postgres":
		return postgres.Open(dsn), nil
	case "mysql":
		return mysql.Open(dsn), nil
	case "sqlite":
		return sqlite.Open(dsn), nil
	}
	return nil, fmt.Errorf("unsupported driver: %s", cfg.Driver)
}

func buildDSN(cfg config.DBConfig) (string, error) {
	if cfg.DSN != "" {
		return cfg.DSN, nil
	}
	switch strings.ToLower(cfg.Driver) {
	case "postgres":
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=%s",
			cfg.Host, cfg.User, cfg.Password, cfg.Name, cfg.Port, cfg.SSLMode, cfg.TimeZone), nil
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Name), nil
	case "sqlite":
		return "", errors.New("sqlite dsn must be provided")
	}
	return "", fmt.Errorf("unsupported driver: %s", cfg.Driver)
}

// Transaction 在單一交易中執行 fn；fn 回傳錯誤或 panic 時回滾，否則提交
func (db *DB) Transaction(ctx context.Context, fn func(tx *DB) error) error {
	return db.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&DB{DB: tx})
	})
}

func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// AutoMigrate 自動遷移資料庫結構
func (db *DB) AutoMigrate(models ...interface{}) error {
	return db.DB.AutoMigrate(models...)
}

// Migrate 建立 account 與 message 兩張資料表
func (db *DB) Migrate() error {
	return db.AutoMigrate(&models.Account{}, &models.Message{})
}
