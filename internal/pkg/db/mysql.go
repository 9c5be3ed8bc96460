// internal/pkg/db/mysql.go
package db

import (
	"time"

	"atelier/internal/pkg/bootstrap"

	gomysql "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewMysqlDB 根据全局配置建立一个 GORM 连接。
// DSN 通过官方驱动的 Config 结构构造，避免手工拼接字符串时遗漏参数。
func NewMysqlDB(cfg *bootstrap.Config) (*gorm.DB, error) {
	dsnCfg := gomysql.NewConfig()
	dsnCfg.User = cfg.Infra.Mysql.User
	dsnCfg.Passwd = cfg.Infra.Mysql.Password
	dsnCfg.Net = "tcp"
	dsnCfg.Addr = cfg.Infra.Mysql.Host
	dsnCfg.DBName = cfg.Infra.Mysql.Database
	dsnCfg.ParseTime = true
	dsnCfg.Loc = time.UTC

	db, err := gorm.Open(mysql.Open(dsnCfg.FormatDSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}
