package persistence

import (
	"academy/common"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/mattn/go-sqlite3"
)

const (
	DriverMysql  = "mysql"
	DriverSqlite = "sqlite3"
)

type DatabaseConfig struct {
	DriverType string
	DriverArgs string
	LogMode    bool
}

// ParseDatabaseConfigFromEnv reads DB_DRIVER (mysql|sqlite3, default sqlite3), DB_ARGS and DB_LOG_MODE.
func ParseDatabaseConfigFromEnv() (*DatabaseConfig, error) {
	driver := common.EnvString("DB_DRIVER", DriverSqlite)
	config := &DatabaseConfig{DriverType: driver, LogMode: common.EnvBool("DB_LOG_MODE", false)}
	switch driver {
	case DriverSqlite:
		config.DriverArgs = common.EnvString("DB_ARGS", "academy.db?_busy_timeout=5000")
	case DriverMysql:
		config.DriverArgs = common.EnvString("DB_ARGS", "")
		if config.DriverArgs == "" {
			return nil, errors.New("DB_ARGS is required for mysql driver")
		}
		if _, err := mysql.ParseDSN(config.DriverArgs); err != nil {
			return nil, fmt.Errorf("invalid mysql DB_ARGS: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER '%s'", driver)
	}
	return config, nil
}

// PrepareMysqlDatabase creates the database named in the dsn if it does not exist yet.
func PrepareMysqlDatabase(dsn string) error {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return err
	}
	dbName := cfg.DBName
	if dbName == "" {
		return errors.New("database name is missing in dsn")
	}
	cfg.DBName = ""

	db, err := sql.Open(DriverMysql, cfg.FormatDSN())
	if err != nil {
		return err
	}
	defer db.Close()

	_, err = db.Exec("CREATE DATABASE IF NOT EXISTS `" + dbName + "` DEFAULT CHARACTER SET utf8mb4 COLLATE utf8mb4_unicode_ci")
	return err
}

// IsUniqueViolation reports whether err is a unique constraint violation of the underlying driver.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrConstraint &&
			(sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique || sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey)
	}
	return false
}
