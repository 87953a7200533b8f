package testinfra

import (
	"academy/persistence"
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type TestDatabase struct {
	TestDatabaseName string
	DS               *persistence.DataSourceManager

	driver string
	dir    string
}

// StartTestDatabase creates an isolated database for a test. A temporary sqlite file is used unless
// TEST_MYSQL_SERVICE (e.g. root:root@(127.0.0.1:3306)) is set, in which case a fresh mysql database is created.
func StartTestDatabase(baseName string) *TestDatabase {
	databaseName := baseName + "_test_" + strings.ReplaceAll(uuid.New().String(), "-", "")

	if mysqlSvc := os.Getenv("TEST_MYSQL_SERVICE"); mysqlSvc != "" {
		return startMysqlTestDatabase(mysqlSvc, databaseName)
	}

	dir, err := os.MkdirTemp("", baseName)
	if err != nil {
		logrus.Fatalf("failed to create temp dir %v\n", err)
	}
	dbConfig := &persistence.DatabaseConfig{
		DriverType: persistence.DriverSqlite,
		DriverArgs: filepath.Join(dir, databaseName+".db") + "?_busy_timeout=5000",
	}
	ds := &persistence.DataSourceManager{DatabaseConfig: dbConfig}
	if err := ds.Start(); err != nil {
		defer ds.Stop()
		logrus.Fatalf("database connection failed %v\n", err)
	}
	return &TestDatabase{TestDatabaseName: databaseName, DS: ds, driver: persistence.DriverSqlite, dir: dir}
}

func startMysqlTestDatabase(mysqlSvc, databaseName string) *TestDatabase {
	dbConfig := &persistence.DatabaseConfig{
		DriverType: persistence.DriverMysql,
		DriverArgs: mysqlSvc + "/" + databaseName + "?charset=utf8mb4&parseTime=True&loc=Local&timeout=5s",
	}

	// create database (no conflict)
	if err := persistence.PrepareMysqlDatabase(dbConfig.DriverArgs); err != nil {
		logrus.Fatalf("failed to prepare database %v\n", err)
	}

	ds := &persistence.DataSourceManager{DatabaseConfig: dbConfig}
	if err := ds.Start(); err != nil {
		defer ds.Stop()
		logrus.Fatalf("database connection failed %v\n", err)
	}
	return &TestDatabase{TestDatabaseName: databaseName, DS: ds, driver: persistence.DriverMysql}
}

func StopTestDatabase(testDatabase *TestDatabase) {
	if testDatabase == nil || testDatabase.DS == nil {
		return
	}
	if testDatabase.driver == persistence.DriverMysql {
		if db := testDatabase.DS.GormDB(context.Background()); db != nil {
			if err := db.Exec("DROP DATABASE " + testDatabase.TestDatabaseName).Error; err != nil {
				logrus.Warn("failed to drop test database: " + testDatabase.TestDatabaseName)
			} else {
				logrus.Info("test database " + testDatabase.TestDatabaseName + " dropped")
			}
		}
	}

	// close connection
	testDatabase.DS.Stop()
	if testDatabase.dir != "" {
		_ = os.RemoveAll(testDatabase.dir)
	}
}
