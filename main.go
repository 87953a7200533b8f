package main

import (
	"academy/account"
	"academy/authtoken"
	"academy/common"
	"academy/domain"
	"academy/infra/metrics"
	"academy/infra/tracing"
	"academy/persistence"
	"academy/servehttp"
	"academy/sessions"
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

func main() {
	common.LoadDotEnv()
	common.ConfigureLogging()
	logrus.Info("service start")

	dbConfig, err := persistence.ParseDatabaseConfigFromEnv()
	if err != nil {
		logrus.Fatalf("parse database config failed %v\n", err)
	}

	// create database (no conflict)
	if dbConfig.DriverType == persistence.DriverMysql {
		if err := persistence.PrepareMysqlDatabase(dbConfig.DriverArgs); err != nil {
			logrus.Fatalf("failed to prepare database %v\n", err)
		}
	}

	// connect database
	ds := &persistence.DataSourceManager{DatabaseConfig: dbConfig}
	if err := ds.Start(); err != nil {
		logrus.Fatalf("database connection failed %v\n", err)
	}
	defer ds.Stop()
	persistence.ActiveDataSourceManager = ds

	// database migration (race condition)
	tables := append(account.Tables(), &domain.Organization{}, &domain.Course{}, &domain.Lesson{})
	if err := ds.GormDB(context.Background()).AutoMigrate(tables...).Error; err != nil {
		logrus.Fatalf("database migration failed %v\n", err)
	}
	if err := account.Provision(context.Background(), account.ProvisionConfigFromEnv()); err != nil {
		logrus.Fatalf("provisioning failed %v\n", err)
	}

	metrics.Init()
	closer, err := tracing.InitGlobalTracer(common.GetServiceName(), prometheus.DefaultRegisterer)
	if err != nil {
		logrus.Fatalf("tracer initialization failed %v\n", err)
	}
	defer closer.Close()

	issuer := authtoken.NewIssuer(authtoken.ConfigFromEnv())
	engine := servehttp.BuildEngine(issuer, sessions.LoginThrottleFromEnv())

	if err := servehttp.StartHTTPServer(engine); err != nil {
		logrus.Errorf("service exited with error %v", err)
		return
	}
	logrus.Info("[QUIT] service exiting")
}
