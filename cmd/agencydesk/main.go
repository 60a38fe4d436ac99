package main

import (
	"github.com/agencydesk/agencydesk/internal/config"
	"github.com/agencydesk/agencydesk/internal/logger"
	"github.com/agencydesk/agencydesk/internal/migration"
	"github.com/agencydesk/agencydesk/internal/server"
	"github.com/agencydesk/agencydesk/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		db.Module,
		migration.Module,
		server.Module,
	)

	app.Run()
}
