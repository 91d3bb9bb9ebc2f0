package models

import (
	"log"

	"github.com/kopnusantara/koperasi_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&Cooperative{},
		&FinancialReport{}, &ReportLineItem{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
