package main

import (
	"github.com/sicily/campusfound/config"
	"github.com/sicily/campusfound/models"
	"github.com/sicily/campusfound/routes"
	"github.com/sicily/campusfound/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
		&models.User{},
		&models.Admin{},
		&models.Category{},
		&models.Post{},
		&models.PostImage{},
		&models.Comment{},
		&models.Conversation{},
		&models.Message{},
		&models.AuditRecord{},
	)

	r := routes.SetupRouter(db)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
