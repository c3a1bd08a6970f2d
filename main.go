package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/tnqbao/gau-box-service/config"
	"github.com/tnqbao/gau-box-service/http/controller"
	routes "github.com/tnqbao/gau-box-service/http/route"
	infraPkg "github.com/tnqbao/gau-box-service/infra"
	"github.com/tnqbao/gau-box-service/provider"
	"github.com/tnqbao/gau-box-service/repository"
)

func main() {
	err := godotenv.Load(".env")
	if err != nil {
		log.Println("No .env file found, continuing with environment variables")
	}

	cfg := config.NewConfig()
	infra := infraPkg.InitInfra(cfg)
	defer infra.Logger.Shutdown(context.Background())

	repo := repository.InitRepository(cfg, infra)
	boxSync := provider.NewBoxSync(infra.Notion, infra.Storage, repo.BoxRepo)

	ctrl := controller.NewController(cfg, infra, repo, boxSync)

	router := routes.SetupRouter(ctrl)

	log.Println("HTTP Server started on :" + cfg.EnvConfig.Port)
	if err := router.Run(":" + cfg.EnvConfig.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
