package repository

import (
	"github.com/tnqbao/gau-box-service/config"
	"github.com/tnqbao/gau-box-service/infra"
)

type Repository struct {
	BoxRepo *BoxRepository
	Locator *DatabaseLocator
}

var repository *Repository

func InitRepository(cfg *config.Config, infra *infra.Infra) *Repository {
	locator := NewDatabaseLocator(infra.Notion, cfg.EnvConfig.Notion.ParentPageID)
	cache := NewBoxCache(DefaultCacheTTL, nil)

	repository = &Repository{
		BoxRepo: NewBoxRepository(infra.Notion, locator, cache),
		Locator: locator,
	}
	return repository
}

func GetRepository() *Repository {
	if repository == nil {
		panic("repository not initialized")
	}
	return repository
}
