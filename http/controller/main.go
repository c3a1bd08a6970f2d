package controller

import (
	"github.com/tnqbao/gau-box-service/config"
	"github.com/tnqbao/gau-box-service/infra"
	"github.com/tnqbao/gau-box-service/provider"
	"github.com/tnqbao/gau-box-service/repository"
)

type Controller struct {
	Config     *config.Config
	Infra      *infra.Infra
	Repository *repository.Repository
	BoxSync    *provider.BoxSync
}

func NewController(config *config.Config, infra *infra.Infra, repo *repository.Repository, boxSync *provider.BoxSync) *Controller {
	if repo == nil {
		panic("Failed to initialize Repository")
	}
	if boxSync == nil {
		panic("Failed to initialize BoxSync provider")
	}
	return &Controller{
		Config:     config,
		Infra:      infra,
		Repository: repo,
		BoxSync:    boxSync,
	}
}
