package infra

import (
	"github.com/tnqbao/gau-box-service/config"
)

type Infra struct {
	Notion  *NotionClient
	Storage *StorageClient
	Logger  *LoggerClient
}

var infraInstance *Infra

func InitInfra(cfg *config.Config) *Infra {
	if infraInstance != nil {
		return infraInstance
	}

	logger := InitLoggerClient(cfg.EnvConfig)
	if logger == nil {
		panic("Failed to initialize Logger service")
	}

	notion := InitNotionClient(cfg.EnvConfig)
	if notion == nil {
		panic("Failed to initialize record store client")
	}

	storage := InitStorageClient(cfg.EnvConfig)
	if storage == nil {
		panic("Failed to initialize storage client")
	}

	infraInstance = &Infra{
		Notion:  notion,
		Storage: storage,
		Logger:  logger,
	}

	return infraInstance
}

func GetClient() *Infra {
	if infraInstance == nil {
		panic("Infra not initialized. Call InitInfra() first.")
	}
	return infraInstance
}
