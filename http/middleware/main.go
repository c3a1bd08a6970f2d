package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/tnqbao/gau-box-service/http/controller"
)

type Middlewares struct {
	CORSMiddleware       gin.HandlerFunc
	QRRedirectMiddleware gin.HandlerFunc
}

func NewMiddlewares(ctrl *controller.Controller) (*Middlewares, error) {
	return &Middlewares{
		CORSMiddleware:       CORSMiddleware(ctrl.Config.EnvConfig),
		QRRedirectMiddleware: QRRedirectMiddleware(),
	}, nil
}
