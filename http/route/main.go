package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/tnqbao/gau-box-service/http/controller"
	middlewares "github.com/tnqbao/gau-box-service/http/middleware"
)

func SetupRouter(ctrl *controller.Controller) *gin.Engine {
	r := gin.Default()
	middles, err := middlewares.NewMiddlewares(ctrl)
	if err != nil {
		panic(err)
	}

	r.Use(middles.CORSMiddleware)
	// Bare identifier paths are rewritten before any route matching.
	r.Use(middles.QRRedirectMiddleware)

	r.GET("/setup", ctrl.GetSetup)
	r.POST("/setup", ctrl.PostSetup)
	r.GET("/status", ctrl.GetStatus)

	boxRoutes := r.Group("/boxes")
	{
		boxRoutes.POST("", ctrl.CreateBox)
		boxRoutes.GET("", ctrl.ListBoxes)
		boxRoutes.PUT("/:id", ctrl.UpdateBox)
		boxRoutes.PUT("/:id/qr", ctrl.RebindQR)
		boxRoutes.POST("/:id/photos", ctrl.UploadPhotos)
		boxRoutes.DELETE("/:id/photos", ctrl.DeletePhoto)
		boxRoutes.DELETE("/:id", ctrl.DeleteBox)
	}

	r.GET("/box/:qrId", ctrl.GetBoxByQRID)

	return r
}
