package controller

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/tnqbao/gau-box-service/http/controller/dto"
	"github.com/tnqbao/gau-box-service/provider"
	"github.com/tnqbao/gau-box-service/utils"
)

func (ctrl *Controller) CreateBox(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateBoxRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSON400(c, "Name is required")
		return
	}

	box, err := ctrl.Repository.BoxRepo.Create(ctx, req.Name, req.Description)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Box] Failed to create box")
		utils.JSON500(c, "Failed to create box: "+err.Error())
		return
	}

	ctrl.Infra.Logger.InfoWithContextf(ctx, "[Box] Created box %s with QR ID %s", box.ID, box.QRID)
	utils.JSON200(c, box)
}

func (ctrl *Controller) ListBoxes(c *gin.Context) {
	ctx := c.Request.Context()

	databaseID, err := ctrl.Repository.Locator.Locate(ctx)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Box] Failed to locate boxes database")
		utils.JSON500(c, err.Error())
		return
	}
	if databaseID == "" {
		utils.JSON404(c, "Database ID not found")
		return
	}

	boxes, err := ctrl.Repository.BoxRepo.List(ctx)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Box] Failed to list boxes")
		utils.JSON500(c, "Failed to fetch boxes: "+err.Error())
		return
	}

	utils.JSON200(c, boxes)
}

func (ctrl *Controller) GetBoxByQRID(c *gin.Context) {
	ctx := c.Request.Context()

	qrID := c.Param("qrId")
	if !utils.IsValidQRID(qrID) {
		utils.JSON400(c, utils.QRIDFormatError)
		return
	}

	box, err := ctrl.Repository.BoxRepo.GetByQRID(ctx, qrID)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Box] Failed to fetch box by QR ID %s", qrID)
		utils.JSON500(c, "Failed to fetch box: "+err.Error())
		return
	}
	if box == nil {
		utils.JSON404(c, "Box not found")
		return
	}

	utils.JSON200(c, box)
}

func (ctrl *Controller) UpdateBox(c *gin.Context) {
	ctx := c.Request.Context()
	boxID := c.Param("id")

	var req dto.UpdateBoxRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSON400(c, "Invalid request body: "+err.Error())
		return
	}

	box, qrChanged, err := ctrl.BoxSync.UpdateBox(ctx, boxID, provider.BoxUpdate{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		QRID:        req.QRID,
	})
	if err != nil {
		if errors.Is(err, provider.ErrInvalidQRID) {
			utils.JSON400(c, err.Error())
			return
		}
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Box] Failed to update box %s", boxID)
		utils.JSON500(c, err.Error())
		return
	}

	data := gin.H{"box": box}
	if qrChanged {
		// Protocol contract with the presentation layer: the client must
		// move to the new canonical path after a QR rebind.
		data["redirect"] = "/box/" + box.QRID
	}
	utils.JSON200(c, data)
}

func (ctrl *Controller) RebindQR(c *gin.Context) {
	ctx := c.Request.Context()
	boxID := c.Param("id")

	var req dto.RebindQRRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSON400(c, "qr_id is required")
		return
	}

	box, qrChanged, err := ctrl.BoxSync.RebindQR(ctx, boxID, req.QRID)
	if err != nil {
		if errors.Is(err, provider.ErrInvalidQRID) {
			utils.JSON400(c, err.Error())
			return
		}
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Box] Failed to rebind QR ID for box %s", boxID)
		utils.JSON500(c, err.Error())
		return
	}

	data := gin.H{"box": box}
	if qrChanged {
		data["redirect"] = "/box/" + box.QRID
	}
	utils.JSON200(c, data)
}

func (ctrl *Controller) UploadPhotos(c *gin.Context) {
	ctx := c.Request.Context()
	boxID := c.Param("id")

	form, err := c.MultipartForm()
	if err != nil {
		utils.JSON400(c, "Failed to read multipart form: "+err.Error())
		return
	}

	fileHeaders := form.File["photos"]
	if len(fileHeaders) == 0 {
		utils.JSON400(c, "No photos provided")
		return
	}

	uploads := make([]provider.PhotoUpload, 0, len(fileHeaders))
	for _, header := range fileHeaders {
		file, err := header.Open()
		if err != nil {
			utils.JSON400(c, "Failed to read photo "+header.Filename+": "+err.Error())
			return
		}
		defer file.Close()

		uploads = append(uploads, provider.PhotoUpload{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
			Reader:      file,
		})
	}

	ctrl.Infra.Logger.InfoWithContextf(ctx, "[Box] Uploading %d photos to box %s", len(uploads), boxID)

	box, err := ctrl.BoxSync.AddPhotos(ctx, boxID, uploads)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Box] Failed to upload photos to box %s", boxID)
		utils.JSON500(c, err.Error())
		return
	}

	utils.JSON200(c, box)
}

func (ctrl *Controller) DeletePhoto(c *gin.Context) {
	ctx := c.Request.Context()
	boxID := c.Param("id")

	var req dto.DeletePhotoRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSON400(c, "photo_url is required")
		return
	}

	box, err := ctrl.BoxSync.DeletePhoto(ctx, boxID, req.PhotoURL)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Box] Failed to delete photo from box %s", boxID)
		utils.JSON500(c, err.Error())
		return
	}

	utils.JSON200(c, box)
}

func (ctrl *Controller) DeleteBox(c *gin.Context) {
	ctx := c.Request.Context()
	boxID := c.Param("id")

	if err := ctrl.BoxSync.DeleteBox(ctx, boxID); err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Box] Failed to delete box %s", boxID)
		utils.JSON500(c, err.Error())
		return
	}

	ctrl.Infra.Logger.InfoWithContextf(ctx, "[Box] Deleted box %s", boxID)
	utils.JSON200(c, gin.H{"success": true})
}
