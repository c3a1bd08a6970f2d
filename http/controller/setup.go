package controller

import (
	"github.com/gin-gonic/gin"
	"github.com/tnqbao/gau-box-service/http/controller/dto"
	"github.com/tnqbao/gau-box-service/utils"
)

// GetSetup reports which required record-store environment values are
// present, so the setup flow can tell the operator what is missing.
func (ctrl *Controller) GetSetup(c *gin.Context) {
	env := ctrl.Config.EnvConfig
	utils.JSON200(c, gin.H{
		"has_api_key":        env.Notion.APIKey != "",
		"has_parent_page_id": env.Notion.ParentPageID != "",
	})
}

// PostSetup registers an existing boxes database when a database_id is
// supplied, otherwise creates a fresh one on the parent page and registers
// it. Registration is first-writer-wins either way.
func (ctrl *Controller) PostSetup(c *gin.Context) {
	ctx := c.Request.Context()
	env := ctrl.Config.EnvConfig

	if env.Notion.APIKey == "" {
		utils.JSON400(c, "NOTION_API_KEY is not set in environment variables")
		return
	}
	if env.Notion.ParentPageID == "" {
		utils.JSON400(c, "NOTION_PARENT_PAGE_ID is not set in environment variables")
		return
	}

	// An empty or invalid body means "create a new database".
	var req dto.SetupRequestDTO
	_ = c.ShouldBindJSON(&req)

	if req.DatabaseID != "" {
		if err := ctrl.Repository.Locator.Register(ctx, req.DatabaseID); err != nil {
			ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Setup] Failed to register database ID")
			utils.JSON500(c, err.Error())
			return
		}
		utils.JSON200(c, gin.H{
			"success": true,
			"message": "Database ID set successfully",
		})
		return
	}

	databaseID, err := ctrl.Repository.BoxRepo.CreateBoxesDatabase(ctx, env.Notion.ParentPageID)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Setup] Failed to create boxes database")
		utils.JSON500(c, err.Error())
		return
	}

	if err := ctrl.Repository.Locator.Register(ctx, databaseID); err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Setup] Failed to register created database %s", databaseID)
		utils.JSON500(c, err.Error())
		return
	}

	ctrl.Infra.Logger.InfoWithContextf(ctx, "[Setup] Created boxes database %s", databaseID)
	utils.JSON200(c, gin.H{
		"success":     true,
		"database_id": databaseID,
		"message":     "Database created successfully",
	})
}

// GetStatus reports whether a boxes database is registered and still
// reachable in the record store.
func (ctrl *Controller) GetStatus(c *gin.Context) {
	ctx := c.Request.Context()

	databaseID, err := ctrl.Repository.Locator.Locate(ctx)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Status] Failed to locate boxes database")
		utils.JSON500(c, err.Error())
		return
	}
	if databaseID == "" {
		utils.JSON200(c, gin.H{"has_database": false})
		return
	}

	if err := ctrl.Infra.Notion.RetrieveDatabase(ctx, databaseID); err != nil {
		ctrl.Infra.Logger.WarningWithContextf(ctx, "[Status] Registered database %s is not reachable: %v", databaseID, err)
		utils.JSON200(c, gin.H{
			"has_database": false,
			"error":        "Database not found in record store",
		})
		return
	}

	utils.JSON200(c, gin.H{
		"has_database": true,
		"database_id":  databaseID,
	})
}
