package dto

type CreateBoxRequestDTO struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type UpdateBoxRequestDTO struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
	QRID        string `json:"qr_id"`
}

type RebindQRRequestDTO struct {
	QRID string `json:"qr_id" binding:"required"`
}

type DeletePhotoRequestDTO struct {
	PhotoURL string `json:"photo_url" binding:"required"`
}

type SetupRequestDTO struct {
	DatabaseID string `json:"database_id"`
}
