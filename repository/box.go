package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tnqbao/gau-box-service/entity"
	"github.com/tnqbao/gau-box-service/infra"
	"github.com/tnqbao/gau-box-service/utils"
)

// Property names of the boxes database schema. The names match the original
// collection so existing databases keep working.
const (
	PropName        = "Nom"
	PropDescription = "Description"
	PropStatus      = "Statut"
	PropQRID        = "QR_ID"
	PropPhotos      = "Photos"
)

const boxesDatabaseTitle = "Boxes"

// RecordStore is the slice of the record store the box adapter needs.
type RecordStore interface {
	RetrievePage(ctx context.Context, pageID string) (*infra.Page, error)
	CreatePage(ctx context.Context, databaseID string, properties map[string]infra.Property) (*infra.Page, error)
	UpdatePage(ctx context.Context, pageID string, properties map[string]infra.Property) (*infra.Page, error)
	QueryDatabase(ctx context.Context, databaseID string, filter *infra.QueryFilter, sorts []infra.QuerySort) ([]infra.Page, error)
	CreateDatabase(ctx context.Context, parentPageID, title string, properties map[string]json.RawMessage) (string, error)
}

// BoxRepository maps between the record store's page representation and the
// Box entity, with a short-lived read cache in front of lookups.
type BoxRepository struct {
	store   RecordStore
	locator *DatabaseLocator
	cache   *BoxCache
}

func NewBoxRepository(store RecordStore, locator *DatabaseLocator, cache *BoxCache) *BoxRepository {
	return &BoxRepository{
		store:   store,
		locator: locator,
		cache:   cache,
	}
}

func cacheKeyID(id string) string     { return "box:" + id }
func cacheKeyQRID(qrID string) string { return "box:qr:" + qrID }

func plainText(fragments []infra.RichText) string {
	if len(fragments) == 0 {
		return ""
	}
	return fragments[0].PlainText
}

// PhotoURLs extracts the usable URL of each files-property entry: the
// uploaded-file URL or the external-link URL, whichever is present. Entries
// with neither are filtered out.
func PhotoURLs(files []infra.FileRef) []string {
	urls := make([]string, 0, len(files))
	for _, f := range files {
		switch {
		case f.File != nil && f.File.URL != "":
			urls = append(urls, f.File.URL)
		case f.External != nil && f.External.URL != "":
			urls = append(urls, f.External.URL)
		}
	}
	return urls
}

// QRIDFromPage reads the QR identifier off a raw page, empty when unset.
func QRIDFromPage(page *infra.Page) string {
	prop, ok := page.Properties[PropQRID]
	if !ok || prop.Type != "rich_text" {
		return ""
	}
	return plainText(prop.RichText)
}

// PhotoFilesFromPage reads the raw files-property entries off a page.
func PhotoFilesFromPage(page *infra.Page) []infra.FileRef {
	prop, ok := page.Properties[PropPhotos]
	if !ok || prop.Type != "files" {
		return nil
	}
	return prop.Files
}

// PageToBox maps a raw page to a Box. Absent or unexpectedly shaped
// properties default to empty values; this never fails.
func PageToBox(page *infra.Page) *entity.Box {
	box := &entity.Box{
		ID:     page.ID,
		Photos: []string{},
	}

	for name, prop := range page.Properties {
		switch name {
		case PropName:
			if prop.Type == "title" {
				box.Name = plainText(prop.Title)
			}
		case PropDescription:
			if prop.Type == "rich_text" {
				box.Description = plainText(prop.RichText)
			}
		case PropStatus:
			if prop.Type == "select" && prop.Select != nil {
				box.Status = prop.Select.Name
			}
		case PropQRID:
			if prop.Type == "rich_text" {
				box.QRID = plainText(prop.RichText)
			}
		case PropPhotos:
			if prop.Type == "files" {
				box.Photos = PhotoURLs(prop.Files)
			}
		}
	}

	return box
}

// BoxPatch is a partial update. Nil fields are omitted from the resulting
// property patch so unrelated fields are never overwritten.
type BoxPatch struct {
	Name        *string
	Description *string
	Status      *string
	QRID        *string
	Photos      *[]infra.FileRef
}

func titleProperty(content string) infra.Property {
	return infra.Property{Title: []infra.RichText{{Text: &infra.TextContent{Content: content}}}}
}

func richTextProperty(content string) infra.Property {
	return infra.Property{RichText: []infra.RichText{{Text: &infra.TextContent{Content: content}}}}
}

func selectProperty(name string) infra.Property {
	return infra.Property{Select: &infra.SelectOption{Name: name}}
}

// BuildProperties translates a partial Box into a property patch. Only the
// fields present on the patch appear in the result.
func BuildProperties(patch BoxPatch) map[string]infra.Property {
	properties := make(map[string]infra.Property)
	if patch.Name != nil {
		properties[PropName] = titleProperty(*patch.Name)
	}
	if patch.Description != nil {
		properties[PropDescription] = richTextProperty(*patch.Description)
	}
	if patch.Status != nil {
		properties[PropStatus] = selectProperty(*patch.Status)
	}
	if patch.QRID != nil {
		properties[PropQRID] = richTextProperty(*patch.QRID)
	}
	if patch.Photos != nil {
		files := *patch.Photos
		if files == nil {
			files = []infra.FileRef{}
		}
		properties[PropPhotos] = infra.Property{Type: "files", Files: files}
	}
	return properties
}

// GetByID returns the box for a page id, nil when the record is archived.
func (r *BoxRepository) GetByID(ctx context.Context, id string) (*entity.Box, error) {
	if box, ok := r.cache.Get(cacheKeyID(id)); ok {
		return box, nil
	}

	page, err := r.store.RetrievePage(ctx, id)
	if err != nil {
		return nil, err
	}
	if page.Archived || page.InTrash {
		return nil, nil
	}

	box := PageToBox(page)
	r.cache.Set(cacheKeyID(id), box)
	return box, nil
}

// GetByQRID returns the box bound to a QR identifier, nil when no box
// matches. Transport failures are the only error case.
func (r *BoxRepository) GetByQRID(ctx context.Context, qrID string) (*entity.Box, error) {
	if box, ok := r.cache.Get(cacheKeyQRID(qrID)); ok {
		return box, nil
	}

	databaseID, err := r.locator.Locate(ctx)
	if err != nil {
		return nil, err
	}
	if databaseID == "" {
		return nil, fmt.Errorf("database ID not found")
	}

	filter := &infra.QueryFilter{Property: PropQRID}
	filter.RichText.Equals = qrID

	pages, err := r.store.QueryDatabase(ctx, databaseID, filter, nil)
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, nil
	}
	page := pages[0]
	if page.Archived || page.InTrash {
		return nil, nil
	}

	box := PageToBox(&page)
	r.cache.Set(cacheKeyQRID(qrID), box)
	return box, nil
}

// List returns all non-archived boxes sorted by name.
func (r *BoxRepository) List(ctx context.Context) ([]*entity.Box, error) {
	databaseID, err := r.locator.Locate(ctx)
	if err != nil {
		return nil, err
	}
	if databaseID == "" {
		return nil, fmt.Errorf("database ID not found")
	}

	pages, err := r.store.QueryDatabase(ctx, databaseID, nil, []infra.QuerySort{
		{Property: PropName, Direction: "ascending"},
	})
	if err != nil {
		return nil, err
	}

	boxes := make([]*entity.Box, 0, len(pages))
	for i := range pages {
		if pages[i].Archived || pages[i].InTrash {
			continue
		}
		boxes = append(boxes, PageToBox(&pages[i]))
	}
	return boxes, nil
}

// Create stores a new box with a freshly generated QR identifier, empty
// photos and Preparing status, and returns the authoritative record.
func (r *BoxRepository) Create(ctx context.Context, name, description string) (*entity.Box, error) {
	databaseID, err := r.locator.Locate(ctx)
	if err != nil {
		return nil, err
	}
	if databaseID == "" {
		return nil, fmt.Errorf("database ID not found")
	}

	qrID := utils.GenerateQRID()
	status := entity.StatusPreparing
	properties := BuildProperties(BoxPatch{
		Name:        &name,
		Description: &description,
		Status:      &status,
		QRID:        &qrID,
	})

	page, err := r.store.CreatePage(ctx, databaseID, properties)
	if err != nil {
		return nil, err
	}

	return r.GetByID(ctx, page.ID)
}

// Invalidate drops both cache keys for a box so the next read is served from
// the record store.
func (r *BoxRepository) Invalidate(id, qrID string) {
	keys := []string{cacheKeyID(id)}
	if qrID != "" {
		keys = append(keys, cacheKeyQRID(qrID))
	}
	r.cache.Invalidate(keys...)
}

// CreateBoxesDatabase creates the boxes collection with the schema the
// adapter expects and returns its id.
func (r *BoxRepository) CreateBoxesDatabase(ctx context.Context, parentPageID string) (string, error) {
	if parentPageID == "" {
		return "", fmt.Errorf("NOTION_PARENT_PAGE_ID is not set")
	}

	properties := map[string]json.RawMessage{
		PropName:        json.RawMessage(`{"title":{}}`),
		PropDescription: json.RawMessage(`{"rich_text":{}}`),
		PropPhotos:      json.RawMessage(`{"files":{}}`),
		PropQRID:        json.RawMessage(`{"rich_text":{}}`),
		PropStatus: json.RawMessage(fmt.Sprintf(
			`{"select":{"options":[{"name":%q,"color":"yellow"},{"name":%q,"color":"green"},{"name":%q,"color":"red"}]}}`,
			entity.StatusPreparing, entity.StatusSealed, entity.StatusOpened,
		)),
	}

	return r.store.CreateDatabase(ctx, parentPageID, boxesDatabaseTitle, properties)
}
