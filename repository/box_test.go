package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tnqbao/gau-box-service/entity"
	"github.com/tnqbao/gau-box-service/infra"
	"github.com/tnqbao/gau-box-service/utils"
)

// -------- test fakes --------

type fakeRecordStore struct {
	pages         map[string]*infra.Page
	queryResults  []infra.Page
	queryCalls    int
	retrieveCalls int
	lastFilter    *infra.QueryFilter
	lastSorts     []infra.QuerySort
	createdProps  map[string]infra.Property
}

func (f *fakeRecordStore) RetrievePage(ctx context.Context, pageID string) (*infra.Page, error) {
	f.retrieveCalls++
	page, ok := f.pages[pageID]
	if !ok {
		return nil, fmt.Errorf("record store returned 404: page not found")
	}
	return page, nil
}

func (f *fakeRecordStore) CreatePage(ctx context.Context, databaseID string, properties map[string]infra.Property) (*infra.Page, error) {
	f.createdProps = properties
	page := inboundPage("page-new", properties)
	if f.pages == nil {
		f.pages = map[string]*infra.Page{}
	}
	f.pages[page.ID] = page
	return page, nil
}

func (f *fakeRecordStore) UpdatePage(ctx context.Context, pageID string, properties map[string]infra.Property) (*infra.Page, error) {
	return f.pages[pageID], nil
}

func (f *fakeRecordStore) QueryDatabase(ctx context.Context, databaseID string, filter *infra.QueryFilter, sorts []infra.QuerySort) ([]infra.Page, error) {
	f.queryCalls++
	f.lastFilter = filter
	f.lastSorts = sorts
	return f.queryResults, nil
}

func (f *fakeRecordStore) CreateDatabase(ctx context.Context, parentPageID, title string, properties map[string]json.RawMessage) (string, error) {
	return "db-created", nil
}

// inboundPage converts an outbound property patch into the shape the record
// store would return for it: tagged types and rendered plain_text.
func inboundPage(id string, props map[string]infra.Property) *infra.Page {
	out := make(map[string]infra.Property, len(props))
	for name, p := range props {
		q := p
		switch {
		case p.Title != nil:
			q.Type = "title"
			q.Title = inboundRichText(p.Title)
		case p.RichText != nil:
			q.Type = "rich_text"
			q.RichText = inboundRichText(p.RichText)
		case p.Select != nil:
			q.Type = "select"
		case p.Files != nil:
			q.Type = "files"
		}
		out[name] = q
	}
	return &infra.Page{ID: id, Properties: out}
}

func inboundRichText(fragments []infra.RichText) []infra.RichText {
	out := make([]infra.RichText, 0, len(fragments))
	for _, f := range fragments {
		out = append(out, infra.RichText{PlainText: f.Text.Content})
	}
	return out
}

func newTestRepo(store *fakeRecordStore, now *time.Time) *BoxRepository {
	comments := &fakeCommentStore{comments: []infra.Comment{
		{RichText: []infra.RichText{{PlainText: DatabaseIDCommentPrefix + "db-1"}}},
	}}
	locator := NewDatabaseLocator(comments, "parent-page")
	clock := time.Now
	if now != nil {
		clock = func() time.Time { return *now }
	}
	return NewBoxRepository(store, locator, NewBoxCache(DefaultCacheTTL, clock))
}

// -------- mapping --------

func TestPageToBox_RoundTrip(t *testing.T) {
	name := "Kitchen"
	description := "Plates and glasses"
	status := entity.StatusSealed
	qrID := "0b66003c"
	photos := []infra.FileRef{
		{Type: "external", Name: "a.jpg", External: &infra.FileLink{URL: "https://cdn/photos/1/a.jpg"}},
		{Type: "file", Name: "b.jpg", File: &infra.FileLink{URL: "https://cdn/photos/1/b.jpg"}},
	}

	props := BuildProperties(BoxPatch{
		Name:        &name,
		Description: &description,
		Status:      &status,
		QRID:        &qrID,
		Photos:      &photos,
	})

	box := PageToBox(inboundPage("page-1", props))

	assert.Equal(t, "page-1", box.ID)
	assert.Equal(t, name, box.Name)
	assert.Equal(t, description, box.Description)
	assert.Equal(t, status, box.Status)
	assert.Equal(t, qrID, box.QRID)
	assert.Equal(t, []string{"https://cdn/photos/1/a.jpg", "https://cdn/photos/1/b.jpg"}, box.Photos)
}

func TestPageToBox_MissingPropertiesDefaultToEmpty(t *testing.T) {
	box := PageToBox(&infra.Page{ID: "page-1", Properties: map[string]infra.Property{}})

	assert.Equal(t, "page-1", box.ID)
	assert.Empty(t, box.Name)
	assert.Empty(t, box.Description)
	assert.Empty(t, box.Status)
	assert.Empty(t, box.QRID)
	assert.NotNil(t, box.Photos)
	assert.Empty(t, box.Photos)
}

func TestPageToBox_UnexpectedPropertyKindsDefaultToEmpty(t *testing.T) {
	box := PageToBox(&infra.Page{ID: "page-1", Properties: map[string]infra.Property{
		PropName:   {Type: "rich_text", RichText: []infra.RichText{{PlainText: "wrong kind"}}},
		PropStatus: {Type: "select", Select: nil},
		PropQRID:   {Type: "select", Select: &infra.SelectOption{Name: "not-a-qr"}},
	}})

	assert.Empty(t, box.Name)
	assert.Empty(t, box.Status)
	assert.Empty(t, box.QRID)
}

func TestPhotoURLs_FiltersEntriesWithoutURL(t *testing.T) {
	urls := PhotoURLs([]infra.FileRef{
		{Type: "file", File: &infra.FileLink{URL: "https://cdn/a.jpg"}},
		{Type: "external", External: &infra.FileLink{URL: "https://cdn/b.jpg"}},
		{Type: "external"},
		{Type: "file", File: &infra.FileLink{}},
	})
	assert.Equal(t, []string{"https://cdn/a.jpg", "https://cdn/b.jpg"}, urls)
}

func TestBuildProperties_OmitsAbsentFields(t *testing.T) {
	qrID := "0b66003c"
	props := BuildProperties(BoxPatch{QRID: &qrID})

	require.Len(t, props, 1)
	require.Contains(t, props, PropQRID)
	assert.Equal(t, qrID, props[PropQRID].RichText[0].Text.Content)
}

// -------- lookups and cache --------

func TestGetByQRID_CachesUntilTTL(t *testing.T) {
	now := time.Now()
	store := &fakeRecordStore{queryResults: []infra.Page{
		*inboundPage("page-1", BuildProperties(boxPatchWithQR("0b66003c"))),
	}}
	repo := newTestRepo(store, &now)
	ctx := context.Background()

	box, err := repo.GetByQRID(ctx, "0b66003c")
	require.NoError(t, err)
	require.NotNil(t, box)
	assert.Equal(t, 1, store.queryCalls)
	require.NotNil(t, store.lastFilter)
	assert.Equal(t, PropQRID, store.lastFilter.Property)
	assert.Equal(t, "0b66003c", store.lastFilter.RichText.Equals)

	_, err = repo.GetByQRID(ctx, "0b66003c")
	require.NoError(t, err)
	assert.Equal(t, 1, store.queryCalls, "second read within the TTL must be served from cache")

	now = now.Add(DefaultCacheTTL + time.Second)
	_, err = repo.GetByQRID(ctx, "0b66003c")
	require.NoError(t, err)
	assert.Equal(t, 2, store.queryCalls, "read past the TTL must hit the record store")
}

func TestGetByQRID_NotFoundIsNilNotError(t *testing.T) {
	repo := newTestRepo(&fakeRecordStore{}, nil)

	box, err := repo.GetByQRID(context.Background(), "0b66003c")
	require.NoError(t, err)
	assert.Nil(t, box)
}

func TestGetByID_ArchivedIsNil(t *testing.T) {
	store := &fakeRecordStore{pages: map[string]*infra.Page{
		"page-1": {ID: "page-1", Archived: true, Properties: map[string]infra.Property{}},
	}}
	repo := newTestRepo(store, nil)

	box, err := repo.GetByID(context.Background(), "page-1")
	require.NoError(t, err)
	assert.Nil(t, box)
}

func TestList_ExcludesArchivedAndSortsByName(t *testing.T) {
	store := &fakeRecordStore{queryResults: []infra.Page{
		*inboundPage("page-1", BuildProperties(boxPatchWithQR("0b66003c"))),
		{ID: "page-2", Archived: true, Properties: map[string]infra.Property{}},
		{ID: "page-3", InTrash: true, Properties: map[string]infra.Property{}},
	}}
	repo := newTestRepo(store, nil)

	boxes, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, boxes, 1)
	assert.Equal(t, "page-1", boxes[0].ID)

	require.Len(t, store.lastSorts, 1)
	assert.Equal(t, PropName, store.lastSorts[0].Property)
	assert.Equal(t, "ascending", store.lastSorts[0].Direction)
}

// -------- creation --------

func TestCreate_AssignsQRIDAndPreparingStatus(t *testing.T) {
	store := &fakeRecordStore{}
	repo := newTestRepo(store, nil)

	box, err := repo.Create(context.Background(), "Kitchen", "Plates")
	require.NoError(t, err)
	require.NotNil(t, box)

	require.Contains(t, store.createdProps, PropQRID)
	created := store.createdProps[PropQRID].RichText[0].Text.Content
	assert.True(t, utils.IsValidQRID(created), "generated QR id %q must be valid", created)

	require.Contains(t, store.createdProps, PropStatus)
	assert.Equal(t, entity.StatusPreparing, store.createdProps[PropStatus].Select.Name)

	assert.Equal(t, "Kitchen", box.Name)
	assert.Equal(t, "Plates", box.Description)
	assert.Equal(t, created, box.QRID)
	assert.Empty(t, box.Photos)
}

func boxPatchWithQR(qrID string) BoxPatch {
	name := "Kitchen"
	description := "Plates"
	status := entity.StatusPreparing
	return BoxPatch{
		Name:        &name,
		Description: &description,
		Status:      &status,
		QRID:        &qrID,
	}
}
