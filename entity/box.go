package entity

// Box status select values as stored in the record store. The stored values
// keep the original database's option names so existing collections remain
// readable.
const (
	StatusPreparing = "En préparation"
	StatusSealed    = "Scellé"
	StatusOpened    = "Ouvert"
)

// Box is one physical storage container. ID is the record store's page id;
// QRID is the human-facing 8-character hex identifier printed on the label.
type Box struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Status      string   `json:"status"`
	QRID        string   `json:"qr_id"`
	Photos      []string `json:"photos"`
}

// Clone returns a deep copy so cached snapshots cannot be mutated by callers.
func (b *Box) Clone() *Box {
	if b == nil {
		return nil
	}
	c := *b
	c.Photos = append([]string(nil), b.Photos...)
	return &c
}
