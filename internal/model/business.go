package model

// StatusActive marks a business that may appear in search results.
const StatusActive = "active"

// BusinessRecord is one registered business as stored in the catalog.
// JSON field names follow the sellers.json document written by the
// registration flow.
type BusinessRecord struct {
	ID          string   `json:"id"`
	Name        string   `json:"nome"`
	Category    string   `json:"categoria"`
	Status      string   `json:"status"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	Address     string   `json:"endereco,omitempty"`
	Phone       string   `json:"telefone,omitempty"`
	WhatsApp    string   `json:"whatsapp,omitempty"`
	Description string   `json:"descricao,omitempty"`
	CreatedAt   string   `json:"created_at,omitempty"`
}

// Active reports whether the record is open for search.
func (b BusinessRecord) Active() bool {
	return b.Status == StatusActive
}

// Located reports whether both coordinates are present.
func (b BusinessRecord) Located() bool {
	return b.Latitude != nil && b.Longitude != nil
}
