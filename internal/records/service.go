package records

import (
	"bytes"
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/wolfman30/docsmile-suite/internal/taxonomy"
)

// DentalService is a catalog entry that can be booked and billed.
type DentalService struct {
	ID          string            `json:"_id"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Category    taxonomy.Category `json:"category"`
	Price       float64           `json:"price"`
	Duration    int               `json:"duration"`
	Code        string            `json:"code,omitempty"`
	Notes       string            `json:"notes,omitempty"`
	IsActive    bool              `json:"isActive"`
	CreatedAt   string            `json:"createdAt,omitempty"`
	UpdatedAt   string            `json:"updatedAt,omitempty"`
}

// ServiceRef points at a catalog service. On the wire it is either the
// populated service object or its bare id; it encodes back the same way.
type ServiceRef struct {
	ID      string
	Service *DentalService
}

// RefTo builds an id-only reference.
func RefTo(id string) ServiceRef {
	return ServiceRef{ID: id}
}

// Populated builds a reference carrying the full catalog entry.
func Populated(s DentalService) ServiceRef {
	return ServiceRef{ID: s.ID, Service: &s}
}

// Name returns the catalog name when populated.
func (r ServiceRef) Name() string {
	if r.Service == nil {
		return ""
	}
	return r.Service.Name
}

func (r ServiceRef) MarshalJSON() ([]byte, error) {
	if r.Service != nil {
		return json.Marshal(r.Service)
	}
	if r.ID == "" {
		return []byte("null"), nil
	}
	return json.Marshal(r.ID)
}

func (r *ServiceRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*r = ServiceRef{}
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		return nil
	case data[0] == '"':
		return json.Unmarshal(data, &r.ID)
	}
	var s DentalService
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	r.ID = s.ID
	r.Service = &s
	return nil
}

// ServiceInput is the body of a catalog create or update.
type ServiceInput struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Category    taxonomy.Category `json:"category"`
	Price       float64           `json:"price"`
	Duration    int               `json:"duration"`
	Code        string            `json:"code,omitempty"`
	Notes       string            `json:"notes,omitempty"`
}

func (in ServiceInput) Validate() error {
	errs := FieldErrors{}
	requireField(errs, "name", in.Name, "El nombre es requerido")
	requireField(errs, "description", in.Description, "La descripción es requerida")
	if in.Price <= 0 {
		errs.Add("price", "El precio debe ser mayor a 0")
	}
	if in.Duration <= 0 {
		errs.Add("duration", "La duración debe ser mayor a 0")
	}
	if !in.Category.Valid() {
		errs.Add("category", "La categoría no es válida")
	}
	return errs.Err()
}

// Apply copies the input onto s.
func (in ServiceInput) Apply(s *DentalService) {
	s.Name = in.Name
	s.Description = in.Description
	s.Category = in.Category
	s.Price = in.Price
	s.Duration = in.Duration
	s.Code = in.Code
	s.Notes = in.Notes
}

type ServiceQuery struct {
	Page     int
	Limit    int
	Search   string
	Category taxonomy.Category
	IsActive *bool
}

func (q ServiceQuery) Values() url.Values {
	v := pageValues(q.Page, q.Limit)
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Category != "" {
		v.Set("category", string(q.Category))
	}
	if q.IsActive != nil {
		v.Set("isActive", strconv.FormatBool(*q.IsActive))
	}
	return v
}

type ServicePage struct {
	Services   []DentalService `json:"services"`
	Pagination Pagination      `json:"pagination"`
}

type CategoryCount struct {
	Name  taxonomy.Category `json:"name"`
	Count int               `json:"count"`
}

type CategoryStat struct {
	Category taxonomy.Category `json:"_id"`
	Count    int               `json:"count"`
	AvgPrice float64           `json:"avgPrice"`
}

type ServiceStats struct {
	Total      int            `json:"total"`
	Active     int            `json:"active"`
	Inactive   int            `json:"inactive"`
	ByCategory []CategoryStat `json:"byCategory"`
}
