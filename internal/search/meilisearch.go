package search

import (
	"errors"
	"fmt"
	"log"
	"property-backoffice/internal/models"
	"property-backoffice/internal/phone"
	"strconv"

	"github.com/meilisearch/meilisearch-go"
)

// Index names
const (
	IndexProperties = "properties"
	IndexContacts   = "contacts"
)

// ErrDisabled is returned by search calls when no engine is configured
var ErrDisabled = errors.New("search is not configured")

// ErrUnknownIndex is returned for an index name other than properties or contacts
var ErrUnknownIndex = errors.New("unknown search index")

// Engine keeps the search indexes in step with the database and queries them
type Engine interface {
	IndexProperty(p *models.Property) error
	DeleteProperty(id uint) error
	IndexContact(c *models.Contact) error
	DeleteContact(id uint) error
	ReindexAll(properties []models.Property, contacts []models.Contact) error
	Search(req Request) (*Result, error)
}

// Result is one page of hits from a single index
type Result struct {
	Index     string                   `json:"index"`
	Query     string                   `json:"query"`
	Hits      []map[string]interface{} `json:"hits"`
	TotalHits int64                    `json:"total_hits"`
}

type propertyDocument struct {
	ID           uint   `json:"id"`
	PropertyName string `json:"property_name"`
	Address      string `json:"address"`
	City         string `json:"city"`
	State        string `json:"state"`
	Owner        string `json:"owner"`
	PropertyType string `json:"property_type"`
	Status       string `json:"status"`
}

type contactDocument struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	PhoneDigits string `json:"phone_digits"`
	Email       string `json:"email"`
	ContactType string `json:"contact_type"`
}

func newPropertyDocument(p *models.Property) propertyDocument {
	return propertyDocument{
		ID:           p.ID,
		PropertyName: p.PropertyName,
		Address:      p.FullAddress(),
		City:         p.City,
		State:        p.State,
		Owner:        p.Owner,
		PropertyType: p.PropertyType,
		Status:       string(p.Status),
	}
}

func newContactDocument(c *models.Contact) contactDocument {
	return contactDocument{
		ID:          c.ID,
		Name:        c.Name,
		Phone:       phone.Format(c.Phone),
		PhoneDigits: c.Phone,
		Email:       c.Email,
		ContactType: c.ContactType,
	}
}

// SearchClient is the Meilisearch Engine
type SearchClient struct {
	client *meilisearch.Client
}

func NewSearchClient(host, apiKey string) *SearchClient {
	client := meilisearch.NewClient(meilisearch.ClientConfig{
		Host:   host,
		APIKey: apiKey,
	})
	return &SearchClient{client: client}
}

type indexSettings struct {
	uid        string
	searchable []string
	filterable []string
}

var indexes = []indexSettings{
	{
		uid:        IndexProperties,
		searchable: []string{"property_name", "address", "owner", "city"},
		filterable: []string{"status", "state", "property_type"},
	},
	{
		uid:        IndexContacts,
		searchable: []string{"name", "email", "phone_digits", "phone"},
		filterable: []string{"contact_type"},
	},
}

// InitIndexes creates both indexes and applies their settings
func (s *SearchClient) InitIndexes() error {
	for _, idx := range indexes {
		_, err := s.client.CreateIndex(&meilisearch.IndexConfig{
			Uid:        idx.uid,
			PrimaryKey: "id",
		})
		// Creating an existing index fails asynchronously, so the enqueue
		// error is the only one worth reporting.
		if err != nil {
			return fmt.Errorf("create index %s: %w", idx.uid, err)
		}
		searchable := idx.searchable
		if _, err := s.client.Index(idx.uid).UpdateSearchableAttributes(&searchable); err != nil {
			return fmt.Errorf("searchable attributes %s: %w", idx.uid, err)
		}
		filterable := idx.filterable
		if _, err := s.client.Index(idx.uid).UpdateFilterableAttributes(&filterable); err != nil {
			return fmt.Errorf("filterable attributes %s: %w", idx.uid, err)
		}
	}
	return nil
}

// IndexProperty adds or replaces a property document
func (s *SearchClient) IndexProperty(p *models.Property) error {
	_, err := s.client.Index(IndexProperties).AddDocuments([]propertyDocument{newPropertyDocument(p)})
	return err
}

// DeleteProperty removes a property document
func (s *SearchClient) DeleteProperty(id uint) error {
	_, err := s.client.Index(IndexProperties).DeleteDocument(strconv.FormatUint(uint64(id), 10))
	return err
}

// IndexContact adds or replaces a contact document
func (s *SearchClient) IndexContact(c *models.Contact) error {
	_, err := s.client.Index(IndexContacts).AddDocuments([]contactDocument{newContactDocument(c)})
	return err
}

// DeleteContact removes a contact document
func (s *SearchClient) DeleteContact(id uint) error {
	_, err := s.client.Index(IndexContacts).DeleteDocument(strconv.FormatUint(uint64(id), 10))
	return err
}

// ReindexAll replaces the content of both indexes
func (s *SearchClient) ReindexAll(properties []models.Property, contacts []models.Contact) error {
	propertyDocs := make([]propertyDocument, 0, len(properties))
	for i := range properties {
		propertyDocs = append(propertyDocs, newPropertyDocument(&properties[i]))
	}
	contactDocs := make([]contactDocument, 0, len(contacts))
	for i := range contacts {
		contactDocs = append(contactDocs, newContactDocument(&contacts[i]))
	}

	if _, err := s.client.Index(IndexProperties).DeleteAllDocuments(); err != nil {
		return err
	}
	if len(propertyDocs) > 0 {
		if _, err := s.client.Index(IndexProperties).AddDocuments(propertyDocs); err != nil {
			return err
		}
	}
	if _, err := s.client.Index(IndexContacts).DeleteAllDocuments(); err != nil {
		return err
	}
	if len(contactDocs) > 0 {
		if _, err := s.client.Index(IndexContacts).AddDocuments(contactDocs); err != nil {
			return err
		}
	}
	log.Printf("[Search] Reindexed %d properties and %d contacts", len(propertyDocs), len(contactDocs))
	return nil
}

// Search queries one index
func (s *SearchClient) Search(req Request) (*Result, error) {
	req = req.normalize()
	if req.Index != IndexProperties && req.Index != IndexContacts {
		return nil, fmt.Errorf("%w: %q", ErrUnknownIndex, req.Index)
	}

	searchReq := &meilisearch.SearchRequest{
		Limit:  req.Limit,
		Offset: req.Offset,
	}
	if filter := req.filter(); filter != "" {
		searchReq.Filter = filter
	}

	searchRes, err := s.client.Index(req.Index).Search(req.Query, searchReq)
	if err != nil {
		return nil, err
	}

	hits := make([]map[string]interface{}, 0, len(searchRes.Hits))
	for _, hit := range searchRes.Hits {
		if m, ok := hit.(map[string]interface{}); ok {
			hits = append(hits, m)
		}
	}
	return &Result{
		Index:     req.Index,
		Query:     req.Query,
		Hits:      hits,
		TotalHits: searchRes.EstimatedTotalHits,
	}, nil
}

// Noop is the Engine used when Meilisearch is not configured. Index updates
// succeed silently; queries report ErrDisabled.
type Noop struct{}

func (Noop) IndexProperty(*models.Property) error { return nil }
func (Noop) DeleteProperty(uint) error            { return nil }
func (Noop) IndexContact(*models.Contact) error   { return nil }
func (Noop) DeleteContact(uint) error             { return nil }

func (Noop) ReindexAll([]models.Property, []models.Contact) error { return ErrDisabled }
func (Noop) Search(Request) (*Result, error)                      { return nil, ErrDisabled }
