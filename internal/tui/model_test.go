package tui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"property-backoffice/internal/client"
	"property-backoffice/internal/models"
	"property-backoffice/internal/phone"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI is an in-memory back end; fail makes the next write return an error
type fakeAPI struct {
	mu         sync.Mutex
	properties []models.Property
	contacts   []models.Contact
	nextID     uint
	fail       error
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		properties: []models.Property{
			{ID: 1, PropertyName: "Oak Duplex", Address: "12 Oak St", Status: models.PropertyStatusActive},
			{ID: 2, PropertyName: "Birch Flats", Address: "4 Birch Rd", Status: models.PropertyStatusVacant},
		},
		contacts: []models.Contact{
			{ID: 1, Name: "Pat Smith", Phone: "5551234567", ContactType: "owner"},
		},
		nextID: 100,
	}
}

func (f *fakeAPI) takeFailure() error {
	err := f.fail
	f.fail = nil
	return err
}

func (f *fakeAPI) ListProperties(context.Context, client.PropertyQuery) ([]models.Property, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Property(nil), f.properties...), nil
}

func (f *fakeAPI) CreateProperty(_ context.Context, p *models.Property) (*models.Property, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.takeFailure(); err != nil {
		return nil, err
	}
	f.nextID++
	saved := *p
	saved.ID = f.nextID
	f.properties = append(f.properties, saved)
	return &saved, nil
}

func (f *fakeAPI) UpdateProperty(_ context.Context, id uint, fields map[string]interface{}) (*models.Property, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.takeFailure(); err != nil {
		return nil, err
	}
	for i := range f.properties {
		if f.properties[i].ID == id {
			if name, ok := fields["property_name"].(string); ok {
				f.properties[i].PropertyName = name
			}
			saved := f.properties[i]
			return &saved, nil
		}
	}
	return nil, &client.APIError{Status: 404, Message: "not_found"}
}

func (f *fakeAPI) DeleteProperty(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.takeFailure(); err != nil {
		return err
	}
	for i := range f.properties {
		if f.properties[i].ID == id {
			f.properties = append(f.properties[:i], f.properties[i+1:]...)
			return nil
		}
	}
	return &client.APIError{Status: 404, Message: "not_found"}
}

func (f *fakeAPI) ListContacts(context.Context, string, string) ([]models.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Contact(nil), f.contacts...), nil
}

func (f *fakeAPI) CreateContact(_ context.Context, c *models.Contact) (*models.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.takeFailure(); err != nil {
		return nil, err
	}
	saved := *c
	saved.Phone = phone.Normalize(saved.Phone)
	if !phone.Valid(saved.Phone) {
		return nil, &client.APIError{Status: 400, Message: "phone must have 10 digits", Field: "phone"}
	}
	f.nextID++
	saved.ID = f.nextID
	f.contacts = append(f.contacts, saved)
	return &saved, nil
}

func (f *fakeAPI) UpdateContact(_ context.Context, id uint, fields map[string]interface{}) (*models.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.takeFailure(); err != nil {
		return nil, err
	}
	for i := range f.contacts {
		if f.contacts[i].ID == id {
			if name, ok := fields["name"].(string); ok {
				f.contacts[i].Name = name
			}
			saved := f.contacts[i]
			return &saved, nil
		}
	}
	return nil, &client.APIError{Status: 404, Message: "not_found"}
}

func (f *fakeAPI) DeleteContact(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.takeFailure()
}

func key(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press sends one key and returns the model with the command it produced
func press(t *testing.T, m Model, k string) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(key(k))
	model, ok := next.(Model)
	require.True(t, ok)
	return model, cmd
}

// deliver runs cmd and feeds its message back into the model
func deliver(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	require.NotNil(t, cmd)
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			m = deliver(t, m, c)
		}
		return m
	}
	next, _ := m.Update(msg)
	return next.(Model)
}

func loaded(t *testing.T, api *fakeAPI) Model {
	t.Helper()
	m := New(api, time.Second)
	return deliver(t, m, m.Init())
}

func TestInit_LoadsBothTabs(t *testing.T) {
	m := loaded(t, newFakeAPI())

	assert.Equal(t, 2, m.properties.Len())
	assert.Equal(t, 1, m.contacts.Len())
	// sorted by name
	assert.Equal(t, []string{"2", "1"}, m.visible)
	assert.Contains(t, m.View(), "Birch Flats")

	m, _ = press(t, m, "tab")
	assert.Equal(t, contactsTab, m.tab)
	assert.Contains(t, m.View(), "(555) 123-4567")
}

func TestCreate_ShowsTempRowThenCommits(t *testing.T) {
	api := newFakeAPI()
	m := loaded(t, api)

	m, _ = press(t, m, "n")
	require.Equal(t, inputCreate, m.mode)
	m, _ = press(t, m, "Cedar Court")
	m, save := press(t, m, "enter")

	assert.Equal(t, inputNone, m.mode)
	require.Equal(t, 3, m.properties.Len(), "row appears before the server answers")
	assert.Contains(t, m.View(), "…")

	m = deliver(t, m, save)
	got, ok := m.properties.Get("101")
	require.True(t, ok)
	assert.Equal(t, "Cedar Court", got.PropertyName)
	assert.NotContains(t, strings.Join(m.visible, ","), "tmp-")
	assert.Empty(t, m.properties.Banner())
}

func TestCreate_RollbackShowsDismissibleBanner(t *testing.T) {
	api := newFakeAPI()
	m := loaded(t, api)
	m, _ = press(t, m, "tab")

	m, _ = press(t, m, "n")
	m, _ = press(t, m, "Short Phone, 555-1234")
	m, save := press(t, m, "enter")
	require.Equal(t, 2, m.contacts.Len())

	m = deliver(t, m, save)
	assert.Equal(t, 1, m.contacts.Len(), "temp row removed")
	assert.Contains(t, m.View(), "create failed")
	assert.Contains(t, m.View(), "phone must have 10 digits")

	m, _ = press(t, m, "x")
	assert.NotContains(t, m.View(), "create failed")
}

func TestRename_RollbackRestoresName(t *testing.T) {
	api := newFakeAPI()
	m := loaded(t, api)

	// cursor is on Birch Flats
	m, _ = press(t, m, "e")
	require.Equal(t, inputEdit, m.mode)
	assert.Equal(t, "Birch Flats", m.input.Value())
	m.input.SetValue("Birch Lofts")
	api.fail = errors.New("api error 500: internal error")
	m, save := press(t, m, "enter")

	got, _ := m.properties.Get("2")
	assert.Equal(t, "Birch Lofts", got.PropertyName, "applied in place right away")

	m = deliver(t, m, save)
	got, _ = m.properties.Get("2")
	assert.Equal(t, "Birch Flats", got.PropertyName)
	assert.Contains(t, m.properties.Banner(), "update failed")
}

func TestRename_Commits(t *testing.T) {
	api := newFakeAPI()
	m := loaded(t, api)

	m, _ = press(t, m, "down")
	m, _ = press(t, m, "e")
	assert.Equal(t, "Oak Duplex", m.input.Value())
	m.input.SetValue("Oak Triplex")
	m, save := press(t, m, "enter")
	m = deliver(t, m, save)

	got, _ := m.properties.Get("1")
	assert.Equal(t, "Oak Triplex", got.PropertyName)
	assert.Equal(t, "Oak Triplex", api.properties[0].PropertyName)
}

func TestDelete_RemovesAtOnceAndRestoresOnFailure(t *testing.T) {
	api := newFakeAPI()
	m := loaded(t, api)

	api.fail = errors.New("connection refused")
	m, remove := press(t, m, "d")
	assert.Equal(t, []string{"1"}, m.visible)

	m = deliver(t, m, remove)
	assert.Equal(t, []string{"2", "1"}, m.visible)
	assert.Contains(t, m.properties.Banner(), "delete failed")

	m, remove = press(t, m, "d")
	m = deliver(t, m, remove)
	assert.Equal(t, []string{"1"}, m.visible)
	assert.Len(t, api.properties, 1)
}

func TestFilterAndSort(t *testing.T) {
	m := loaded(t, newFakeAPI())

	m, _ = press(t, m, "/")
	m, _ = press(t, m, "oak")
	assert.Equal(t, []string{"1"}, m.visible, "filter applies while typing")
	m, _ = press(t, m, "esc")
	assert.Len(t, m.visible, 2, "esc restores the previous filter")

	m, _ = press(t, m, "/")
	m, _ = press(t, m, "birch")
	m, _ = press(t, m, "enter")
	assert.Equal(t, []string{"2"}, m.visible)
	m, _ = press(t, m, "/")
	m.input.SetValue("")
	m, _ = press(t, m, "enter")

	m, _ = press(t, m, "s")
	assert.Equal(t, "sorted by status", m.status)
	assert.Equal(t, []string{"1", "2"}, m.visible)
	m, _ = press(t, m, "s")
	assert.Equal(t, []string{"2", "1"}, m.visible, "newest first")
}

func TestQuit(t *testing.T) {
	m := loaded(t, newFakeAPI())
	_, cmd := press(t, m, "q")
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}
