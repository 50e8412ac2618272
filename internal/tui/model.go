// Package tui is the terminal front end of the back office. Every edit shows
// up in the table at once and is put back if the API rejects it.
package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"property-backoffice/internal/client"
	"property-backoffice/internal/models"
	"property-backoffice/internal/optimistic"
	"property-backoffice/internal/phone"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// API is the part of the REST client the front end uses
type API interface {
	ListProperties(ctx context.Context, q client.PropertyQuery) ([]models.Property, error)
	CreateProperty(ctx context.Context, p *models.Property) (*models.Property, error)
	UpdateProperty(ctx context.Context, id uint, fields map[string]interface{}) (*models.Property, error)
	DeleteProperty(ctx context.Context, id uint) error
	ListContacts(ctx context.Context, q, contactType string) ([]models.Contact, error)
	CreateContact(ctx context.Context, c *models.Contact) (*models.Contact, error)
	UpdateContact(ctx context.Context, id uint, fields map[string]interface{}) (*models.Contact, error)
	DeleteContact(ctx context.Context, id uint) error
}

var _ API = (*client.Client)(nil)

type tab int

const (
	propertiesTab tab = iota
	contactsTab
)

func (t tab) String() string {
	if t == contactsTab {
		return "Contacts"
	}
	return "Properties"
}

type inputMode int

const (
	inputNone inputMode = iota
	inputFilter
	inputCreate
	inputEdit
)

type sortOption[T any] struct {
	name string
	less func(a, b T) bool
}

var propertySorts = []sortOption[models.Property]{
	{"name", func(a, b models.Property) bool {
		return strings.ToLower(a.PropertyName) < strings.ToLower(b.PropertyName)
	}},
	{"status", func(a, b models.Property) bool { return a.Status < b.Status }},
	{"newest", func(a, b models.Property) bool { return a.ID > b.ID }},
}

var contactSorts = []sortOption[models.Contact]{
	{"name", func(a, b models.Contact) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) }},
	{"type", func(a, b models.Contact) bool { return a.ContactType < b.ContactType }},
	{"newest", func(a, b models.Contact) bool { return a.ID > b.ID }},
}

func idKey(id uint) string { return strconv.FormatUint(uint64(id), 10) }

func propertyKey(p models.Property) string { return idKey(p.ID) }
func contactKey(c models.Contact) string   { return idKey(c.ID) }

// Messages
type propertiesLoadedMsg struct {
	rows []models.Property
	err  error
}

type contactsLoadedMsg struct {
	rows []models.Contact
	err  error
}

type propertySavedMsg struct {
	mutation optimistic.Mutation[models.Property]
	row      models.Property
	err      error
}

type contactSavedMsg struct {
	mutation optimistic.Mutation[models.Contact]
	row      models.Contact
	err      error
}

// Model is the bubbletea model of the back office front end
type Model struct {
	api     API
	timeout time.Duration

	properties *optimistic.Store[models.Property]
	contacts   *optimistic.Store[models.Contact]

	tab        tab
	filters    [2]string
	prevFilter string
	sorts      [2]int
	visible    []string // store keys of the table rows, top to bottom

	table   table.Model
	input   textinput.Model
	mode    inputMode
	editKey string

	status string
	width  int
	height int
}

// New creates the front end model; timeout bounds each API call
func New(api API, timeout time.Duration) Model {
	t := table.New(
		table.WithColumns(columnsFor(propertiesTab)),
		table.WithFocused(true),
		table.WithHeight(15),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(colorBorder).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(colorText).
		Background(colorPrimary)
	t.SetStyles(styles)

	in := textinput.New()
	in.CharLimit = 120
	in.Width = 60

	return Model{
		api:        api,
		timeout:    timeout,
		properties: optimistic.New(propertyKey),
		contacts:   optimistic.New(contactKey),
		table:      t,
		input:      in,
		status:     "loading…",
	}
}

// Run starts the front end on the terminal and blocks until it quits
func Run(api API, timeout time.Duration) error {
	_, err := tea.NewProgram(New(api, timeout), tea.WithAltScreen()).Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadProperties(), m.loadContacts())
}

// Commands
func (m Model) loadProperties() tea.Cmd {
	api, timeout := m.api, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		rows, err := api.ListProperties(ctx, client.PropertyQuery{})
		return propertiesLoadedMsg{rows: rows, err: err}
	}
}

func (m Model) loadContacts() tea.Cmd {
	api, timeout := m.api, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		rows, err := api.ListContacts(ctx, "", "")
		return contactsLoadedMsg{rows: rows, err: err}
	}
}

func (m Model) saveProperty(mut optimistic.Mutation[models.Property], call func(context.Context) (*models.Property, error)) tea.Cmd {
	timeout := m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		saved, err := call(ctx)
		msg := propertySavedMsg{mutation: mut, err: err}
		if saved != nil {
			msg.row = *saved
		}
		return msg
	}
}

func (m Model) saveContact(mut optimistic.Mutation[models.Contact], call func(context.Context) (*models.Contact, error)) tea.Cmd {
	timeout := m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		saved, err := call(ctx)
		msg := contactSavedMsg{mutation: mut, err: err}
		if saved != nil {
			msg.row = *saved
		}
		return msg
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetHeight(max(msg.Height-12, 3))
		return m, nil

	case propertiesLoadedMsg:
		if msg.err != nil {
			m.status = "failed to load properties: " + msg.err.Error()
		} else {
			m.properties.Replace(msg.rows)
			m.status = fmt.Sprintf("%d properties", len(msg.rows))
		}
		m.refreshTable()
		return m, nil

	case contactsLoadedMsg:
		if msg.err != nil {
			m.status = "failed to load contacts: " + msg.err.Error()
		} else {
			m.contacts.Replace(msg.rows)
		}
		m.refreshTable()
		return m, nil

	case propertySavedMsg:
		m.properties.Settle(msg.mutation, msg.row, msg.err)
		m.status = savedStatus("property", msg.mutation.Kind, msg.err)
		m.refreshTable()
		return m, nil

	case contactSavedMsg:
		m.contacts.Settle(msg.mutation, msg.row, msg.err)
		m.status = savedStatus("contact", msg.mutation.Kind, msg.err)
		m.refreshTable()
		return m, nil

	case tea.KeyMsg:
		if m.mode != inputNone {
			return m.updateInput(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func savedStatus(what string, kind optimistic.Kind, err error) string {
	if err != nil {
		return fmt.Sprintf("%s %s rolled back", what, kind)
	}
	return fmt.Sprintf("%s %s saved", what, kind)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "tab", "shift+tab":
		if m.tab == propertiesTab {
			m.tab = contactsTab
		} else {
			m.tab = propertiesTab
		}
		m.table.SetCursor(0)
		m.refreshTable()
		return m, nil

	case "/":
		m.prevFilter = m.filters[m.tab]
		m.input.SetValue(m.filters[m.tab])
		m.input.Placeholder = "filter"
		return m.startInput(inputFilter)

	case "s":
		if m.tab == propertiesTab {
			m.sorts[m.tab] = (m.sorts[m.tab] + 1) % len(propertySorts)
			m.status = "sorted by " + propertySorts[m.sorts[m.tab]].name
		} else {
			m.sorts[m.tab] = (m.sorts[m.tab] + 1) % len(contactSorts)
			m.status = "sorted by " + contactSorts[m.sorts[m.tab]].name
		}
		m.refreshTable()
		return m, nil

	case "n":
		m.input.SetValue("")
		if m.tab == propertiesTab {
			m.input.Placeholder = "property name"
		} else {
			m.input.Placeholder = "name, phone[, email]"
		}
		return m.startInput(inputCreate)

	case "e":
		key, ok := m.selectedKey()
		if !ok {
			return m, nil
		}
		if optimistic.IsTemp(key) {
			m.status = "still saving that row"
			return m, nil
		}
		m.editKey = key
		m.input.Placeholder = "name"
		m.input.SetValue(m.selectedName(key))
		return m.startInput(inputEdit)

	case "d":
		return m.deleteSelected()

	case "r":
		m.status = "refreshing…"
		if m.tab == propertiesTab {
			return m, m.loadProperties()
		}
		return m, m.loadContacts()

	case "x":
		m.properties.Dismiss()
		m.contacts.Dismiss()
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) startInput(mode inputMode) (tea.Model, tea.Cmd) {
	m.mode = mode
	m.table.Blur()
	return m, m.input.Focus()
}

func (m Model) endInput() Model {
	m.mode = inputNone
	m.editKey = ""
	m.input.Blur()
	m.input.Reset()
	m.table.Focus()
	return m
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		if m.mode == inputFilter {
			m.filters[m.tab] = m.prevFilter
			m.refreshTable()
		}
		return m.endInput(), nil

	case "enter":
		value := strings.TrimSpace(m.input.Value())
		mode, key := m.mode, m.editKey
		m = m.endInput()
		switch mode {
		case inputFilter:
			m.filters[m.tab] = value
			m.refreshTable()
			return m, nil
		case inputCreate:
			return m.create(value)
		case inputEdit:
			return m.rename(key, value)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.mode == inputFilter {
		m.filters[m.tab] = strings.TrimSpace(m.input.Value())
		m.refreshTable()
	}
	return m, cmd
}

func (m Model) create(value string) (tea.Model, tea.Cmd) {
	api := m.api

	if m.tab == propertiesTab {
		row := models.Property{PropertyName: value, Status: models.PropertyStatusActive}
		mut := m.properties.BeginCreate(row)
		m.status = "saving property…"
		m.refreshTable()
		return m, m.saveProperty(mut, func(ctx context.Context) (*models.Property, error) {
			return api.CreateProperty(ctx, &row)
		})
	}

	row := parseContact(value)
	mut := m.contacts.BeginCreate(row)
	m.status = "saving contact…"
	m.refreshTable()
	return m, m.saveContact(mut, func(ctx context.Context) (*models.Contact, error) {
		return api.CreateContact(ctx, &row)
	})
}

// parseContact reads "name, phone[, email]"
func parseContact(value string) models.Contact {
	parts := strings.Split(value, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	c := models.Contact{Name: parts[0]}
	if len(parts) > 1 {
		c.Phone = parts[1]
	}
	if len(parts) > 2 {
		c.Email = parts[2]
	}
	return c
}

func (m Model) rename(key, name string) (tea.Model, tea.Cmd) {
	api := m.api

	if m.tab == propertiesTab {
		mut, err := m.properties.BeginUpdate(key, func(p *models.Property) { p.PropertyName = name })
		if err != nil {
			m.status = err.Error()
			return m, nil
		}
		id := mut.Row.ID
		m.refreshTable()
		return m, m.saveProperty(mut, func(ctx context.Context) (*models.Property, error) {
			return api.UpdateProperty(ctx, id, map[string]interface{}{"property_name": name})
		})
	}

	mut, err := m.contacts.BeginUpdate(key, func(c *models.Contact) { c.Name = name })
	if err != nil {
		m.status = err.Error()
		return m, nil
	}
	id := mut.Row.ID
	m.refreshTable()
	return m, m.saveContact(mut, func(ctx context.Context) (*models.Contact, error) {
		return api.UpdateContact(ctx, id, map[string]interface{}{"name": name})
	})
}

func (m Model) deleteSelected() (tea.Model, tea.Cmd) {
	key, ok := m.selectedKey()
	if !ok {
		return m, nil
	}
	if optimistic.IsTemp(key) {
		m.status = "still saving that row"
		return m, nil
	}
	api := m.api

	if m.tab == propertiesTab {
		mut, err := m.properties.BeginDelete(key)
		if err != nil {
			m.status = err.Error()
			return m, nil
		}
		id := mut.Row.ID
		m.refreshTable()
		return m, m.saveProperty(mut, func(ctx context.Context) (*models.Property, error) {
			return nil, api.DeleteProperty(ctx, id)
		})
	}

	mut, err := m.contacts.BeginDelete(key)
	if err != nil {
		m.status = err.Error()
		return m, nil
	}
	id := mut.Row.ID
	m.refreshTable()
	return m, m.saveContact(mut, func(ctx context.Context) (*models.Contact, error) {
		return nil, api.DeleteContact(ctx, id)
	})
}

func (m Model) selectedKey() (string, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.visible) {
		return "", false
	}
	return m.visible[i], true
}

func (m Model) selectedName(key string) string {
	if m.tab == propertiesTab {
		p, _ := m.properties.Get(key)
		return p.PropertyName
	}
	c, _ := m.contacts.Get(key)
	return c.Name
}

func columnsFor(t tab) []table.Column {
	if t == contactsTab {
		return []table.Column{
			{Title: "ID", Width: 6},
			{Title: "Name", Width: 24},
			{Title: "Phone", Width: 16},
			{Title: "Email", Width: 28},
			{Title: "Type", Width: 12},
		}
	}
	return []table.Column{
		{Title: "ID", Width: 6},
		{Title: "Name", Width: 24},
		{Title: "Address", Width: 36},
		{Title: "Status", Width: 10},
		{Title: "Owner", Width: 18},
	}
}

func idCell(key string, id uint) string {
	if optimistic.IsTemp(key) {
		return "…"
	}
	return idKey(id)
}

func propertyMatches(filter string) func(models.Property) bool {
	if filter == "" {
		return nil
	}
	filter = strings.ToLower(filter)
	return func(p models.Property) bool {
		return strings.Contains(strings.ToLower(p.PropertyName), filter) ||
			strings.Contains(strings.ToLower(p.FullAddress()), filter) ||
			strings.Contains(strings.ToLower(p.Owner), filter)
	}
}

func contactMatches(filter string) func(models.Contact) bool {
	if filter == "" {
		return nil
	}
	filter = strings.ToLower(filter)
	digits := phone.Normalize(filter)
	return func(c models.Contact) bool {
		return strings.Contains(strings.ToLower(c.Name), filter) ||
			strings.Contains(strings.ToLower(c.Email), filter) ||
			(digits != "" && strings.Contains(c.Phone, digits))
	}
}

// refreshTable rebuilds the table rows from the active tab's store
func (m *Model) refreshTable() {
	var rows []table.Row
	m.visible = nil

	switch m.tab {
	case propertiesTab:
		for _, k := range m.properties.View(propertyMatches(m.filters[m.tab]), propertySorts[m.sorts[m.tab]].less) {
			m.visible = append(m.visible, k.Key)
			rows = append(rows, table.Row{
				idCell(k.Key, k.Row.ID),
				k.Row.PropertyName,
				k.Row.FullAddress(),
				string(k.Row.Status),
				k.Row.Owner,
			})
		}
	case contactsTab:
		for _, k := range m.contacts.View(contactMatches(m.filters[m.tab]), contactSorts[m.sorts[m.tab]].less) {
			m.visible = append(m.visible, k.Key)
			rows = append(rows, table.Row{
				idCell(k.Key, k.Row.ID),
				k.Row.Name,
				phone.Format(k.Row.Phone),
				k.Row.Email,
				k.Row.ContactType,
			})
		}
	}

	m.table.SetRows(nil)
	m.table.SetColumns(columnsFor(m.tab))
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
}

func (m Model) banner() string {
	if m.tab == propertiesTab {
		return m.properties.Banner()
	}
	return m.contacts.Banner()
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Property Back Office"))
	b.WriteString("\n\n")

	tabs := make([]string, 0, 2)
	for _, t := range []tab{propertiesTab, contactsTab} {
		if t == m.tab {
			tabs = append(tabs, activeTabStyle.Render(t.String()))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(t.String()))
		}
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	b.WriteString("\n")

	if banner := m.banner(); banner != "" {
		b.WriteString(bannerStyle.Render(banner + "  (x to dismiss)"))
		b.WriteString("\n")
	}

	b.WriteString(boxStyle.Render(m.table.View()))
	b.WriteString("\n")

	switch m.mode {
	case inputFilter:
		b.WriteString("Filter: " + m.input.View() + "\n")
	case inputCreate:
		b.WriteString("New " + strings.ToLower(strings.TrimSuffix(m.tab.String(), "s")) + ": " + m.input.View() + "\n")
	case inputEdit:
		b.WriteString("Rename: " + m.input.View() + "\n")
	}

	status := m.status
	if filter := m.filters[m.tab]; filter != "" {
		status += mutedStyle.Render(fmt.Sprintf("  filter %q", filter))
	}
	if strings.HasSuffix(m.status, "…") {
		b.WriteString(pendingStyle.Render(status))
	} else {
		b.WriteString(successStyle.Render(status))
	}
	b.WriteString("\n")

	help := []string{
		formatKey("tab", "switch"),
		formatKey("/", "filter"),
		formatKey("s", "sort"),
		formatKey("n", "new"),
		formatKey("e", "rename"),
		formatKey("d", "delete"),
		formatKey("r", "refresh"),
		formatKey("x", "dismiss"),
		formatKey("q", "quit"),
	}
	b.WriteString(strings.Join(help, " • "))
	return b.String()
}
