package tui

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/storefront/internal/catalog"
	"github.com/mmcdole/storefront/internal/domain"
	"github.com/mmcdole/storefront/internal/order"
	"github.com/mmcdole/storefront/internal/search"
	"github.com/mmcdole/storefront/internal/session"
	"github.com/mmcdole/storefront/internal/tui/components"
	"github.com/mmcdole/storefront/internal/tui/styles"
)

// Screen is the page the application is showing
type Screen int

const (
	ScreenLogin Screen = iota
	ScreenSignup
	ScreenCatalog
	ScreenDetail
	ScreenProductForm
	ScreenOrder
)

// Overlay is a modal drawn over the current screen
type Overlay int

const (
	OverlayNone Overlay = iota
	OverlayHelp
	OverlayConfirmDelete
	OverlayConfirmLogout
)

const (
	tickInterval             = 100 * time.Millisecond
	defaultNotificationDelay = 4 * time.Second
	suggestionLimit          = 3
)

// Backend is the slice of the store API an authenticated user works with
type Backend interface {
	domain.ProductRepository
	order.Repository
}

// Deps wires the model to the rest of the application
type Deps struct {
	Sessions *session.Manager

	// Connect returns a backend authenticated with token
	Connect func(token string) Backend

	Store         domain.CatalogStore
	Opener        LinkOpener
	Notifications chan domain.Notification
	Logger        *slog.Logger

	NotificationDelay time.Duration
	DefaultSort       domain.SortOption
	InspectorPercent  int
}

// Model is the main Bubble Tea model for the application
type Model struct {
	Screen  Screen
	Overlay Overlay
	Ready   bool

	// Services
	sessions *session.Manager
	connect  func(token string) Backend
	store    domain.CatalogStore
	opener   LinkOpener
	notes    chan domain.Notification
	notifier domain.Notifier
	logger   *slog.Logger

	// Per-session state, nil while signed out
	backend Backend
	Engine  *catalog.Engine
	Wizard  *order.Wizard

	// UI Components
	List        *components.ProductList
	Inspector   components.Inspector
	QuickOpen   components.QuickOpen
	SortModal   components.SortModal
	SearchInput textinput.Model
	LoginForm   components.Form
	SignupForm  components.Form
	ProductForm components.Form
	AddressForm components.Form

	// Screen state
	categories    []string
	searching     bool
	draft         *catalog.Draft
	saving        bool
	detail        *domain.Product
	quantity      int
	returnTo      Screen
	addressCursor int
	addingAddress bool
	pendingDelete *domain.Product
	syncedGen     uint64

	// Dimensions
	Width  int
	Height int

	// Status line
	StatusMsg    string
	StatusIsErr  bool
	statusSeq    int
	Loading      bool
	SpinnerFrame int
	ticking      bool

	notificationDelay time.Duration
	defaultSort       domain.SortOption
	inspectorPercent  int
}

var loginFields = []components.FormField{
	{Key: "username", Label: "Email", Placeholder: "you@example.com"},
	{Key: "password", Label: "Password", Secret: true},
}

var signupFields = []components.FormField{
	{Key: "firstName", Label: "First name"},
	{Key: "lastName", Label: "Last name"},
	{Key: "email", Label: "Email", Placeholder: "you@example.com"},
	{Key: "password", Label: "Password", Secret: true},
	{Key: "confirmPassword", Label: "Confirm password", Secret: true},
	{Key: "contactNumber", Label: "Contact number", CharLimit: 20},
}

var productFields = []components.FormField{
	{Key: "name", Label: "Name"},
	{Key: "category", Label: "Category", Placeholder: "e.g. APPAREL"},
	{Key: "price", Label: "Price", Placeholder: "0.00", CharLimit: 16},
	{Key: "description", Label: "Description", CharLimit: 1000},
	{Key: "imageURL", Label: "Image URL", Placeholder: "https://"},
	{Key: "manufacturer", Label: "Manufacturer"},
	{Key: "availableItems", Label: "Available items", Placeholder: "0", CharLimit: 9},
}

var addressFields = []components.FormField{
	{Key: "name", Label: "Name"},
	{Key: "contactNumber", Label: "Contact number", CharLimit: 20},
	{Key: "street", Label: "Street"},
	{Key: "city", Label: "City"},
	{Key: "state", Label: "State"},
	{Key: "landmark", Label: "Landmark", Placeholder: "optional"},
	{Key: "zipCode", Label: "Zip code", CharLimit: 12},
}

// NewModel creates a new application model
func NewModel(deps Deps) Model {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	notes := deps.Notifications
	if notes == nil {
		notes = make(chan domain.Notification, 32)
	}
	delay := deps.NotificationDelay
	if delay <= 0 {
		delay = defaultNotificationDelay
	}

	si := textinput.New()
	si.Prompt = "/ "
	si.Placeholder = "Search products"
	si.CharLimit = 100
	si.Width = 30
	si.PromptStyle = styles.FilterPromptStyle
	si.TextStyle = styles.FilterStyle

	return Model{
		Screen:            ScreenLogin,
		sessions:          deps.Sessions,
		connect:           deps.Connect,
		store:             deps.Store,
		opener:            deps.Opener,
		notes:             notes,
		notifier:          NewChannelNotifier(notes),
		logger:            logger,
		List:              components.NewProductList("Products"),
		Inspector:         components.NewInspector(),
		QuickOpen:         components.NewQuickOpen(),
		SortModal:         components.NewSortModal(),
		SearchInput:       si,
		LoginForm:         components.NewForm("Sign in", loginFields),
		SignupForm:        components.NewForm("Create account", signupFields),
		ProductForm:       components.NewForm("Add product", productFields),
		AddressForm:       components.NewForm("New address", addressFields),
		quantity:          1,
		notificationDelay: delay,
		defaultSort:       deps.DefaultSort,
		inspectorPercent:  deps.InspectorPercent,
	}
}

// Init resumes a remembered session or shows the sign-in form
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{waitForNotification(m.notes), m.LoginForm.Init()}
	if s := m.sessions.Current(); s.Valid() {
		// Init cannot return a new model, so the connection happens in
		// the first Update.
		cmds = append(cmds, func() tea.Msg { return LoggedInMsg{Session: s} })
	}
	return tea.Batch(cmds...)
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Ready = true
		m.updateLayout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case TickMsg:
		m.SpinnerFrame++
		m.List.SetSpinnerFrame(m.SpinnerFrame)
		if !m.Loading && !m.saving {
			m.ticking = false
			return m, nil
		}
		return m, TickCmd(tickInterval)

	case NotificationMsg:
		cmd := m.setStatus(msg.Message, !msg.Success)
		return m, tea.Batch(cmd, waitForNotification(m.notes))

	case ClearStatusMsg:
		if msg.Seq == m.statusSeq {
			m.StatusMsg = ""
			m.StatusIsErr = false
		}
		return m, nil

	case LoggedInMsg:
		return m.handleLoggedIn(msg)

	case SignedUpMsg:
		return m.handleSignedUp(msg)

	case CatalogRefreshedMsg:
		m.Loading = false
		m.List.SetLoading(false)
		if m.expired(msg.Err) {
			return m.toLogin()
		}
		m.syncCatalog()
		return m, nil

	case MutationDoneMsg:
		return m.handleMutationDone(msg)

	case ProductLoadedMsg:
		m.Loading = false
		if m.expired(msg.Err) {
			return m.toLogin()
		}
		if msg.Err != nil {
			if errors.Is(msg.Err, domain.ErrNotFound) && m.Screen == ScreenDetail {
				m.Screen = ScreenCatalog
				cmd := m.setStatus("Product no longer exists", true)
				return m, cmd
			}
			cmd := m.setStatus("Could not load latest details", true)
			return m, cmd
		}
		if m.detail != nil && msg.Product != nil && m.detail.ID == msg.Product.ID {
			p := *msg.Product
			m.detail = &p
			m.quantity = clampQuantity(m.quantity, p)
		}
		return m, nil

	case AddressesLoadedMsg:
		m.Loading = false
		if m.expired(msg.Err) {
			return m.toLogin()
		}
		if msg.Err != nil {
			cmd := m.setStatus("Failed to load addresses", true)
			return m, cmd
		}
		m.addressCursor = min(m.addressCursor, max(len(m.wizardAddresses())-1, 0))
		return m, nil

	case AddressAddedMsg:
		return m.handleAddressAdded(msg)

	case OrderPlacedMsg:
		m.saving = false
		if m.expired(msg.Err) {
			return m.toLogin()
		}
		if msg.Err == nil && m.Engine != nil {
			m.Wizard = nil
			m.Screen = ScreenCatalog
			// Stock counts changed
			cmd := m.startLoading(RefreshCmd(m.Engine))
			return m, cmd
		}
		return m, nil

	case LinkOpenedMsg:
		if msg.Err != nil {
			m.logger.Warn("failed to open link", "error", msg.Err)
			cmd := m.setStatus("Could not open link", true)
			return m, cmd
		}
		return m, nil
	}

	// Let focused inputs consume blink and other internal messages
	var cmd tea.Cmd
	switch {
	case m.QuickOpen.IsVisible():
		m.QuickOpen, cmd, _ = m.QuickOpen.Update(msg)
	case m.searching:
		m.SearchInput, cmd = m.SearchInput.Update(msg)
	case m.Screen == ScreenLogin:
		m.LoginForm, cmd, _ = m.LoginForm.Update(msg)
	case m.Screen == ScreenSignup:
		m.SignupForm, cmd, _ = m.SignupForm.Update(msg)
	case m.Screen == ScreenProductForm:
		m.ProductForm, cmd, _ = m.ProductForm.Update(msg)
	case m.Screen == ScreenOrder && m.addingAddress:
		m.AddressForm, cmd, _ = m.AddressForm.Update(msg)
	}
	return m, cmd
}

// handleLoggedIn connects to the store with the new session
func (m Model) handleLoggedIn(msg LoggedInMsg) (tea.Model, tea.Cmd) {
	m.saving = false
	if msg.Err != nil {
		var verr *domain.ValidationError
		if errors.As(msg.Err, &verr) {
			m.LoginForm.SetError(verr.Error())
			m.LoginForm.FocusKey(verr.Field)
		} else {
			m.LoginForm.SetError("Sign in failed. Check your credentials and the server.")
		}
		return m, nil
	}

	m.backend = m.connect(msg.Session.Token)
	m.Engine = catalog.NewEngine(m.backend, m.store, m.notifier, m.logger)
	m.Engine.SetSort(m.defaultSort)
	m.Inspector.SetAdmin(msg.Session.IsAdmin)
	m.LoginForm.Reset()
	m.Screen = ScreenCatalog
	m.Overlay = OverlayNone

	warm := m.Engine.Warm()
	m.syncCatalog()
	m.logger.Info("catalog session started", "username", msg.Session.Username, "warm", warm)

	cmd := m.startLoading(RefreshCmd(m.Engine))
	return m, cmd
}

// handleSignedUp returns to sign in with the new email filled in
func (m Model) handleSignedUp(msg SignedUpMsg) (tea.Model, tea.Cmd) {
	m.saving = false
	if msg.Err != nil {
		var verr *domain.ValidationError
		if errors.As(msg.Err, &verr) {
			m.SignupForm.SetError(verr.Error())
			m.SignupForm.FocusKey(verr.Field)
		} else {
			m.SignupForm.SetError("Could not create the account.")
		}
		return m, nil
	}

	m.SignupForm.Reset()
	m.LoginForm.Reset()
	m.LoginForm.SetValue("username", msg.Email)
	m.LoginForm.FocusKey("password")
	m.Screen = ScreenLogin
	return m, nil
}

// handleMutationDone leaves the form on success; failures keep the
// user where they were. The engine has already refreshed the catalog.
func (m Model) handleMutationDone(msg MutationDoneMsg) (tea.Model, tea.Cmd) {
	m.saving = false
	if m.expired(msg.Err) {
		return m.toLogin()
	}
	// A failed mutation leaves the cache as the list already shows it
	if m.Engine != nil && m.Engine.Generation() != m.syncedGen {
		m.syncCatalog()
	}
	if msg.Err != nil {
		if m.Screen == ScreenProductForm {
			m.ProductForm.SetError(msg.Err.Error())
		}
		return m, nil
	}

	switch msg.Op {
	case "delete":
		if m.detail != nil && m.detail.ID == msg.ID {
			m.detail = nil
			m.Screen = ScreenCatalog
		}
	default:
		m.draft = nil
		m.ProductForm.Reset()
		if m.returnTo == ScreenDetail && m.detail != nil {
			if p, ok := m.Engine.Product(m.detail.ID); ok {
				m.detail = &p
			}
		}
		m.Screen = m.returnTo
		if m.Screen == ScreenProductForm {
			m.Screen = ScreenCatalog
		}
	}
	return m, nil
}

// handleAddressAdded closes the address form once the address is saved
func (m Model) handleAddressAdded(msg AddressAddedMsg) (tea.Model, tea.Cmd) {
	m.saving = false
	if m.expired(msg.Err) {
		return m.toLogin()
	}
	if msg.Err != nil {
		var verr *domain.ValidationError
		if errors.As(msg.Err, &verr) {
			m.AddressForm.SetError(verr.Error())
			m.AddressForm.FocusKey(verr.Field)
		}
		return m, nil
	}

	m.addingAddress = false
	m.AddressForm.Reset()
	if msg.Address != nil {
		for i, a := range m.wizardAddresses() {
			if a.ID == msg.Address.ID {
				m.addressCursor = i
			}
		}
	}
	return m, nil
}

// expired reports whether err ended the session
func (m Model) expired(err error) bool {
	return err != nil && m.sessions.HandleError(err)
}

// toLogin drops the per-session state and shows the sign-in form
func (m Model) toLogin() (tea.Model, tea.Cmd) {
	m.backend = nil
	m.Engine = nil
	m.Wizard = nil
	m.detail = nil
	m.draft = nil
	m.pendingDelete = nil
	m.searching = false
	m.addingAddress = false
	m.Loading = false
	m.saving = false
	m.Overlay = OverlayNone
	m.QuickOpen.Hide()
	m.SortModal.Hide()
	m.List.SetProducts(nil)
	m.Inspector.SetProduct(nil)
	m.Inspector.SetAdmin(false)
	m.LoginForm.Reset()
	m.Screen = ScreenLogin
	return m, m.LoginForm.Init()
}

// setStatus shows a message that clears after the notification delay
func (m *Model) setStatus(msg string, isErr bool) tea.Cmd {
	m.statusSeq++
	m.StatusMsg = msg
	m.StatusIsErr = isErr
	return ClearStatusCmd(m.notificationDelay, m.statusSeq)
}

// startLoading marks a fetch in progress and starts the spinner
func (m *Model) startLoading(cmd tea.Cmd) tea.Cmd {
	m.Loading = true
	m.List.SetLoading(m.Engine == nil || len(m.Engine.Products()) == 0)
	if m.ticking {
		return cmd
	}
	m.ticking = true
	return tea.Batch(cmd, TickCmd(tickInterval))
}

// startSaving marks a mutation in progress and starts the spinner
func (m *Model) startSaving(cmd tea.Cmd) tea.Cmd {
	m.saving = true
	if m.ticking {
		return cmd
	}
	m.ticking = true
	return tea.Batch(cmd, TickCmd(tickInterval))
}

// syncCatalog copies the engine's derived view into the list
func (m *Model) syncCatalog() {
	if m.Engine == nil {
		return
	}
	m.syncedGen = m.Engine.Generation()
	view := m.Engine.View()
	products := m.Engine.Derived()
	m.categories = m.Engine.Categories()
	m.List.SetProducts(products)

	total := len(m.Engine.Products())
	title := fmt.Sprintf("Products (%d)", len(products))
	if len(products) != total {
		title = fmt.Sprintf("Products (%d of %d)", len(products), total)
	}
	m.List.SetTitle(title)
	m.List.SetEmptyHint(m.emptyHint(view))
	m.updateInspector()
}

// emptyHint explains an empty list, suggesting close product names
// when a search matched nothing.
func (m Model) emptyHint(view domain.ViewState) string {
	if view.Search == "" {
		if view.Category != domain.CategoryAll {
			return "No products in " + view.Category
		}
		return "No products yet"
	}

	products := m.Engine.Products()
	names := make([]string, 0, len(products))
	for _, p := range products {
		if view.Category == domain.CategoryAll || p.Category == view.Category {
			names = append(names, p.Name)
		}
	}
	hint := fmt.Sprintf("No products match %q", view.Search)
	if suggestions := search.Suggest(view.Search, names, suggestionLimit); len(suggestions) > 0 {
		hint += ". Did you mean " + strings.Join(suggestions, ", ") + "?"
	}
	return hint
}

// updateInspector shows the selected product
func (m *Model) updateInspector() {
	m.Inspector.SetProduct(m.List.Selected())
}

// isAdmin reports whether the signed-in user can edit the catalog
func (m Model) isAdmin() bool {
	return m.sessions.Current().IsAdmin
}

func (m Model) wizardAddresses() []domain.Address {
	if m.Wizard == nil {
		return nil
	}
	return m.Wizard.Addresses()
}

// selectCategory moves the category filter by delta, wrapping around
func (m *Model) selectCategory(delta int) {
	if m.Engine == nil || len(m.categories) == 0 {
		return
	}
	current := m.Engine.View().Category
	idx := 0
	for i, c := range m.categories {
		if c == current {
			idx = i
			break
		}
	}
	idx = (idx + delta + len(m.categories)) % len(m.categories)
	m.Engine.SetFilter(m.categories[idx])
	m.syncCatalog()
}

// jumpTo selects p in the list, clearing the filter and search if
// they hide it, and opens its details.
func (m Model) jumpTo(p domain.Product) (Model, tea.Cmd) {
	if !m.List.SelectID(p.ID) {
		m.Engine.SetFilter(domain.CategoryAll)
		m.Engine.SetSearch("")
		m.SearchInput.SetValue("")
		m.syncCatalog()
		m.List.SelectID(p.ID)
	}
	m.updateInspector()
	return m.openDetail(p)
}

// openDetail shows p and fetches its latest copy
func (m Model) openDetail(p domain.Product) (Model, tea.Cmd) {
	m.detail = &p
	m.quantity = clampQuantity(1, p)
	m.Screen = ScreenDetail
	return m, LoadProductCmd(m.Engine, p.ID)
}

// openProductForm starts adding a product, or editing p when non-nil
func (m Model) openProductForm(p *domain.Product) (Model, tea.Cmd) {
	m.returnTo = m.Screen
	if p == nil {
		m.draft = catalog.NewDraft()
	} else {
		m.draft = catalog.EditDraft(*p)
	}

	title := "Add product"
	if m.draft.IsEdit() {
		title = "Edit product"
	}
	m.ProductForm = components.NewForm(title, productFields)
	m.ProductForm.SetWidth(min(max(m.Width-10, 40), 80))
	if m.draft.IsEdit() {
		m.ProductForm.SetValue("name", m.draft.Name)
		m.ProductForm.SetValue("category", m.draft.Category)
		m.ProductForm.SetValue("price", m.draft.Price)
		m.ProductForm.SetValue("description", m.draft.Description)
		m.ProductForm.SetValue("imageURL", m.draft.ImageURL)
		m.ProductForm.SetValue("manufacturer", m.draft.Manufacturer)
		m.ProductForm.SetValue("availableItems", m.draft.AvailableItems)
	} else if c := m.Engine.View().Category; c != domain.CategoryAll {
		m.ProductForm.SetValue("category", c)
	}
	m.Screen = ScreenProductForm
	return m, m.ProductForm.Init()
}

// submitProductForm validates the draft locally before any network call
func (m Model) submitProductForm() (Model, tea.Cmd) {
	if m.saving || m.draft == nil {
		return m, nil
	}
	f := m.ProductForm
	m.draft.SetName(f.Value("name"))
	m.draft.SetCategory(f.Value("category"))
	m.draft.SetPrice(f.Value("price"))
	m.draft.SetDescription(f.Value("description"))
	m.draft.SetImageURL(f.Value("imageURL"))
	m.draft.SetManufacturer(f.Value("manufacturer"))
	m.draft.SetAvailableItems(f.Value("availableItems"))

	input, err := m.draft.Input()
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			m.ProductForm.SetError(verr.Error())
			m.ProductForm.FocusKey(verr.Field)
		} else {
			m.ProductForm.SetError(err.Error())
		}
		return m, nil
	}
	m.ProductForm.SetError("")
	cmd := m.startSaving(SaveProductCmd(m.Engine, input, m.draft.ExistingID()))
	return m, cmd
}

// startOrder opens the checkout wizard for p
func (m Model) startOrder(p domain.Product, quantity int) (Model, tea.Cmd) {
	if p.AvailableItems == 0 {
		cmd := m.setStatus(p.Name+" is out of stock", true)
		return m, cmd
	}
	m.returnTo = m.Screen
	m.Wizard = order.NewWizard(m.backend, order.Item{Product: p, Quantity: quantity}, m.notifier, m.logger)
	m.addressCursor = 0
	m.addingAddress = false
	m.AddressForm.Reset()
	m.Screen = ScreenOrder
	cmd := m.startLoading(LoadAddressesCmd(m.Wizard))
	return m, cmd
}

// submitAddressForm saves a new address through the wizard
func (m Model) submitAddressForm() (Model, tea.Cmd) {
	if m.saving {
		return m, nil
	}
	f := m.AddressForm
	m.Wizard.SetDraft(domain.AddressInput{
		Name:          f.Value("name"),
		ContactNumber: f.Value("contactNumber"),
		Street:        f.Value("street"),
		City:          f.Value("city"),
		State:         f.Value("state"),
		Landmark:      f.Value("landmark"),
		ZipCode:       f.Value("zipCode"),
	})
	m.AddressForm.SetError("")
	cmd := m.startSaving(AddAddressCmd(m.Wizard))
	return m, cmd
}

// clampQuantity keeps q between one and the available stock
func clampQuantity(q int, p domain.Product) int {
	if p.AvailableItems > 0 {
		q = min(q, p.AvailableItems)
	}
	return max(q, 1)
}
