package components

import (
	"fmt"
	"image"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/shutter/internal/domain"
	"github.com/mmcdole/shutter/internal/search"
	"github.com/mmcdole/shutter/internal/tui/styles"
)

// Layout constants for the grid
const (
	// Border adds 1 char on each side
	BorderWidth  = 2
	BorderHeight = 2

	// Padding inside the border (1 left + 1 right)
	HorizontalPadding = 2

	// Scroll indicators ("↑ more" and "↓ more") each take 1 line
	ScrollIndicatorLines = 2

	// Breadcrumb line at top of content area
	BreadcrumbLines = 1

	// Extra safety margin for item width calculations
	ItemWidthMargin = 2
)

// Slot is a visible row and the photo currently shown in it.
// Rows are reused as the list scrolls, so a slot index is a stable display target.
type Slot struct {
	Index int
	Item  domain.GalleryItem
}

// PhotoGrid is the scrolling photo list. Each visible row shows a thumbnail swatch.
type PhotoGrid struct {
	items []domain.GalleryItem
	index *search.Index
	keys  GridKeyMap

	// Selection
	cursor     int
	offset     int
	maxVisible int

	// Dimensions
	width   int
	height  int
	focused bool

	breadcrumb string

	// Filter state
	filterActive bool
	filterInput  textinput.Model
	filterQuery  string
	filteredIdx  []int // indices into items

	// Per-slot state: the URL each row is bound to and its resolved image
	assigned []string
	thumbs   []image.Image
}

// NewPhotoGrid creates an empty grid
func NewPhotoGrid() *PhotoGrid {
	ti := textinput.New()
	ti.Placeholder = "type to filter..."
	ti.Prompt = "f "
	ti.PromptStyle = styles.FilterPromptStyle
	ti.TextStyle = styles.FilterStyle

	return &PhotoGrid{
		filterInput: ti,
		index:       search.NewIndex(nil),
		keys:        DefaultGridKeyMap(),
		maxVisible:  1,
	}
}

// SetItems replaces the content and resets the cursor. Every row is
// unbound, so the next Reassign reports all visible slots.
func (g *PhotoGrid) SetItems(items []domain.GalleryItem) {
	g.items = items
	g.index = search.NewIndex(items)
	g.cursor = 0
	g.offset = 0
	g.clearFilter()
	for i := range g.assigned {
		g.assigned[i] = ""
		g.thumbs[i] = nil
	}
}

// Items returns the unfiltered content
func (g *PhotoGrid) Items() []domain.GalleryItem {
	return g.items
}

// SetSize updates the component dimensions
func (g *PhotoGrid) SetSize(width, height int) {
	g.width = width
	g.height = height
	g.recalcMaxVisible()
}

// SetBreadcrumb sets the text shown on the first line
func (g *PhotoGrid) SetBreadcrumb(crumb string) {
	g.breadcrumb = crumb
}

// SetFocused sets the focus state
func (g *PhotoGrid) SetFocused(focused bool) {
	g.focused = focused
}

// recalcMaxVisible calculates maxVisible accounting for breadcrumb and filter bar
func (g *PhotoGrid) recalcMaxVisible() {
	interiorHeight := g.height - BorderHeight
	g.maxVisible = interiorHeight - ScrollIndicatorLines - BreadcrumbLines
	if g.filterActive {
		g.maxVisible--
	}
	if g.maxVisible < 1 {
		g.maxVisible = 1
	}
	g.ensureVisible()
}

// Cursor returns the current cursor position
func (g *PhotoGrid) Cursor() int {
	return g.cursor
}

// SelectedItem returns the item under the cursor
func (g *PhotoGrid) SelectedItem() (domain.GalleryItem, bool) {
	count := g.itemCount()
	if count == 0 || g.cursor >= count {
		return domain.GalleryItem{}, false
	}
	return g.items[g.mapIndex(g.cursor)], true
}

// IsEmpty returns true if there are no items
func (g *PhotoGrid) IsEmpty() bool {
	return g.itemCount() == 0
}

// IsFilterTyping returns true if the filter input has focus
func (g *PhotoGrid) IsFilterTyping() bool {
	return g.filterActive && g.filterInput.Focused()
}

// ToggleFilter activates the filter input
func (g *PhotoGrid) ToggleFilter() tea.Cmd {
	g.filterActive = true
	g.recalcMaxVisible()
	return g.filterInput.Focus()
}

// ClearFilter deactivates the filter and shows all items
func (g *PhotoGrid) ClearFilter() {
	g.clearFilter()
}

func (g *PhotoGrid) clearFilter() {
	g.filterActive = false
	g.filterQuery = ""
	g.filteredIdx = nil
	g.filterInput.SetValue("")
	g.filterInput.Blur()
	g.recalcMaxVisible()
}

// applyFilter filters items with the current query
func (g *PhotoGrid) applyFilter() {
	query := g.filterInput.Value()
	g.filterQuery = query

	if strings.TrimSpace(query) == "" {
		g.filteredIdx = nil
		return
	}

	results := g.index.Filter(query)
	g.filteredIdx = make([]int, len(results))
	for i, r := range results {
		g.filteredIdx[i] = r.Index
	}

	g.cursor = 0
	g.offset = 0
}

func (g *PhotoGrid) itemCount() int {
	if g.filteredIdx != nil {
		return len(g.filteredIdx)
	}
	return len(g.items)
}

// mapIndex maps a cursor position to the index in items
func (g *PhotoGrid) mapIndex(i int) int {
	if g.filteredIdx != nil && i < len(g.filteredIdx) {
		return g.filteredIdx[i]
	}
	return i
}

func (g *PhotoGrid) ensureVisible() {
	if g.cursor < g.offset {
		g.offset = g.cursor
	}
	if g.cursor >= g.offset+g.maxVisible {
		g.offset = g.cursor - g.maxVisible + 1
	}
	if g.offset < 0 {
		g.offset = 0
	}
}

// Reassign binds every visible row to the photo now scrolled into it and
// returns the slots whose photo changed. Their previous image is discarded.
func (g *PhotoGrid) Reassign() []Slot {
	for len(g.assigned) < g.maxVisible {
		g.assigned = append(g.assigned, "")
		g.thumbs = append(g.thumbs, nil)
	}

	var changed []Slot
	count := g.itemCount()
	for slot := range g.assigned {
		var item domain.GalleryItem
		url := ""
		if pos := g.offset + slot; slot < g.maxVisible && pos < count {
			item = g.items[g.mapIndex(pos)]
			url = item.URL
		}
		if url == g.assigned[slot] {
			continue
		}
		g.assigned[slot] = url
		g.thumbs[slot] = nil
		if url != "" {
			changed = append(changed, Slot{Index: slot, Item: item})
		}
	}
	return changed
}

// SetThumbnail stores the image resolved for slot
func (g *PhotoGrid) SetThumbnail(slot int, img image.Image) {
	if slot < 0 || slot >= len(g.thumbs) || g.assigned[slot] == "" {
		return
	}
	g.thumbs[slot] = img
}

// Thumbnail returns the image shown in slot, nil while loading
func (g *PhotoGrid) Thumbnail(slot int) image.Image {
	if slot < 0 || slot >= len(g.thumbs) {
		return nil
	}
	return g.thumbs[slot]
}

// Update handles navigation and filter input
func (g *PhotoGrid) Update(msg tea.Msg) tea.Cmd {
	if !g.focused {
		return nil
	}

	// Filter input has focus (typing mode)
	if g.IsFilterTyping() {
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			switch keyMsg.String() {
			case "esc":
				g.clearFilter()
				return nil
			case "enter":
				// Accept filter, blur input to allow navigation
				g.filterInput.Blur()
				return nil
			case "backspace":
				if g.filterInput.Value() == "" {
					g.clearFilter()
					return nil
				}
			}
		}

		var cmd tea.Cmd
		g.filterInput, cmd = g.filterInput.Update(msg)
		g.applyFilter()
		return cmd
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}

	if g.filterActive && key.Matches(keyMsg, g.keys.Escape) {
		g.clearFilter()
		return nil
	}

	count := g.itemCount()
	if count == 0 {
		return nil
	}

	switch {
	case key.Matches(keyMsg, g.keys.Down):
		if g.cursor < count-1 {
			g.cursor++
		}
	case key.Matches(keyMsg, g.keys.Up):
		if g.cursor > 0 {
			g.cursor--
		}
	case key.Matches(keyMsg, g.keys.Home):
		g.cursor = 0
	case key.Matches(keyMsg, g.keys.End):
		g.cursor = count - 1
	case key.Matches(keyMsg, g.keys.HalfDown):
		g.cursor = min(g.cursor+max(1, g.maxVisible/2), count-1)
	case key.Matches(keyMsg, g.keys.HalfUp):
		g.cursor = max(g.cursor-max(1, g.maxVisible/2), 0)
	}
	g.ensureVisible()
	return nil
}

// View renders the component
func (g *PhotoGrid) View() string {
	style := styles.InactiveBorder
	if g.focused {
		style = styles.ActiveBorder
	}

	frameW, frameH := style.GetFrameSize()
	return style.
		Width(max(0, g.width-frameW)).
		Height(max(0, g.height-frameH)).
		Render(g.renderList())
}

func (g *PhotoGrid) renderList() string {
	itemWidth := g.width - BorderWidth - HorizontalPadding - ItemWidthMargin

	// Breadcrumb is always first line (even if empty, for consistent layout)
	breadcrumbLine := " "
	if g.breadcrumb != "" {
		breadcrumbLine = styles.AccentStyle.Render(styles.Truncate(g.breadcrumb, itemWidth))
	}

	count := g.itemCount()
	if count == 0 {
		emptyMsg := styles.DimStyle.Render("No photos")
		if g.filterActive && g.filterQuery != "" {
			emptyMsg = styles.DimStyle.Render("No matches")
		}
		content := breadcrumbLine + "\n \n" + emptyMsg + "\n "
		if g.filterActive {
			content += "\n" + g.renderFilterBar()
		}
		return content
	}

	end := min(g.offset+g.maxVisible, count)
	lines := make([]string, 0, end-g.offset)
	for i := g.offset; i < end; i++ {
		lines = append(lines, g.renderRow(i-g.offset, g.items[g.mapIndex(i)], i == g.cursor, itemWidth))
	}

	// Always reserve the indicator lines to prevent layout shifts
	header := " "
	if g.offset > 0 {
		header = styles.DimStyle.Render("↑ more")
	}
	footer := " "
	if end < count {
		footer = styles.DimStyle.Render("↓ more")
	}

	content := breadcrumbLine + "\n" + header + "\n" + strings.Join(lines, "\n") + "\n" + footer
	if g.filterActive {
		content += "\n" + g.renderFilterBar()
	}
	return content
}

// renderRow renders one photo with the thumbnail of its slot
func (g *PhotoGrid) renderRow(slot int, item domain.GalleryItem, selected bool, width int) string {
	swatch := styles.RenderSwatch(g.Thumbnail(slot))

	badge := ""
	if img := g.Thumbnail(slot); img != nil {
		b := img.Bounds()
		badge = fmt.Sprintf(" %dx%d", b.Dx(), b.Dy())
	}

	title := styles.Truncate(item.DisplayTitle(), width-styles.SwatchWidth-len(badge)-4)
	dimGray := styles.DimGray

	parts := []styles.RowPart{
		{Text: swatch, Raw: true},
		{Text: " " + title},
		{Text: badge, Foreground: &dimGray},
	}
	return styles.RenderListRow(parts, selected, width)
}

func (g *PhotoGrid) renderFilterBar() string {
	input := g.filterInput.View()
	if g.filterQuery == "" {
		return input
	}
	return input + styles.DimStyle.Render(fmt.Sprintf(" [%d/%d]", g.itemCount(), len(g.items)))
}
