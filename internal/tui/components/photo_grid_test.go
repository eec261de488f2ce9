package components

import (
	"image"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/shutter/internal/domain"
)

func photos(n int) []domain.GalleryItem {
	items := make([]domain.GalleryItem, n)
	for i := range items {
		id := string(rune('a' + i))
		items[i] = domain.GalleryItem{ID: id, Title: "photo " + id, URL: "https://img/" + id}
	}
	return items
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// newGrid returns a focused grid showing three rows.
func newGrid(items []domain.GalleryItem) *PhotoGrid {
	g := NewPhotoGrid()
	g.SetFocused(true)
	g.SetSize(40, BorderHeight+ScrollIndicatorLines+BreadcrumbLines+3)
	g.SetItems(items)
	return g
}

func TestPhotoGrid_ReassignBindsVisibleRows(t *testing.T) {
	g := newGrid(photos(5))

	slots := g.Reassign()

	require.Len(t, slots, 3)
	for i, s := range slots {
		assert.Equal(t, i, s.Index)
		assert.Equal(t, photos(5)[i].URL, s.Item.URL)
	}
	assert.Empty(t, g.Reassign(), "nothing changed")
}

func TestPhotoGrid_ScrollingRecyclesSlots(t *testing.T) {
	g := newGrid(photos(5))
	g.Reassign()
	for slot := 0; slot < 3; slot++ {
		g.SetThumbnail(slot, image.NewGray(image.Rect(0, 0, 1, 1)))
	}

	// Move the cursor past the last visible row: the window shifts by one.
	for i := 0; i < 3; i++ {
		g.Update(keyMsg("j"))
	}
	slots := g.Reassign()

	require.Len(t, slots, 3, "every row now shows a different photo")
	assert.Equal(t, "https://img/b", slots[0].Item.URL)
	assert.Equal(t, "https://img/d", slots[2].Item.URL)
	assert.Nil(t, g.Thumbnail(0), "recycled rows drop their old image")
}

func TestPhotoGrid_SetItemsRebindsEveryRow(t *testing.T) {
	g := newGrid(photos(3))
	g.Reassign()
	g.SetThumbnail(0, image.NewGray(image.Rect(0, 0, 1, 1)))

	g.SetItems(photos(3))

	assert.Nil(t, g.Thumbnail(0))
	assert.Len(t, g.Reassign(), 3, "a reloaded list is requested again")
}

func TestPhotoGrid_SetThumbnailIgnoresUnboundSlots(t *testing.T) {
	g := newGrid(photos(1))
	g.Reassign()

	g.SetThumbnail(2, image.NewGray(image.Rect(0, 0, 1, 1)))
	g.SetThumbnail(9, image.NewGray(image.Rect(0, 0, 1, 1)))

	assert.Nil(t, g.Thumbnail(2))
	assert.Nil(t, g.Thumbnail(9))
}

func TestPhotoGrid_Filter(t *testing.T) {
	items := []domain.GalleryItem{
		{ID: "1", Title: "Harbour", URL: "u1"},
		{ID: "2", Title: "Mountain", URL: "u2"},
		{ID: "3", Title: "Harbor lights", URL: "u3"},
	}
	g := newGrid(items)
	g.ToggleFilter()
	require.True(t, g.IsFilterTyping())

	for _, r := range "harb" {
		g.Update(keyMsg(string(r)))
	}

	item, ok := g.SelectedItem()
	require.True(t, ok)
	assert.Contains(t, []string{"1", "3"}, item.ID)
	assert.Equal(t, 2, g.itemCount())

	g.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, g.IsFilterTyping())
	assert.Equal(t, 3, g.itemCount())
}

func TestPhotoGrid_EmptySelection(t *testing.T) {
	g := newGrid(nil)
	_, ok := g.SelectedItem()
	assert.False(t, ok)
	assert.True(t, g.IsEmpty())
	assert.NotEmpty(t, g.View())
}
