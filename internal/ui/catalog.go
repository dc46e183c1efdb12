package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/linuxmatters/harmonygen/internal/catalog"
)

// CatalogTable renders every entry of cat as a bordered table in catalog
// order.
func CatalogTable(cat *catalog.Catalog) string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(accentColor).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(mutedColor)).
		Headers("Category", "File", "Generator", "Description").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	for _, e := range cat.Entries() {
		t.Row(e.Category, e.Filename, e.Generator.String(), e.Description)
	}
	return t.String()
}
