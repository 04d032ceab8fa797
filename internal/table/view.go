package table

import (
	"fmt"

	"github.com/JonMunkholm/nutrition/internal/schema"
)

// DefaultTitle is the toolbar label when nothing is selected.
const DefaultTitle = "Nutrition"

// CheckState is the tri-state of the select-all header checkbox.
type CheckState int

const (
	Unchecked CheckState = iota
	Indeterminate
	Checked
)

// HeaderCell describes one column header.
type HeaderCell struct {
	Key       schema.ColumnKey `json:"key"`
	Label     string           `json:"label"`
	Active    bool             `json:"active"`
	Direction Direction        `json:"direction,omitempty"` // Set only on the active column
}

// Indicator returns the sort arrow for the header, or "" if inactive.
func (h HeaderCell) Indicator() string {
	if !h.Active {
		return ""
	}
	if h.Direction == Desc {
		return "▼"
	}
	return "▲"
}

// ViewRow is one visible row with its selection flag and formatted cells.
type ViewRow struct {
	Row      schema.Row `json:"row"`
	Selected bool       `json:"selected"`
	Cells    []string   `json:"cells"`
}

// View is everything a presentation layer needs to render the table.
type View struct {
	Headers   []HeaderCell `json:"headers"`
	Rows      []ViewRow    `json:"rows"`
	Selected  int          `json:"selected"`
	Total     int          `json:"total"`
	SelectAll CheckState   `json:"selectAll"`
	SortKey   SortKey      `json:"sortKey"`
	Page      int          `json:"page"`
	PageCount int          `json:"pageCount"`
	PageSize  int          `json:"pageSize"`
	PageSizes []int        `json:"pageSizes"`
}

// Title is the toolbar label: a selection count or the default title.
func (v View) Title() string {
	if v.Selected > 0 {
		return fmt.Sprintf("%d selected", v.Selected)
	}
	return DefaultTitle
}

// PageLabel renders the one-based page position.
func (v View) PageLabel() string {
	return fmt.Sprintf("Page %d of %d", v.Page+1, v.PageCount)
}

// HasPrev reports whether a previous page exists.
func (v View) HasPrev() bool { return v.Page > 0 }

// HasNext reports whether a next page exists.
func (v View) HasNext() bool { return v.Page < v.PageCount-1 }

// Derive builds the view from engine state. It does not modify its inputs.
func Derive(rows []schema.Row, key SortKey, page PageState, sizes []int, sel *Selection) View {
	cols := schema.Columns()

	headers := make([]HeaderCell, len(cols))
	for i, c := range cols {
		headers[i] = HeaderCell{Key: c.Key, Label: c.Label}
		if c.Key == key.Column {
			headers[i].Active = true
			headers[i].Direction = key.Direction
		}
	}

	ordered := Order(rows, key)
	visible := VisibleSlice(ordered, page.Index, page.Size)

	viewRows := make([]ViewRow, len(visible))
	for i, r := range visible {
		cells := make([]string, len(cols))
		for j, c := range cols {
			cells[j] = c.Format(r)
		}
		viewRows[i] = ViewRow{Row: r, Selected: sel.Has(r.ID), Cells: cells}
	}

	state := Unchecked
	switch n := sel.Len(); {
	case len(rows) > 0 && n == len(rows):
		state = Checked
	case n > 0:
		state = Indeterminate
	}

	return View{
		Headers:   headers,
		Rows:      viewRows,
		Selected:  sel.Len(),
		Total:     len(rows),
		SelectAll: state,
		SortKey:   key,
		Page:      page.Index,
		PageCount: PageCount(len(rows), page.Size),
		PageSize:  page.Size,
		PageSizes: sizes,
	}
}
