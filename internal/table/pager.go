package table

import (
	"errors"
	"fmt"
	"slices"

	"github.com/JonMunkholm/nutrition/internal/schema"
)

// DefaultPageSizes are the page sizes offered by the page-size picker.
var DefaultPageSizes = []int{5, 10, 25}

// ErrInvalidPageSize is returned when a page size is not one of the allowed sizes.
var ErrInvalidPageSize = errors.New("invalid page size")

// PageState holds the current page index and size.
type PageState struct {
	Index int
	Size  int
}

// Pager keeps page state valid as the row count and page size change.
type Pager struct {
	state PageState
	sizes []int
}

// NewPager returns a pager on page 0 with the given size.
// sizes lists the allowed page sizes; nil uses DefaultPageSizes.
func NewPager(size int, sizes []int) (*Pager, error) {
	if len(sizes) == 0 {
		sizes = DefaultPageSizes
	}
	p := &Pager{sizes: slices.Clone(sizes)}
	if err := p.checkSize(size); err != nil {
		return nil, err
	}
	p.state = PageState{Index: 0, Size: size}
	return p, nil
}

// State returns the current page index and size.
func (p *Pager) State() PageState {
	return p.state
}

// Sizes returns the allowed page sizes.
func (p *Pager) Sizes() []int {
	return slices.Clone(p.sizes)
}

// SetSize changes the page size and resets the index to 0.
func (p *Pager) SetSize(size int) error {
	if err := p.checkSize(size); err != nil {
		return err
	}
	p.state = PageState{Index: 0, Size: size}
	return nil
}

// Next moves one page forward; it is a no-op on the last page.
func (p *Pager) Next(count int) {
	if p.state.Index < PageCount(count, p.state.Size)-1 {
		p.state.Index++
	}
}

// Prev moves one page back; it is a no-op on page 0.
func (p *Pager) Prev() {
	if p.state.Index > 0 {
		p.state.Index--
	}
}

// Clamp pulls the index back onto the last valid page for count rows.
func (p *Pager) Clamp(count int) {
	last := PageCount(count, p.state.Size) - 1
	if p.state.Index > last {
		p.state.Index = last
	}
	if p.state.Index < 0 {
		p.state.Index = 0
	}
}

func (p *Pager) checkSize(size int) error {
	if !slices.Contains(p.sizes, size) {
		return fmt.Errorf("%w: %d (allowed %v)", ErrInvalidPageSize, size, p.sizes)
	}
	return nil
}

// PageCount returns ceil(count/size), minimum 1.
func PageCount(count, size int) int {
	if size <= 0 || count <= 0 {
		return 1
	}
	return (count + size - 1) / size
}

// VisibleSlice returns rows[page*size : min((page+1)*size, len(rows))].
// An out-of-range page yields an empty slice.
func VisibleSlice(rows []schema.Row, page, size int) []schema.Row {
	if size <= 0 || page < 0 {
		return nil
	}
	start := page * size
	if start >= len(rows) {
		return []schema.Row{}
	}
	end := min(start+size, len(rows))
	return rows[start:end]
}
