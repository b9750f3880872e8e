// Package grid computes the paginated button layout for an image list.
package grid

import (
	"fmt"
	"strconv"
)

// Config is shared by everything that encodes or decodes page and index
// positions. Changing it changes the meaning of buttons already rendered.
type Config struct {
	PageSize int
	Columns  int
}

// DefaultConfig matches the layout the bot ships with.
func DefaultConfig() Config {
	return Config{PageSize: 20, Columns: 5}
}

type Cell struct {
	Index  int
	Label  string
	Active bool
}

type Nav struct {
	Prev      bool
	Next      bool
	Indicator string
}

// Layout is the computed view of one page.
type Layout struct {
	Total     int
	PageSize  int
	Page      int
	PageCount int
	Active    int
	Rows      [][]Cell
	Nav       Nav
}

// First is the first index on the page.
func (l Layout) First() int {
	return l.Page * l.PageSize
}

// End is one past the last index on the page.
func (l Layout) End() int {
	return min(l.First()+l.PageSize, l.Total)
}

// PageCount returns ceil(total/pageSize), never less than one.
func (c Config) PageCount(total int) int {
	size := max(c.PageSize, 1)
	if total <= 0 {
		return 1
	}
	return (total + size - 1) / size
}

// Paginate lays out the requested page with the first index of the page
// active.
func (c Config) Paginate(total, page int) Layout {
	return c.layout(total, page, 0, false)
}

// Focus lays out the page holding the requested index with that index
// active.
func (c Config) Focus(total, index int) Layout {
	size := max(c.PageSize, 1)
	page := index / size
	if index < 0 {
		page = 0
	}
	return c.layout(total, page, index, true)
}

func (c Config) layout(total, page, active int, hasActive bool) Layout {
	size := max(c.PageSize, 1)
	columns := max(c.Columns, 1)
	total = max(total, 0)
	pageCount := c.PageCount(total)

	page = clamp(page, 0, pageCount-1)
	if !hasActive {
		active = page * size
	}
	active = clamp(active, 0, max(total-1, 0))
	if total > 0 && (active < page*size || active >= (page+1)*size) {
		page = active / size
	}

	l := Layout{
		Total:     total,
		PageSize:  size,
		Page:      page,
		PageCount: pageCount,
		Active:    active,
	}

	var row []Cell
	for i := l.First(); i < l.End(); i++ {
		row = append(row, cell(i, i == active))
		if len(row) == columns {
			l.Rows = append(l.Rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		l.Rows = append(l.Rows, row)
	}

	l.Nav = Nav{
		Prev:      page > 0,
		Next:      page < pageCount-1,
		Indicator: fmt.Sprintf("%d/%d", page+1, pageCount),
	}
	return l
}

func cell(index int, active bool) Cell {
	label := strconv.Itoa(index + 1)
	if active {
		label = "[" + label + "]"
	}
	return Cell{Index: index, Label: label, Active: active}
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
