package window

import "fmt"

// Unknown marks a cursor whose page length has not been fetched yet.
const Unknown = -1

// Cursor points into the global item sequence as an offset into a page.
//
// Between operations a cursor is normalized: 0 <= Index <= MaxIndex. During an
// operation Index may fall outside that range until the cursor is adjusted.
// A cursor at Index == MaxIndex sits between the last item of its page and the
// first item of the next one.
type Cursor struct {
	Page     int `json:"page"`
	Index    int `json:"index"`
	MaxIndex int `json:"max_index"`
}

// Bounded reports whether the page length is known.
func (c Cursor) Bounded() bool {
	return c.MaxIndex != Unknown
}

// Normalized reports whether the index lies within its page.
func (c Cursor) Normalized() bool {
	return c.Index >= 0 && !c.pastEnd()
}

// pastEnd is only true for a known page length; an unexplored page is never
// treated as overflowing.
func (c Cursor) pastEnd() bool {
	return c.Bounded() && c.Index > c.MaxIndex
}

// atOrigin reports whether c points at the first item of the first page.
func (c Cursor) atOrigin() bool {
	return c.Page == 1 && c.Index == 0
}

func (c Cursor) shift(n int) Cursor {
	c.Index += n
	return c
}

func (c Cursor) String() string {
	if !c.Bounded() {
		return fmt.Sprintf("%d:%d/?", c.Page, c.Index)
	}
	return fmt.Sprintf("%d:%d/%d", c.Page, c.Index, c.MaxIndex)
}

// Range locates the window between two cursors. Start is inclusive and End is
// exclusive.
type Range struct {
	Start Cursor `json:"start"`
	End   Cursor `json:"end"`
}

func (r Range) String() string {
	return fmt.Sprintf("[%s, %s)", r.Start, r.End)
}
