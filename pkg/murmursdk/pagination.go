package murmursdk

// Page is the server's pagination envelope: a zero-based page of content
// plus totals and a Last marker gating further loads.
type Page[T any] struct {
	Content       []T  `json:"content"`
	Page          int  `json:"page"`
	Size          int  `json:"size"`
	TotalElements int  `json:"totalElements"`
	TotalPages    int  `json:"totalPages"`
	Last          bool `json:"last"`
}

// Pager accumulates pages into a single list the way the feed view consumes
// them: page zero replaces everything, later pages append.
type Pager[T any] struct {
	items  []T
	page   int
	last   bool
	loaded bool
}

// Apply folds a fetched page into the accumulated list.
func (p *Pager[T]) Apply(page Page[T]) {
	if page.Page == 0 {
		p.items = append(p.items[:0], page.Content...)
	} else {
		p.items = append(p.items, page.Content...)
	}

	p.page = page.Page
	p.last = page.Last
	p.loaded = true
}

// Items returns the accumulated content in load order.
func (p *Pager[T]) Items() []T { return p.items }

// HasMore reports whether a further page exists. It gates the "load more"
// affordance: false until a page is applied and after the last page.
func (p *Pager[T]) HasMore() bool { return p.loaded && !p.last }

// NextPage is the index to request for the next load.
func (p *Pager[T]) NextPage() int {
	if !p.loaded {
		return 0
	}
	return p.page + 1
}

// Reset discards accumulated state, e.g. when filters change.
func (p *Pager[T]) Reset() {
	p.items = nil
	p.page = 0
	p.last = false
	p.loaded = false
}
