package feed

// listState is a cursor plus the index of the first visible row.
type listState struct {
	selected int
	offset   int
}

func (s *listState) moveDown(n int) {
	if n == 0 {
		*s = listState{}
		return
	}
	s.selected = min(s.selected+1, n-1)
}

func (s *listState) moveUp() {
	if s.selected > 0 {
		s.selected--
	}
}

func (s *listState) pageDown(n, page int) {
	if n == 0 {
		*s = listState{}
		return
	}
	s.selected = min(s.selected+max(page, 1), n-1)
	s.ensureVisible(n, page)
}

func (s *listState) pageUp(n, page int) {
	s.selected = max(s.selected-max(page, 1), 0)
	s.ensureVisible(n, page)
}

func (s *listState) top() {
	*s = listState{}
}

func (s *listState) bottom(n int, page int) {
	if n == 0 {
		return
	}
	s.selected = n - 1
	s.ensureVisible(n, page)
}

// selectIndex moves the cursor to i when it is in range.
func (s *listState) selectIndex(i, n int) bool {
	if i < 0 || i >= n {
		return false
	}
	s.selected = i
	return true
}

// ensureVisible clamps the cursor to [0, n) and scrolls the window of
// page rows so the cursor is inside it.
func (s *listState) ensureVisible(n, page int) {
	if n == 0 {
		*s = listState{}
		return
	}
	page = max(page, 1)
	s.selected = min(max(s.selected, 0), n-1)
	switch {
	case s.selected < s.offset:
		s.offset = s.selected
	case s.selected >= s.offset+page:
		s.offset = s.selected - page + 1
	}
	s.offset = min(max(s.offset, 0), n-1)
}

// window returns the visible half-open index range.
func (s listState) window(n, page int) (int, int) {
	start := min(max(s.offset, 0), n)
	return start, min(start+max(page, 1), n)
}
