package pages

// Selection is an optional card index. The zero value selects nothing.
type Selection struct {
	index int
	set   bool
}

// None selects nothing.
func None() Selection { return Selection{} }

// At selects index i.
func At(i int) Selection { return Selection{index: i, set: true} }

// Toggle deselects i when it is selected and selects i otherwise.
func (s Selection) Toggle(i int) Selection {
	if s.Is(i) {
		return None()
	}
	return At(i)
}

// Index returns the selected index, if any.
func (s Selection) Index() (int, bool) {
	return s.index, s.set
}

// Is reports whether i is selected.
func (s Selection) Is(i int) bool {
	return s.set && s.index == i
}
