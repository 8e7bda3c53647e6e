package statemachine

// Builder collects transitions for a Table.
type Builder[S comparable] struct {
	allowed map[S]map[S]struct{}
	from    []S
}

func NewBuilder[S comparable]() *Builder[S] {
	return &Builder[S]{allowed: make(map[S]map[S]struct{})}
}

// From selects the source states for the next To call.
func (b *Builder[S]) From(states ...S) *Builder[S] {
	b.from = states
	return b
}

// To allows a transition from every state passed to the last From call to
// every given target.
func (b *Builder[S]) To(targets ...S) *Builder[S] {
	for _, from := range b.from {
		if b.allowed[from] == nil {
			b.allowed[from] = make(map[S]struct{}, len(targets))
		}
		for _, to := range targets {
			b.allowed[from][to] = struct{}{}
		}
	}
	return b
}

// Build returns the table. The builder can keep being used; later changes do
// not affect tables already built.
func (b *Builder[S]) Build() *Table[S] {
	allowed := make(map[S]map[S]struct{}, len(b.allowed))
	for from, targets := range b.allowed {
		copied := make(map[S]struct{}, len(targets))
		for to := range targets {
			copied[to] = struct{}{}
		}
		allowed[from] = copied
	}
	return &Table[S]{allowed: allowed}
}
