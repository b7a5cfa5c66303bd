package identifier

// Registry holds the identifiers already in use for one synthesis batch and
// records every id it mints. It is not safe for concurrent use.
type Registry struct {
	src         Source
	eans        map[string]struct{}
	itemIDs     map[int]struct{}
	minItemID   int
	maxItemID   int
	maxAttempts int
}

type Option func(*Registry)

func WithItemIDRange(min, max int) Option {
	return func(r *Registry) {
		r.minItemID = min
		r.maxItemID = max
	}
}

func WithMaxAttempts(n int) Option {
	return func(r *Registry) {
		r.maxAttempts = n
	}
}

// NewRegistry copies the used identifiers so the caller's snapshot is left
// untouched.
func NewRegistry(src Source, usedEANs []string, usedItemIDs []int, opts ...Option) *Registry {
	r := &Registry{
		src:         src,
		eans:        make(map[string]struct{}, len(usedEANs)),
		itemIDs:     make(map[int]struct{}, len(usedItemIDs)),
		minItemID:   DefaultItemIDMin,
		maxItemID:   DefaultItemIDMax,
		maxAttempts: DefaultMaxAttempts,
	}
	for _, e := range usedEANs {
		r.eans[e] = struct{}{}
	}
	for _, id := range usedItemIDs {
		r.itemIDs[id] = struct{}{}
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Registry) NextEAN() (string, error) {
	return UniqueEAN13(r.src, r.eans, r.maxAttempts)
}

func (r *Registry) NextItemID() (int, error) {
	return UniqueItemID(r.src, r.itemIDs, r.minItemID, r.maxItemID, r.maxAttempts)
}

func (r *Registry) HasEAN(ean string) bool {
	_, ok := r.eans[ean]
	return ok
}

func (r *Registry) HasItemID(id int) bool {
	_, ok := r.itemIDs[id]
	return ok
}
