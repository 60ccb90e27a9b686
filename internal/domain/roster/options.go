package roster

// Option applies a configuration option to the Roster.
type Option func(*Roster)

// WithIDGenerator replaces the id source. Generated ids must be unique.
func WithIDGenerator(gen func() string) Option {
	return func(r *Roster) {
		if gen != nil {
			r.newID = gen
		}
	}
}
