package store

// Config locates the on-disk store.
type Config interface {
	BasePath() string
}

// PathConfig is a Config for a fixed directory.
type PathConfig string

func (p PathConfig) BasePath() string {
	return string(p)
}
