package driven

// ConfigStore is flat key/value configuration under dotted keys such as
// "embedding.provider". The typed getters read a missing or mistyped key
// as the zero value; the settings layer applies defaults on top.
type ConfigStore interface {
	Get(key string) (any, bool)
	GetString(key string) string
	GetInt(key string) int
	GetFloat(key string) float64

	// Set and Unset are durable when they return nil. Unsetting a missing
	// key succeeds.
	Set(key string, value any) error
	Unset(key string) error

	// Keys lists what is set, sorted.
	Keys() []string
}
