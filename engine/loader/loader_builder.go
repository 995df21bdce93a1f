package loader

// LoaderBuilderOption configures a Loader during construction.
type LoaderBuilderOption func(*loaderImpl)

// WithAttributes restricts which vertex attributes besides POSITION are
// imported. By default every attribute present in the file is carried
// through.
//
// Parameters:
//   - semantics: glTF attribute semantics to keep (e.g. "NORMAL", "TEXCOORD_0")
//
// Returns:
//   - LoaderBuilderOption: the option
func WithAttributes(semantics ...string) LoaderBuilderOption {
	return func(l *loaderImpl) {
		l.attributeFilter = make(map[string]struct{}, len(semantics))
		for _, s := range semantics {
			l.attributeFilter[s] = struct{}{}
		}
	}
}

// NewLoader creates a glTF loader.
//
// Parameters:
//   - options: optional configuration
//
// Returns:
//   - Loader: the loader
func NewLoader(options ...LoaderBuilderOption) Loader {
	l := &loaderImpl{}
	for _, option := range options {
		option(l)
	}
	return l
}
