package session

// Navigator moves the operator to another view. The console records the
// target as a redirect hint; the CLI prints it.
type Navigator interface {
	Navigate(path string)
}

// NavigatorFunc adapts a function to Navigator
type NavigatorFunc func(path string)

// Navigate calls f(path)
func (f NavigatorFunc) Navigate(path string) {
	f(path)
}

type noopNavigator struct{}

func (noopNavigator) Navigate(string) {}
