package ports

// Navigator receives navigation commands issued by guard and redirect
// policy. The frontend decides what "navigating" means; the core only
// names destinations.
type Navigator interface {
	NavigateTo(location string)
}
