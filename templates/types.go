// Package templates renders the HTML pages of the price lookup tool as templ
// components. Edit the .templ files and run templ generate; the _templ.go
// files are generated.
package templates

// LoginData is the state of the login form.
type LoginData struct {
	Title string
	Email string
	Error string
}

// Option is one entry of a dropdown.
type Option struct {
	Value    string
	Label    string
	Selected bool
}

// SelectData is one cascading dropdown. The first option is the placeholder.
type SelectData struct {
	Name    string
	Label   string
	Options []Option
}

// QuoteData is everything the quote screen shows.
type QuoteData struct {
	Title     string
	UserEmail string

	Mode         string
	Modes        []Option
	CatalogError string
	Selects      []SelectData
	ShowBifocal  bool
	Bifocal      bool

	QuoteLines []string
	CanAdd     bool
	Notice     string

	Entries  []string
	Subtotal string
	Discount string
}
