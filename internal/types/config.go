package types

// RedirectURLs guide the user back to the wizard after Stripe checkout.
type RedirectURLs struct {
	Success string
	Cancel  string
}
