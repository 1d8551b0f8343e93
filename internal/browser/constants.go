package browser

// Selectors for the Zashapon game UI.
const (
	ticketSelector          = "a[aria-label='Ticket'] span"
	playButtonSelector      = "button:has-text('PLAY')"
	addToCollectionSelector = "button:has-text('Add to collection')"

	cardContainerSelector = "div.rounded-lg.text-card-foreground"
	cardTitleSelector     = "h3"
	badgeSelector         = "span[data-slot='badge']"
)
