package topics

const (
	// Wagers
	WagerCreated = "wager_created"
	WagerSettled = "wager_settled"
)
