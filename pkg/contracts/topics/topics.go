package topics

const (
	// Resolução de bets
	BetResolved = "bet_resolved"

	// Recompensas (reedz)
	RewardsDistributed = "rewards_distributed"

	// DLQs
	BetResolvedDLQ = "bet_resolved_dlq"
)
