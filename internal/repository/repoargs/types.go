package repoargs

type RepositoryName string

const (
	UserRepoName       RepositoryName = "user"
	RestaurantRepoName RepositoryName = "restaurant"
	BookingRepoName    RepositoryName = "booking"
	LedgerRepoName     RepositoryName = "ledger"
	RewardRepoName     RepositoryName = "reward"
)
