package catalog

// Bucket names of the built-in volleyball catalog, in report row order.
const (
	BucketServeAce       = "Serve Ace"
	BucketAttackKill     = "Attack Kill"
	BucketBlockPoint     = "Block Point"
	BucketServeError     = "Serve Error"
	BucketAttackError    = "Attack Error"
	BucketReceptionError = "Reception Error"
	BucketFaults         = "Faults"
	BucketServeIn        = "Serve In"
	BucketDig            = "Dig"
	BucketSet            = "Set"
	BucketOpponentErrors = "Opponent Errors (Total)"
)

// DefaultConfig returns the built-in volleyball catalog configuration.
func DefaultConfig() Config {
	return Config{
		Buckets: []string{
			BucketServeAce,
			BucketAttackKill,
			BucketBlockPoint,
			BucketServeError,
			BucketAttackError,
			BucketReceptionError,
			BucketFaults,
			BucketServeIn,
			BucketDig,
			BucketSet,
			BucketOpponentErrors,
		},
		ScoringBuckets: []string{BucketServeAce, BucketAttackKill, BucketBlockPoint},
		ErrorBuckets:   []string{BucketServeError, BucketAttackError, BucketReceptionError, BucketFaults},
		Events: []EventConfig{
			{Key: "serve_ace", Effect: "home", Bucket: BucketServeAce},
			{Key: "attack_kill", Effect: "home", Bucket: BucketAttackKill},
			{Key: "attack_tip", Effect: "home", Bucket: BucketAttackKill},
			{Key: "block_point", Effect: "home", Bucket: BucketBlockPoint},
			{Key: "serve_error", Effect: "away", Bucket: BucketServeError},
			{Key: "attack_error", Effect: "away", Bucket: BucketAttackError},
			{Key: "attack_blocked", Effect: "away", Bucket: BucketAttackError},
			{Key: "reception_error", Effect: "away", Bucket: BucketReceptionError},
			{Key: "net_touch", Effect: "away", Bucket: BucketFaults},
			{Key: "double_contact", Effect: "away", Bucket: BucketFaults},
			{Key: "serve_in", Effect: "neutral", Bucket: BucketServeIn},
			{Key: "dig", Effect: "neutral", Bucket: BucketDig},
			{Key: "set", Effect: "neutral", Bucket: BucketSet},
			{Key: "opp_serve_out", Effect: "home", Bucket: BucketOpponentErrors, Opponent: true},
			{Key: "opp_attack_out", Effect: "home", Bucket: BucketOpponentErrors, Opponent: true},
			{Key: "opp_net_fault", Effect: "home", Bucket: BucketOpponentErrors, Opponent: true},
			{Key: "opp_error", Effect: "home", Bucket: BucketOpponentErrors, Opponent: true},
		},
	}
}

// Default returns the built-in volleyball catalog. The built-in table is
// known to be valid, so a construction error is a programming error.
func Default() *Catalog {
	c, err := New(DefaultConfig())
	if err != nil {
		panic("catalog: built-in catalog is invalid: " + err.Error())
	}
	return c
}
