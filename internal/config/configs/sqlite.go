package configs

// SQLite configures the embedded ledger store used when the storage driver
// is "sqlite". Path may be ":memory:" for throwaway instances.
type SQLite struct {
	Path string `env:"PATH" envDefault:"crowdfund.db"`
}
