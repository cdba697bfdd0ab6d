package configs

import "time"

// Asset points at the token service that holds balances. With an empty
// URL an in-process ledger is used and exposed under /tokens for minting.
type Asset struct {
	URL     string        `env:"URL"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"5s"`
}
