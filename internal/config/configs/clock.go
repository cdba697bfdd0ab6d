package configs

import "time"

// Clock selects the time oracle used for deadlines and cooldowns. With an
// empty NTPServer the local wall clock is used.
type Clock struct {
	NTPServer          string        `env:"NTP_SERVER"`
	SyncInterval       time.Duration `env:"SYNC_INTERVAL" envDefault:"10m"`
	UnhealthyThreshold time.Duration `env:"UNHEALTHY_THRESHOLD" envDefault:"2s"`
}
