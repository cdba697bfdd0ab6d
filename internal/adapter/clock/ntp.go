package clock

import (
	"sync"
	"time"

	"github.com/beevik/ntp"
)

const (
	backoffInitial = 5 * time.Second
	backoffMax     = 5 * time.Minute
)

type queryFunc func(server string) (*ntp.Response, error)

// NTP is the local clock corrected by the offset measured against an NTP
// server. The offset is refreshed in the background every syncInterval, so
// Now never waits on the network. Failed syncs back off exponentially and
// keep the last known offset.
type NTP struct {
	mu                 sync.Mutex
	server             string
	syncInterval       time.Duration
	unhealthyThreshold time.Duration
	query              queryFunc

	offset    time.Duration
	lastSync  time.Time
	lastTry   time.Time
	backoff   time.Duration
	lastError error
	syncing   bool
}

// NewNTP creates the clock and performs a first sync. A failed first sync
// is not fatal: the clock starts with a zero offset and retries later.
func NewNTP(server string, syncInterval, unhealthyThreshold time.Duration) *NTP {
	return newNTP(server, syncInterval, unhealthyThreshold, ntp.Query)
}

func newNTP(server string, syncInterval, unhealthyThreshold time.Duration, query queryFunc) *NTP {
	c := &NTP{
		server:             server,
		syncInterval:       syncInterval,
		unhealthyThreshold: unhealthyThreshold,
		query:              query,
	}
	c.sync(time.Now())
	return c
}

// Now returns the corrected time. When a refresh is due it is started in
// the background and the current offset is used meanwhile.
func (c *NTP) Now() time.Time {
	local := time.Now()
	c.mu.Lock()
	offset := c.offset
	due := !c.syncing && c.dueLocked(local)
	if due {
		c.syncing = true
		c.lastTry = local
	}
	c.mu.Unlock()
	if due {
		go c.sync(local)
	}
	return local.Add(offset)
}

// Health reports whether the last sync succeeded and the offset is within
// the configured threshold.
func (c *NTP) Health() (healthy bool, offset time.Duration, lastSync time.Time, lastError error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	offset, lastSync, lastError = c.offset, c.lastSync, c.lastError
	if lastError != nil {
		return false, offset, lastSync, lastError
	}
	if c.unhealthyThreshold > 0 && (offset < -c.unhealthyThreshold || offset > c.unhealthyThreshold) {
		return false, offset, lastSync, nil
	}
	return true, offset, lastSync, nil
}

func (c *NTP) dueLocked(now time.Time) bool {
	wait := c.syncInterval
	if c.backoff > 0 {
		wait = min(c.backoff, backoffMax)
	}
	return now.Sub(c.lastTry) >= wait
}

// sync queries the server without holding the lock and applies the result.
func (c *NTP) sync(now time.Time) {
	resp, err := c.query(c.server)
	if err == nil {
		err = resp.Validate()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.syncing = false
	c.lastTry = now
	if err != nil {
		c.lastError = err
		if c.backoff == 0 {
			c.backoff = backoffInitial
		} else {
			c.backoff = min(c.backoff*2, backoffMax)
		}
		return
	}
	c.offset = resp.ClockOffset
	c.lastSync = now
	c.lastError = nil
	c.backoff = 0
}
