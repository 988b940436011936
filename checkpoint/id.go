package checkpoint

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"
)

// mintMu serializes id minting so two checkpoints saved in the same
// microsecond still sort strictly: clock reads can collide at microsecond
// granularity under load, so a timestamp not later than the last one minted
// is bumped to one microsecond past it. A per-process sequence number is
// also recorded in each id.
var (
	mintMu   sync.Mutex
	mintSeq  uint32
	lastSeed int64
)

// NewID mints a lexicographically-sortable checkpoint id: zero-padded
// epoch-microseconds, then the hex sequence number, then a random hex
// suffix, per the checkpoint
// table layout's sortable-ASCII requirement. IDs minted by this process in
// increasing time order also sort in increasing id order.
func NewID(at time.Time) string {
	micros := at.UnixMicro()

	mintMu.Lock()
	if micros <= lastSeed {
		micros = lastSeed + 1
	}
	lastSeed = micros
	mintSeq++
	seq := mintSeq
	mintMu.Unlock()

	var suffix [4]byte
	_, _ = rand.Read(suffix[:])
	return fmt.Sprintf("%020d-%08x-%s", micros, seq, hex.EncodeToString(suffix[:]))
}
