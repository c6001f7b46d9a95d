package fx

import (
	_ "embed"
	"encoding/json"
	"sync"
)

//go:embed ratesets.json
var rateSetTableJSON []byte

var (
	rateSetTableOnce sync.Once
	rateSetTable     map[string]string
)

func loadRateSetTable() {
	rateSetTableOnce.Do(func() {
		var table map[string]string
		if err := json.Unmarshal(rateSetTableJSON, &table); err != nil {
			panic("fx: embedded ratesets.json is malformed: " + err.Error())
		}
		rateSetTable = table
	})
}

// lookupRateSetID returns the static rateSetId for a currency pair, used as
// the fallback when a RateRecord doesn't carry one of its own.
func lookupRateSetID(currencyPair string) (string, bool) {
	loadRateSetTable()
	id, ok := rateSetTable[currencyPair]
	return id, ok
}
