package types

import (
	"fmt"
	"strings"
	"sync"

	"github.com/oklog/ulid/v2"
	"github.com/teris-io/shortid"
)

// GenerateUUID returns a k-sortable unique identifier
func GenerateUUID() string {
	return ulid.Make().String()
}

// GenerateUUIDWithPrefix returns a k-sortable unique identifier
// with a prefix ex tp_01HN3V6W3ZK4Q5J7P8R9S0T1U2
func GenerateUUIDWithPrefix(prefix string) string {
	if prefix == "" {
		return GenerateUUID()
	}
	return fmt.Sprintf("%s_%s", prefix, GenerateUUID())
}

var (
	sidGenerator *shortid.Shortid
	once         sync.Once
)

func initializeSID() {
	var err error
	sidGenerator, err = shortid.New(1, shortid.DefaultABC, 2342)
	if err != nil {
		panic("failed to initialize shortid generator: " + err.Error())
	}
}

// GenerateShortIDWithPrefix returns a short ID with a prefix.
// Total length is capped at 12 characters, e.g., `BR-XYZ12A8Q`.
func GenerateShortIDWithPrefix(prefix string) string {
	once.Do(initializeSID)

	id, err := sidGenerator.Generate()
	if err != nil {
		return ""
	}
	id = strings.ReplaceAll(id, "-", "")

	availableLen := 12 - len(prefix)
	if availableLen <= 0 {
		return ""
	}

	if len(id) > availableLen {
		id = id[:availableLen]
	}

	return strings.ToUpper(prefix + id)
}

const (
	UUID_PREFIX_TIME_PERIOD          = "tp"
	UUID_PREFIX_TIME_PERIOD_SETTINGS = "tps"
	UUID_PREFIX_TIME_ENTRY           = "te"
	UUID_PREFIX_COMPANY              = "comp"
	UUID_PREFIX_BILLING_PLAN         = "bplan"
	UUID_PREFIX_COMPANY_BILLING_PLAN = "cbp"
	UUID_PREFIX_SERVICE              = "svc"
	UUID_PREFIX_DISCOUNT             = "disc"
	UUID_PREFIX_TAX_RATE             = "taxr"
)

const (
	SHORT_ID_PREFIX_BILLING_RUN = "BR-"
)
