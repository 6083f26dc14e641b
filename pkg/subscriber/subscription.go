package subscriber

import (
	"fmt"
	"slices"
	"strings"

	"github.com/bft-labs/tickfeed/internal/domain"
	"github.com/bft-labs/tickfeed/pkg/table"
)

// Subscription selects what to subscribe to: either a list of table names
// or a configuration dictionary understood by the remote process.
type Subscription struct {
	tables   []string
	config   *table.Dict
	isConfig bool
}

// Tables subscribes to the named tables. No names means all tables.
func Tables(names ...string) Subscription {
	return Subscription{tables: slices.Clone(names)}
}

// Config subscribes with a configuration dictionary. The dictionary must
// hold at least one entry.
func Config(d *table.Dict) Subscription {
	return Subscription{config: d, isConfig: true}
}

// IsConfig reports whether this is a configuration-driven subscription.
func (s Subscription) IsConfig() bool { return s.isConfig }

func (s Subscription) validate() error {
	if s.isConfig && (s.config == nil || s.config.IsEmpty()) {
		return fmt.Errorf("%w: empty subscription config", domain.ErrInvalidArgument)
	}
	return nil
}

// TableNames returns the subscribed table names; empty means all tables.
func (s Subscription) TableNames() []string { return slices.Clone(s.tables) }

// args builds the subscribe call arguments. An empty table list is sent as
// the empty symbol, which the remote process reads as "all tables".
func (s Subscription) args() []any {
	if s.isConfig {
		return []any{s.config.ToWire()}
	}
	var tables any = ""
	if len(s.tables) > 0 {
		tables = slices.Clone(s.tables)
	}
	return []any{tables, ""}
}

func (s Subscription) String() string {
	if s.isConfig {
		return "config " + s.config.String()
	}
	if len(s.tables) == 0 {
		return "all tables"
	}
	return "tables " + strings.Join(s.tables, ",")
}
