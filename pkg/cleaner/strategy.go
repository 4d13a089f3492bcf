// pkg/cleaner/strategy.go
package cleaner

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/feedbackops/cleanse/pkg/config"
	"github.com/feedbackops/cleanse/pkg/model"
)

// Strategy is a pluggable cleaning algorithm. Clean consumes a dataset and
// returns the cleaned dataset together with the change log describing every
// mutation it performed. Each call starts from an empty log. Composition is
// done by explicit delegation: a higher-level strategy calls an inner
// strategy and absorbs its returned log before appending further records.
type Strategy interface {
	Name() string
	Clean(ds *model.Dataset) (*model.Dataset, *model.ChangeLog, error)
}

// Strategy names accepted by New.
const (
	NameBaseline    = "baseline"
	NameStatistical = "statistical"
	NameEncoder     = "encoder"
)

// New creates a strategy by name.
func New(name string, cfg *config.Config, logger *zap.Logger) (Strategy, error) {
	switch name {
	case NameBaseline:
		return NewBaseline(cfg, logger), nil
	case NameStatistical:
		return NewStatistical(cfg, logger), nil
	case NameEncoder:
		return NewEncoder(cfg, logger), nil
	default:
		return nil, fmt.Errorf("unknown cleaning strategy %q", name)
	}
}
