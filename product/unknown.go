package product

import (
	"fmt"

	"github.com/rustyeddy/priips/bootstrap"
	"github.com/rustyeddy/priips/dates"
	"github.com/rustyeddy/priips/market"
)

// Unknown is the placeholder for a trade description whose product type
// string is not recognized. It is failed from construction: every
// lifecycle step is a no-op and it never reaches the output writers, but
// it keeps its slot in the product list so later ids stay stable.
type Unknown struct {
	Base

	TypeName string
}

// NewUnknown builds a failed placeholder for list position i.
func NewUnknown(typeName string, i int) *Unknown {
	u := &Unknown{TypeName: typeName}
	u.SetIndex(i)
	u.fail(FailUnknownType, fmt.Errorf("unknown product type %q", typeName))
	return u
}

func (u *Unknown) Kind() string { return "Unknown" }

func (u *Unknown) SetIndex(i int) {
	u.index = i
	u.id = fmt.Sprintf("Unknown-%s-%d", u.TypeName, i)
}

func (u *Unknown) PreProcess(_ *market.Snapshot, _ *dates.Calendar) error { return u.Err() }
func (u *Unknown) EvaluatePayoffs(_, _ *bootstrap.Ensemble) error         { return u.Err() }
func (u *Unknown) AggregateGross() error                                  { return u.Err() }
func (u *Unknown) AggregateNet() error                                    { return u.Err() }

func (u *Unknown) REORecord() []string { return u.reoRecord("Unknown", nil) }

func (u *Unknown) Attributes() map[string]string {
	return u.baseAttributes("Unknown", u.TypeName)
}

func (u *Unknown) LogFields() map[string]any {
	fields := u.baseLogFields("Unknown")
	fields["type_name"] = u.TypeName
	return fields
}
