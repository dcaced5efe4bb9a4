// Government offices: single-holder posts and multi-member bodies.
package politics

import "time"

// Jurisdiction levels.
const (
	LevelCity  = "local_city"
	LevelState = "local_state"
)

// Office is a post filled by election. Single-seat offices use Holder;
// councils and legislatures use Members.
type Office struct {
	OfficeID   string        `json:"office_id"`
	OfficeName string        `json:"office_name"`
	Level      string        `json:"level"`
	TypeID     string        `json:"type_id"` // election type that fills this office
	Holder     *Politician   `json:"holder,omitempty"`
	Members    []*Politician `json:"members,omitempty"`
	TermEnds   time.Time     `json:"term_ends"`
}

// HeldBy reports whether the politician holds this office or a seat in it.
func (o *Office) HeldBy(politicianID string) bool {
	if o == nil || politicianID == "" {
		return false
	}
	if o.Holder != nil && o.Holder.ID == politicianID {
		return true
	}
	for _, m := range o.Members {
		if m.ID == politicianID {
			return true
		}
	}
	return false
}

// Incumbents lists everyone currently seated.
func (o *Office) Incumbents() []*Politician {
	if o.Holder != nil {
		return []*Politician{o.Holder}
	}
	return o.Members
}

// SeatWinners replaces the office's occupants with election winners.
func (o *Office) SeatWinners(winners []*Politician, singleSeat bool, termEnds time.Time) {
	for _, p := range o.Incumbents() {
		p.IsIncumbent = false
	}
	for _, w := range winners {
		w.IsIncumbent = true
	}
	if singleSeat {
		o.Holder = nil
		if len(winners) > 0 {
			o.Holder = winners[0]
		}
		o.Members = nil
	} else {
		o.Holder = nil
		o.Members = winners
	}
	o.TermEnds = termEnds
}
