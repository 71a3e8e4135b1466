package game

// Participant is one member of a room's roster.
type Participant struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ConnID    string `json:"-"`
	Connected bool   `json:"connected"`
	Ready     bool   `json:"ready"`
	Color     string `json:"color,omitempty"`
}

// roster keeps participants in join order, which is also the scan order for
// host transfer and winner selection.
type roster []*Participant

func (r roster) find(id string) (*Participant, bool) {
	for _, p := range r {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

func (r roster) connected() []*Participant {
	out := make([]*Participant, 0, len(r))
	for _, p := range r {
		if p.Connected {
			out = append(out, p)
		}
	}
	return out
}

func (r roster) anyConnected() bool {
	for _, p := range r {
		if p.Connected {
			return true
		}
	}
	return false
}

func (r roster) ids() []string {
	out := make([]string, 0, len(r))
	for _, p := range r {
		out = append(out, p.ID)
	}
	return out
}

func (r roster) snapshot() []Participant {
	out := make([]Participant, 0, len(r))
	for _, p := range r {
		out = append(out, *p)
	}
	return out
}

// withoutDisconnected returns the roster minus disconnected participants and
// the ids that were dropped.
func (r roster) withoutDisconnected() (roster, []string) {
	kept := make(roster, 0, len(r))
	var dropped []string
	for _, p := range r {
		if p.Connected {
			kept = append(kept, p)
			continue
		}
		dropped = append(dropped, p.ID)
	}
	return kept, dropped
}

func (r roster) allReady() bool {
	for _, p := range r {
		if !p.Ready {
			return false
		}
	}
	return true
}

// Notifier receives fan-out requests from rooms whose transitions are not
// driven by a caller, such as deadline expiry. Implementations must not call
// back into the room.
type Notifier interface {
	ToRoom(code, event string, payload any)
	ToParticipant(code, participantID, event string, payload any)
}

type nopNotifier struct{}

func (nopNotifier) ToRoom(string, string, any)                {}
func (nopNotifier) ToParticipant(string, string, string, any) {}
