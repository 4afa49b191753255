package report

import (
	"encoding/json"

	"github.com/latticehsm/hsm"
)

type jsonTransition struct {
	Event  string `json:"event"`
	Target string `json:"target,omitempty"`
	Guard  string `json:"guard,omitempty"`
}

type jsonState struct {
	ID          string           `json:"id"`
	Initial     string           `json:"initial,omitempty"`
	History     string           `json:"history,omitempty"`
	Children    []jsonState      `json:"children,omitempty"`
	Transitions []jsonTransition `json:"transitions,omitempty"`
}

// ExportJSON renders g as a structural description: the hierarchy tree
// with each state's declared transitions.
func (DOT) ExportJSON(g *hsm.Graph) ([]byte, error) {
	return json.MarshalIndent(toJSONState(g.Root), "", "  ")
}

func toJSONState(s *hsm.State) jsonState {
	js := jsonState{ID: string(s.ID)}
	if s.Initial != nil {
		js.Initial = string(s.Initial.ID)
	}
	if s.History != hsm.HistoryNone {
		js.History = s.History.String()
	}
	for _, t := range s.AllTransitions() {
		jt := jsonTransition{Event: t.EventID, Guard: t.Guard.Name}
		if t.Target != nil {
			jt.Target = string(t.Target.ID)
		}
		js.Transitions = append(js.Transitions, jt)
	}
	for _, c := range s.Children {
		js.Children = append(js.Children, toJSONState(c))
	}
	return js
}
