package document

import "fmt"

const (
	// RootID identifies the root entity wherever an id is required.
	RootID = "root"
	// RootZone addresses Data.Content.
	RootZone = "root:default-zone"
)

// Data is the persisted document tree.
type Data struct {
	Root    RootData                   `json:"root"`
	Content []ComponentData            `json:"content"`
	Zones   map[string][]ComponentData `json:"zones,omitempty"`
}

// RootData holds the root entity in its canonical wrapped form.
type RootData struct {
	Props    map[string]any  `json:"props"`
	ReadOnly map[string]bool `json:"readOnly,omitempty"`
}

// ComponentData is one component instance. Its id is stored in Props["id"].
type ComponentData struct {
	Type     string          `json:"type"`
	Props    map[string]any  `json:"props"`
	ReadOnly map[string]bool `json:"readOnly,omitempty"`
}

// ID returns the component id or "" when the entry carries none.
func (c ComponentData) ID() string {
	if c.Props == nil {
		return ""
	}
	switch id := c.Props["id"].(type) {
	case string:
		return id
	case nil:
		return ""
	default:
		return fmt.Sprint(id)
	}
}

// ItemSelector references a component by zone and position.
type ItemSelector struct {
	Zone  string `json:"zone,omitempty"`
	Index int    `json:"index"`
}

// ZoneOrRoot returns the selector zone, defaulting to RootZone.
func (s ItemSelector) ZoneOrRoot() string {
	if s.Zone == "" {
		return RootZone
	}
	return s.Zone
}

// UIState is editor chrome state. Nil pointers mean "unset" so a UIState can be
// used as a partial patch (see MergeUI).
type UIState struct {
	ItemSelector        *ItemSelector  `json:"itemSelector,omitempty"`
	LeftSideBarVisible  *bool          `json:"leftSideBarVisible,omitempty"`
	RightSideBarVisible *bool          `json:"rightSideBarVisible,omitempty"`
	Extra               map[string]any `json:"extra,omitempty"`
}

// AppState pairs document data with UI state.
type AppState struct {
	Data Data    `json:"data"`
	UI   UIState `json:"ui"`
}
