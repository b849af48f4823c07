package document

// ZoneItems returns the entries stored in zone. RootZone always exists.
func ZoneItems(data Data, zone string) ([]ComponentData, bool) {
	if zone == "" || zone == RootZone {
		return data.Content, true
	}
	items, ok := data.Zones[zone]
	return items, ok
}

// ItemAt resolves a selector against data.
func ItemAt(data Data, selector ItemSelector) (ComponentData, bool) {
	items, ok := ZoneItems(data, selector.ZoneOrRoot())
	if !ok || selector.Index < 0 || selector.Index >= len(items) {
		return ComponentData{}, false
	}
	return items[selector.Index], true
}

// FindByID locates a component by id anywhere in the tree.
func FindByID(data Data, id string) (ComponentData, ItemSelector, bool) {
	if id == "" {
		return ComponentData{}, ItemSelector{}, false
	}
	for i, item := range data.Content {
		if item.ID() == id {
			return item, ItemSelector{Zone: RootZone, Index: i}, true
		}
	}
	for zone, items := range data.Zones {
		for i, item := range items {
			if item.ID() == id {
				return item, ItemSelector{Zone: zone, Index: i}, true
			}
		}
	}
	return ComponentData{}, ItemSelector{}, false
}

// Walk calls fn for every component in the tree, root zone first. Iteration
// stops when fn returns false.
func Walk(data Data, fn func(zone string, index int, item ComponentData) bool) {
	for i, item := range data.Content {
		if !fn(RootZone, i, item) {
			return
		}
	}
	for zone, items := range data.Zones {
		for i, item := range items {
			if !fn(zone, i, item) {
				return
			}
		}
	}
}
