package playback

import "github.com/Belphemur/jellyplay/internal/models"

// ResolveAdjacent picks the previous and next episodes out of the window the
// server returns for an adjacentTo query.
//
// The server returns at most three items in episode order, so the position of
// the current item fully determines the neighbors:
//
//	1 item                   no neighbors
//	2 items, current first   next only
//	2 items, current second  previous only
//	3 items, current middle  both
//
// Every other shape, including a window that omits the current item, resolves
// no neighbors.
func ResolveAdjacent(items []models.BaseItem, currentID string) (previous, next *models.BaseItem) {
	switch len(items) {
	case 2:
		switch currentID {
		case items[0].ID:
			return nil, itemRef(items[1])
		case items[1].ID:
			return itemRef(items[0]), nil
		}
	case 3:
		if items[1].ID == currentID {
			return itemRef(items[0]), itemRef(items[2])
		}
	}
	return nil, nil
}

func itemRef(item models.BaseItem) *models.BaseItem {
	return &item
}
