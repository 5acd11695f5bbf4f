package model

import (
	"encoding/json"
	"fmt"
)

// NoSelection is the pick sent when a member skips an item.
const NoSelection ItemID = 0

const EmptyTitle string = ""

type ItemID = int64

// Item is a catalog entry. Fields the service relies on are typed;
// everything else the catalog sent travels untouched in Raw.
type Item struct {
	ID         ItemID
	Title      string
	PosterPath *string

	Raw map[string]json.RawMessage
}

type itemFields struct {
	ID         *ItemID `json:"id"`
	Title      string  `json:"title"`
	Name       string  `json:"name"`
	PosterPath *string `json:"poster_path"`
}

func (i *Item) UnmarshalJSON(b []byte) error {
	var f itemFields
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	if f.ID == nil {
		return fmt.Errorf("catalog item without id")
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	i.ID = *f.ID
	i.Title = f.Title
	if i.Title == EmptyTitle {
		i.Title = f.Name
	}
	i.PosterPath = f.PosterPath
	i.Raw = raw
	return nil
}

func (i Item) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(i.Raw)+3)
	for k, v := range i.Raw {
		out[k] = v
	}
	out["id"] = i.ID

	// TV entries carry "name" instead of "title"
	titleKey := "title"
	if _, ok := i.Raw["title"]; !ok {
		if _, ok := i.Raw["name"]; ok {
			titleKey = "name"
		}
	}
	out[titleKey] = i.Title
	if i.PosterPath != nil {
		out["poster_path"] = *i.PosterPath
	}
	return json.Marshal(out)
}
