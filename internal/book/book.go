package book

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Book is the second element of the request. mdBook up to 0.4 names the item
// list "sections"; 0.5 renamed it to "items". Whichever is present is kept.
type Book struct {
	fields  map[string]json.RawMessage
	listKey string
	Items   []*Item
}

// Item is one entry of the summary: a chapter, a separator or a part title.
// Non-chapter items are kept verbatim.
type Item struct {
	raw     json.RawMessage
	Chapter *Chapter
}

// Chapter is a book chapter. Draft chapters have no path and no content file.
type Chapter struct {
	fields   map[string]json.RawMessage
	Name     string
	Content  string
	Path     string
	Draft    bool
	SubItems []*Item
}

func (b *Book) UnmarshalJSON(data []byte) error {
	if err := json.Unmarshal(data, &b.fields); err != nil {
		return err
	}
	if b.fields == nil {
		return fmt.Errorf("book is not an object")
	}
	for _, key := range []string{"items", "sections"} {
		raw, ok := b.fields[key]
		if !ok {
			continue
		}
		b.listKey = key
		return unmarshalItems(raw, &b.Items)
	}
	b.listKey = "sections"
	return nil
}

func (b *Book) MarshalJSON() ([]byte, error) {
	fields := make(map[string]json.RawMessage, len(b.fields)+1)
	for k, v := range b.fields {
		fields[k] = v
	}
	items, err := marshalItems(b.Items)
	if err != nil {
		return nil, err
	}
	fields[b.listKey] = items
	return marshalNoEscape(fields)
}

func unmarshalItems(raw json.RawMessage, out *[]*Item) error {
	if isNull(raw) {
		return nil
	}
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err != nil {
		return err
	}
	items := make([]*Item, 0, len(list))
	for _, r := range list {
		it := &Item{raw: r}
		var wrapper map[string]json.RawMessage
		// "Separator" is a bare string, so a failed object decode is expected
		if json.Unmarshal(r, &wrapper) == nil {
			if ch, ok := wrapper["Chapter"]; ok {
				it.Chapter = &Chapter{}
				if err := json.Unmarshal(ch, it.Chapter); err != nil {
					return err
				}
			}
		}
		items = append(items, it)
	}
	*out = items
	return nil
}

func marshalItems(items []*Item) (json.RawMessage, error) {
	list := make([]json.RawMessage, len(items))
	for i, it := range items {
		if it.Chapter == nil {
			list[i] = it.raw
			continue
		}
		ch, err := it.Chapter.MarshalJSON()
		if err != nil {
			return nil, err
		}
		list[i], err = marshalNoEscape(map[string]json.RawMessage{"Chapter": ch})
		if err != nil {
			return nil, err
		}
	}
	return marshalNoEscape(list)
}

func (c *Chapter) UnmarshalJSON(data []byte) error {
	if err := json.Unmarshal(data, &c.fields); err != nil {
		return err
	}
	if err := decodeOptionalString(c.fields["name"], &c.Name); err != nil {
		return fmt.Errorf("chapter name: %w", err)
	}
	if err := decodeOptionalString(c.fields["content"], &c.Content); err != nil {
		return fmt.Errorf("chapter %q content: %w", c.Name, err)
	}
	path, ok := c.fields["path"]
	if !ok || isNull(path) {
		c.Draft = true
	} else if err := json.Unmarshal(path, &c.Path); err != nil {
		return fmt.Errorf("chapter %q path: %w", c.Name, err)
	}
	if sub, ok := c.fields["sub_items"]; ok {
		if err := unmarshalItems(sub, &c.SubItems); err != nil {
			return fmt.Errorf("chapter %q sub_items: %w", c.Name, err)
		}
	}
	return nil
}

func (c *Chapter) MarshalJSON() ([]byte, error) {
	fields := make(map[string]json.RawMessage, len(c.fields)+2)
	for k, v := range c.fields {
		fields[k] = v
	}
	if _, had := c.fields["content"]; had || c.Content != "" {
		content, err := marshalNoEscape(c.Content)
		if err != nil {
			return nil, err
		}
		fields["content"] = content
	}
	if _, had := c.fields["sub_items"]; had || len(c.SubItems) > 0 {
		sub, err := marshalItems(c.SubItems)
		if err != nil {
			return nil, err
		}
		fields["sub_items"] = sub
	}
	return marshalNoEscape(fields)
}

// Walk visits every chapter depth-first in summary order.
func (b *Book) Walk(fn func(*Chapter) error) error {
	return walkItems(b.Items, fn)
}

func walkItems(items []*Item, fn func(*Chapter) error) error {
	for _, it := range items {
		if it.Chapter == nil {
			continue
		}
		if err := fn(it.Chapter); err != nil {
			return err
		}
		if err := walkItems(it.Chapter.SubItems, fn); err != nil {
			return err
		}
	}
	return nil
}

func decodeOptionalString(raw json.RawMessage, out *string) error {
	if isNull(raw) {
		return nil
	}
	return json.Unmarshal(raw, out)
}

func isNull(raw json.RawMessage) bool {
	return len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
