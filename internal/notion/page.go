package notion

// Page is a database record exposing only the named fields the sync
// workflows read. Property access goes through typed accessors with explicit
// presence checks; core logic never touches the raw property map.
type Page struct {
	ID         string              `json:"id"`
	Icon       *Icon               `json:"icon"`
	Properties map[string]property `json:"properties"`
}

// Icon is a page icon descriptor. Only emoji icons are written by the sync
// workflows, but external files set by hand are still represented.
type Icon struct {
	Type     string   `json:"type"`
	Emoji    string   `json:"emoji,omitempty"`
	External *fileRef `json:"external,omitempty"`
}

type fileRef struct {
	URL string `json:"url"`
}

// EmojiIcon builds an emoji icon descriptor.
func EmojiIcon(emoji string) *Icon {
	return &Icon{Type: "emoji", Emoji: emoji}
}

type property struct {
	Type     string       `json:"type"`
	Title    []richText   `json:"title,omitempty"`
	RichText []richText   `json:"rich_text,omitempty"`
	Number   *float64     `json:"number,omitempty"`
	Status   *statusValue `json:"status,omitempty"`
	Select   *statusValue `json:"select,omitempty"`
}

type richText struct {
	PlainText string       `json:"plain_text,omitempty"`
	Text      *textContent `json:"text,omitempty"`
}

type textContent struct {
	Content string `json:"content"`
}

type statusValue struct {
	Name string `json:"name"`
}

// PlainTitle returns the concatenated plain text of a title property, or
// empty string when the property is absent or empty.
func (p Page) PlainTitle(name string) string {
	prop, ok := p.Properties[name]
	if !ok {
		return ""
	}
	return joinPlainText(prop.Title)
}

// PlainText returns the concatenated plain text of a rich-text property. The
// second return reports whether the property holds any text at all.
func (p Page) PlainText(name string) (string, bool) {
	prop, ok := p.Properties[name]
	if !ok || len(prop.RichText) == 0 {
		return "", false
	}
	text := joinPlainText(prop.RichText)
	return text, text != ""
}

// Number returns a number property's value and whether it is set.
func (p Page) Number(name string) (float64, bool) {
	prop, ok := p.Properties[name]
	if !ok || prop.Number == nil {
		return 0, false
	}
	return *prop.Number, true
}

// StatusName returns a status (or select) property's option name and whether
// one is set.
func (p Page) StatusName(name string) (string, bool) {
	prop, ok := p.Properties[name]
	if !ok {
		return "", false
	}
	if prop.Status != nil {
		return prop.Status.Name, true
	}
	if prop.Select != nil {
		return prop.Select.Name, true
	}
	return "", false
}

// Emoji returns the page's emoji icon and whether one is set. Non-emoji
// icons report false so callers treat them as needing replacement.
func (p Page) Emoji() (string, bool) {
	if p.Icon == nil || p.Icon.Type != "emoji" {
		return "", false
	}
	return p.Icon.Emoji, true
}

func joinPlainText(parts []richText) string {
	s := ""
	for _, part := range parts {
		s += part.PlainText
	}
	return s
}

// TitleValue builds a title property value for create/update requests.
func TitleValue(s string) map[string]any {
	return map[string]any{
		"title": []map[string]any{
			{"text": map[string]any{"content": s}},
		},
	}
}

// TextValue builds a rich-text property value for create/update requests.
func TextValue(s string) map[string]any {
	return map[string]any{
		"rich_text": []map[string]any{
			{"text": map[string]any{"content": s}},
		},
	}
}

// NumberValue builds a number property value for create/update requests.
func NumberValue(n float64) map[string]any {
	return map[string]any{"number": n}
}
