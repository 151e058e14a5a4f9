package line

// Flex Message building blocks, limited to the pieces the growth card uses.
// Field names follow the Messaging API JSON schema.

// FlexMessage is a message of type "flex".
type FlexMessage struct {
	Type     string      `json:"type"`
	AltText  string      `json:"altText"`
	Contents *FlexBubble `json:"contents"`
}

// FlexBubble is a single-bubble flex container.
type FlexBubble struct {
	Type   string     `json:"type"`
	Header *FlexBox   `json:"header,omitempty"`
	Hero   *FlexImage `json:"hero,omitempty"`
	Body   *FlexBox   `json:"body,omitempty"`
}

// FlexBox is a layout box holding other components.
type FlexBox struct {
	Type     string     `json:"type"`
	Layout   string     `json:"layout"`
	Contents []FlexText `json:"contents"`
}

// FlexText is a text component.
type FlexText struct {
	Type   string `json:"type"`
	Text   string `json:"text"`
	Weight string `json:"weight,omitempty"`
	Size   string `json:"size,omitempty"`
	Color  string `json:"color,omitempty"`
	Wrap   bool   `json:"wrap,omitempty"`
}

// FlexImage is an image component with an optional tap action.
type FlexImage struct {
	Type        string      `json:"type"`
	URL         string      `json:"url"`
	Size        string      `json:"size,omitempty"`
	AspectRatio string      `json:"aspectRatio,omitempty"`
	Action      *FlexAction `json:"action,omitempty"`
}

// FlexAction is a tap action on a component.
type FlexAction struct {
	Type string `json:"type"`
	URI  string `json:"uri"`
}

// NewGrowthCard assembles the growth-record bubble the bot replies with:
// a week-count header, the scanned image as hero, and the baby-voice message
// as body text.
func NewGrowthCard(weeks, message, imageURL string) *FlexMessage {
	if weeks == "" {
		weeks = "?"
	}
	if message == "" {
		message = "媽咪好，我是寶寶！"
	}

	return &FlexMessage{
		Type:    "flex",
		AltText: "寶寶的超音波紀錄來囉！",
		Contents: &FlexBubble{
			Type: "bubble",
			Header: &FlexBox{
				Type:   "box",
				Layout: "vertical",
				Contents: []FlexText{{
					Type:   "text",
					Text:   "第 " + weeks + " 週成長紀錄",
					Weight: "bold",
					Size:   "xl",
					Color:  "#ff7fa8",
				}},
			},
			Hero: &FlexImage{
				Type:        "image",
				URL:         imageURL,
				Size:        "full",
				AspectRatio: "1:1",
				Action: &FlexAction{
					Type: "uri",
					URI:  imageURL,
				},
			},
			Body: &FlexBox{
				Type:   "box",
				Layout: "vertical",
				Contents: []FlexText{{
					Type: "text",
					Text: message,
					Wrap: true,
					Size: "md",
				}},
			},
		},
	}
}
