package entity

// Page 绘本中已确认的一页
type Page struct {
	ID          string `json:"id"`
	Image       string `json:"image"`
	Text        string `json:"text"`
	ImagePrompt string `json:"image_prompt,omitempty"`
}

// BoardElement 页面在排版面板上的可视元素
type BoardElement struct {
	ID          string `json:"id"`
	ImageSrc    string `json:"image_src"`
	Text        string `json:"text"`
	ImagePrompt string `json:"image_prompt,omitempty"`
	Draggable   bool   `json:"draggable"`
	Dragging    bool   `json:"dragging,omitempty"`
}

// ElementFor 构造页面对应的可视元素
func ElementFor(p Page) BoardElement {
	return BoardElement{
		ID:          p.ID,
		ImageSrc:    p.Image,
		Text:        p.Text,
		ImagePrompt: p.ImagePrompt,
		Draggable:   true,
	}
}

// Page 从可视元素还原页面
func (e BoardElement) Page() Page {
	return Page{
		ID:          e.ID,
		Image:       e.ImageSrc,
		Text:        e.Text,
		ImagePrompt: e.ImagePrompt,
	}
}
