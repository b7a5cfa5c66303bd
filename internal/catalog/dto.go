package catalog

type AddProductInput struct {
	Title        string        `json:"title"`
	Image        string        `json:"image"`
	Link         string        `json:"link"`
	SubClassID   string        `json:"sub_class_id"`
	Combinations []Combination `json:"combinations"`
}

type AddProductOutput struct {
	Product Product `json:"product"`
	Created bool    `json:"created"`
	Added   int     `json:"added"`
}
