package dto

type CreateTopicRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}

type TopicItem struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"createdAt"`
}

// SetSettingRequest — ключ берётся из пути, тело несёт значение.
type SetSettingRequest struct {
	Value string `json:"value" validate:"required,max=10000"`
}

type SettingItem struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}
