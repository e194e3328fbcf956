package dialog

type State string

const (
	StateIdle         State = "idle"
	StateAwaitProject State = "await_project" // ждём номер проекта текстом
	StateBOM          State = "bom"           // открыт список материалов проекта
)

const (
	KeyProject = "project_id"
	KeyLastMID = "last_mid"
)

type Payload map[string]any

type Item struct {
	ChatID  int64
	State   State
	Payload Payload
}

// Project возвращает выбранный в чате проект.
func (it *Item) Project() string {
	if it == nil {
		return ""
	}
	s, _ := GetString(it.Payload, KeyProject)
	return s
}

// LastMessageID: id последнего сообщения со списком, 0 если нет.
// Числа после JSON приходят как float64.
func (it *Item) LastMessageID() int {
	if it == nil || it.Payload == nil {
		return 0
	}
	switch v := it.Payload[KeyLastMID].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}

func GetString(p Payload, key string) (string, bool) {
	v, ok := p[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}
