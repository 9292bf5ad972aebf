package conversation

// State - состояние разговора с кандидатом
type State string

const (
	StateFetching   State = "fetching"
	StateIntro      State = "intro"
	StateAsking     State = "asking"
	StateListening  State = "listening"
	StateProcessing State = "processing"
	StateFinished   State = "finished"
)

// Snapshot - текущее состояние контроллера для отображения
type Snapshot struct {
	State      State  `json:"state"`
	Index      int    `json:"index"`
	Total      int    `json:"total"`
	Question   string `json:"question,omitempty"`
	Transcript string `json:"transcript"`
	Speaking   bool   `json:"speaking"`
}
