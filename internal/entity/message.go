package entity

const (
	MessageText = "text"
	MessageFlex = "flex"
)

// Message - one outbound chat message, either plain text or a structured flex document.
type Message struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	AltText  string `json:"alt_text,omitempty"`
	Contents any    `json:"contents,omitempty"`
}

func NewText(text string) Message {
	return Message{Type: MessageText, Text: text}
}

func NewFlex(altText string, contents any) Message {
	return Message{Type: MessageFlex, AltText: altText, Contents: contents}
}

func (that Message) IsText() bool {
	return that.Type == MessageText
}

func (that Message) IsFlex() bool {
	return that.Type == MessageFlex
}

// Input - one inbound chat event.
type Input struct {
	Text        string `json:"text" mapstructure:"text"`
	UserID      string `json:"user_id" mapstructure:"user_id"`
	GroupID     string `json:"group_id" mapstructure:"group_id"`
	DisplayName string `json:"display_name" mapstructure:"display_name"`
}

// IsPersonal - a one-to-one chat is addressed with the user id as group id.
func (that Input) IsPersonal() bool {
	return that.UserID == that.GroupID
}

// Result - ordered replies of one interaction plus the side effects the router has to apply.
type Result struct {
	Messages  []Message `json:"messages"`
	EndGame   bool      `json:"-"`
	JoinGame  bool      `json:"-"`
	LeaveGame bool      `json:"-"`
	Outcome   *Outcome  `json:"-"`
}

func NewResult(messages ...Message) Result {
	return Result{Messages: messages}
}

func (that *Result) Text(text string) {
	that.Messages = append(that.Messages, NewText(text))
}

func (that *Result) Flex(altText string, contents any) {
	that.Messages = append(that.Messages, NewFlex(altText, contents))
}

// Merge - appends the messages of other and ORs its flags.
func (that *Result) Merge(other Result) {
	that.Messages = append(that.Messages, other.Messages...)
	that.EndGame = that.EndGame || other.EndGame
	that.JoinGame = that.JoinGame || other.JoinGame
	that.LeaveGame = that.LeaveGame || other.LeaveGame
	if other.Outcome != nil {
		that.Outcome = other.Outcome
	}
}

func (that Result) IsEmpty() bool {
	return len(that.Messages) == 0 && !that.EndGame && !that.JoinGame && !that.LeaveGame && that.Outcome == nil
}

// DriveItem - a file or folder listed by a drive.
type DriveItem struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Folder bool   `json:"folder"`
	Link   string `json:"link,omitempty"`
	Size   int64  `json:"size,omitempty"`
}
