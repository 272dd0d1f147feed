package models

type CommandType string

const (
	CommandStart     CommandType = "/start"
	CommandHelp      CommandType = "/help"
	CommandRules     CommandType = "/rules"
	CommandAnon      CommandType = "/anon"
	CommandDrafts    CommandType = "/drafts"
	CommandMyPosts   CommandType = "/myposts"
	CommandPending   CommandType = "/pending"
	CommandUsers     CommandType = "/users"
	CommandBroadcast CommandType = "/broadcast"
	CommandNotify    CommandType = "/notify"
	CommandUnknown   CommandType = "unknown"
)

type Command struct {
	Type      CommandType
	ChatID    int64
	UserID    int64
	Text      string
	Args      string
	Username  string
	FirstName string
}
