package domain

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

type Message struct {
	Role    Role   `json:"role" yaml:"role"`
	Content string `json:"content" yaml:"content"`
	Name    string `json:"name,omitempty" yaml:"name,omitempty"`
	// Display is what front-ends show instead of Content, set when the
	// sent content carries injected file text.
	Display string `json:"display,omitempty" yaml:"display,omitempty"`
}

// Text returns the content meant for display.
func (m Message) Text() string {
	if m.Display != "" {
		return m.Display
	}
	return m.Content
}

// FileInfo is one ingested attachment. It is never updated in place.
type FileInfo struct {
	Name     string `json:"name" yaml:"name"`
	MimeType string `json:"type" yaml:"type"`
	Content  string `json:"content" yaml:"content"`
	Language string `json:"language" yaml:"language"`
	Size     int64  `json:"size" yaml:"size"`
	Tokens   int    `json:"tokens" yaml:"tokens"`
}

// SessionRecord co-locates the transcript and the file cache of one API key,
// so both are cleared in the same write.
type SessionRecord struct {
	Messages []Message           `json:"messages" yaml:"messages"`
	Files    map[string]FileInfo `json:"files" yaml:"files"`
	Usage    Usage               `json:"usage" yaml:"usage"`
}

func NewSessionRecord() *SessionRecord {
	return &SessionRecord{
		Messages: []Message{},
		Files:    map[string]FileInfo{},
	}
}

// Reset empties transcript, files and usage together.
func (r *SessionRecord) Reset() {
	r.Messages = []Message{}
	r.Files = map[string]FileInfo{}
	r.Usage = Usage{}
}

// Document is the whole persisted store.
type Document struct {
	Sessions map[string]*SessionRecord `json:"sessions"`
}

func NewDocument() *Document {
	return &Document{Sessions: map[string]*SessionRecord{}}
}

// Session returns the record for key, creating it when absent.
func (d *Document) Session(key string) *SessionRecord {
	if d.Sessions == nil {
		d.Sessions = map[string]*SessionRecord{}
	}
	rec, ok := d.Sessions[key]
	if !ok || rec == nil {
		rec = NewSessionRecord()
		d.Sessions[key] = rec
	}
	if rec.Messages == nil {
		rec.Messages = []Message{}
	}
	if rec.Files == nil {
		rec.Files = map[string]FileInfo{}
	}
	return rec
}

// Lookup returns the record for key without creating it.
func (d *Document) Lookup(key string) (*SessionRecord, bool) {
	rec, ok := d.Sessions[key]
	return rec, ok && rec != nil
}
