package provider

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/vexhq/vex/tool"
)

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ConversationTurn is one prior exchange in a multi-turn session. The core
// only reads turns to build payloads; appending the new turn and the model
// reply after a successful call is the caller's job.
type ConversationTurn struct {
	Role    Role
	Content string
}

// History is an ordered sequence of prior turns, oldest first.
type History []ConversationTurn

// Attachment is a single file included with one request. Raw bytes are read
// by the caller; the core never touches the filesystem and never keeps the
// attachment beyond the call.
type Attachment struct {
	Path      string
	Data      []byte
	MediaType string
}

// Name returns the base filename of the attachment.
func (a Attachment) Name() string {
	return filepath.Base(a.Path)
}

var mediaTypesByExt = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
	".pdf":  "application/pdf",
}

// NewAttachment wraps raw file bytes, inferring the media type from the
// file extension and falling back to content sniffing.
func NewAttachment(path string, data []byte) Attachment {
	mt, ok := mediaTypesByExt[strings.ToLower(filepath.Ext(path))]
	if !ok {
		mt = http.DetectContentType(data)
		if i := strings.IndexByte(mt, ';'); i >= 0 {
			mt = strings.TrimSpace(mt[:i])
		}
	}
	return Attachment{Path: path, Data: data, MediaType: mt}
}

// IsImage reports whether the attachment carries an image media type.
func (a Attachment) IsImage() bool {
	return strings.HasPrefix(a.MediaType, "image/")
}

// IsPDF reports whether the attachment is a PDF document.
func (a Attachment) IsPDF() bool {
	return a.MediaType == "application/pdf"
}

// RequestSpec freezes everything needed for exactly one call: the model,
// the prompt, optional history and attachment, the access mode, and the
// per-call feature toggles. It is constructed once, read by the payload
// builder and endpoint resolver, and discarded when the call terminates.
// There is no implicit global configuration; everything the adapter needs
// travels in the spec.
type RequestSpec struct {
	Config Config
	Mode   AccessMode

	Prompt     string
	History    History
	Attachment *Attachment

	// Managed-mode routing.
	ProjectID string
	Location  string

	// Direct/custom-mode auth and routing. Endpoint is used verbatim in
	// custom mode; APIKey is optional there.
	Endpoint string
	APIKey   string

	// Feature toggles. Each is honored only when the model config
	// advertises support.
	ExtendedContext bool
	MemoryTool      bool
	Grounding       bool
	ThinkingLevel   ThinkingLevel
	IncludeThoughts bool

	// Tools carries additional tool descriptors to advertise to the model.
	Tools []tool.Descriptor
}

// Validate catches caller mistakes before any work is scheduled.
func (s RequestSpec) Validate() error {
	if err := s.Config.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(s.Prompt) == "" {
		return fmt.Errorf("request requires a prompt")
	}
	switch s.Mode {
	case AccessManaged:
		if s.ProjectID == "" {
			return fmt.Errorf("managed mode requires a project id")
		}
		if s.Location == "" {
			return fmt.Errorf("managed mode requires a location")
		}
	case AccessDirect:
		if s.APIKey == "" {
			return fmt.Errorf("direct mode requires an api key")
		}
	case AccessCustom:
		if s.Endpoint == "" {
			return fmt.Errorf("custom mode requires an endpoint url")
		}
	default:
		return fmt.Errorf("unknown access mode %q", s.Mode)
	}
	return nil
}

// InputTokenEstimate is the cheap character-based token estimate used for
// output-budget clamping and usage reporting. Attachment bytes are not
// counted; only the prompt text participates in the budget.
func (s RequestSpec) InputTokenEstimate() int {
	return len(s.Prompt) / 4
}
